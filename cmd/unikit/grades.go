package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/compare"
	"github.com/pbaille/unikit/internal/grading"
)

func gradeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Show or change the grade scale",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the grade scale and the default grade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			sc := e.svc.Scale()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sym := range grading.Symbols {
				mark := ""
				if sym == sc.Default {
					mark = "(default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", sym, grading.Descriptions[sym], sc.Point(sym), mark)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "default [symbol]",
		Short: "Set the grade given to new subjects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.svc.SetDefaultGrade(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default grade is now %s\n", e.svc.Scale().Default)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [symbol] [points]",
		Short: "Change the point value of a grade (0 to 10)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := grading.ParsePoint(args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.svc.SetPoint(cmd.Context(), args[0], points); err != nil {
				return err
			}
			sym := grading.Normalize(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now worth %g points\n", sym, e.svc.Scale().Point(sym))
			return nil
		},
	})

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default point values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, "Reset all grade points to their defaults?") {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			if err := e.svc.ResetPoints(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Grade points reset")
			return nil
		},
	}
	resetCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(resetCmd)

	return cmd
}

func compareCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank your CGPA against friends",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			roster := e.svc.Roster()
			if len(roster.Friends) == 0 {
				fmt.Fprintln(out, "No friends yet. Use 'unikit compare add' to add one.")
			}
			ids := make(map[string]string, len(roster.Friends))
			for _, f := range roster.Friends {
				ids[f.Name] = f.ID
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, r := range e.svc.Rankings() {
				id := ""
				if !r.Me {
					id = shortID(ids[r.Name])
				}
				fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", r.Rank, r.Name, aggregate.Format(r.CGPA), id)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name] [cgpa]",
		Short: "Add a friend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cgpa, err := compare.ParseCGPA(args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := e.svc.AddFriend(cmd.Context(), args[0], cgpa)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) as %s\n", f.Name, aggregate.Format(f.CGPA), shortID(f.ID))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.svc.ResolveFriend(args[0])
			if err != nil {
				return err
			}
			if err := e.svc.RemoveFriend(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed friend %s\n", shortID(id))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "me [cgpa]",
		Short: "Set your own CGPA by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cgpa, err := compare.ParseCGPA(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.svc.SetMine(cmd.Context(), cgpa); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Your CGPA is now %s\n", aggregate.Format(cgpa))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Copy the CGPA computed from the ledger into the comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			cgpa, err := e.svc.SyncMine(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Your CGPA is now %s\n", aggregate.Format(cgpa))
			return nil
		},
	})

	return cmd
}
