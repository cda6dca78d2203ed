package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/ledger"
	"github.com/pbaille/unikit/internal/sheet"
)

func calcCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calc",
		Short: "Compute semester GPAs and the CGPA, and record the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			res, _, err := e.svc.Calculate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, sem := range res.Semesters {
				if sem.Counted == 0 {
					continue
				}
				fmt.Fprintf(tw, "Year %d\tSemester %d\tGPA %s\t%g credits\n",
					sem.Year, sem.Semester, aggregate.Format(sem.GPA), sem.Credits)
			}
			tw.Flush()
			fmt.Fprintf(out, "CGPA: %s (%g credits)\n", aggregate.Format(res.CGPA), res.Credits)
			return nil
		},
	}
}

func historyCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			calcs, err := e.svc.History(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(calcs) == 0 {
				fmt.Fprintln(out, "No calculations yet. Use 'unikit calc' to record one.")
				return nil
			}
			for _, c := range calcs {
				fmt.Fprintf(out, "%s  %s  %s  (%g credits)\n",
					shortID(c.ID), c.CreatedAt.Format("2006-01-02 15:04:05"), aggregate.Format(c.CGPA), c.Credits)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of calculations to show")
	return cmd
}

func yearCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "year",
		Short: "Manage the academic structure",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List years with their semester counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			shape := e.svc.Structure()
			if len(shape) == 0 {
				fmt.Fprintln(out, "No years. Use 'unikit year add' to create one.")
				return nil
			}
			for _, s := range shape {
				fmt.Fprintf(out, "Year %d  %s  %s\n", s.Year, plural(s.Semesters, "semester"), plural(e.svc.SubjectCount(s.Year), "subject"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [year] [semesters]",
		Short: "Add a year with empty semesters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseInt("year", args[0])
			if err != nil {
				return err
			}
			semesters, err := parseInt("semesters", args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.svc.AddYear(cmd.Context(), year, semesters); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added year %d with %s\n", year, plural(semesters, "semester"))
			return nil
		},
	})

	var yes bool
	removeCmd := &cobra.Command{
		Use:   "remove [year]",
		Short: "Remove a year and all of its subjects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseInt("year", args[0])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if _, ok := semestersOf(e.svc.Structure(), year); !ok {
				fmt.Fprintf(out, "Year %d does not exist, nothing to remove\n", year)
				return nil
			}
			n := e.svc.SubjectCount(year)
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove year %d and its %s?", year, plural(n, "subject"))) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			dropped, err := e.svc.RemoveYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed year %d (%s dropped)\n", year, plural(dropped, "subject"))
			return nil
		},
	}
	removeCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(removeCmd)

	var yesShrink bool
	semestersCmd := &cobra.Command{
		Use:   "semesters [year] [count]",
		Short: "Change the number of semesters of a year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseInt("year", args[0])
			if err != nil {
				return err
			}
			count, err := parseInt("count", args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if n := e.svc.SemesterDropCount(year, count); n > 0 && count > 0 && !yesShrink {
				q := fmt.Sprintf("Shrinking year %d to %s drops %s. Continue?", year, plural(count, "semester"), plural(n, "subject"))
				if !confirm(cmd.InOrStdin(), out, q) {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}
			dropped, err := e.svc.SetSemesters(cmd.Context(), year, count)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Year %d now has %s (%s dropped)\n", year, plural(count, "semester"), plural(dropped, "subject"))
			return nil
		},
	}
	semestersCmd.Flags().BoolVarP(&yesShrink, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(semestersCmd)

	var yesReset bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default structure (4 years: 2, 2, 2 and 1 semesters)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			n := e.svc.ResetDropCount()
			if !yesReset && !confirm(cmd.InOrStdin(), out,
				fmt.Sprintf("Reset the structure to the default? %s outside it will be lost.", plural(n, "subject"))) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			dropped, err := e.svc.ResetStructure(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Structure reset (%s dropped)\n", plural(dropped, "subject"))
			return nil
		},
	}
	resetCmd.Flags().BoolVarP(&yesReset, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(resetCmd)

	return cmd
}

func semestersOf(shape []ledger.Shape, year int) (int, bool) {
	for _, s := range shape {
		if s.Year == year {
			return s.Semesters, true
		}
	}
	return 0, false
}

func subjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects in the ledger",
	}

	var year int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects by year and semester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			years, res := e.svc.Ledger()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, y := range years {
				if year != 0 && y.Year != year {
					continue
				}
				for i, subs := range y.Semesters {
					fmt.Fprintf(tw, "Year %d / Semester %d\t\t\tGPA %s\n", y.Year, i+1, aggregate.Format(res.GPA(y.Year, i+1)))
					if len(subs) == 0 {
						fmt.Fprintln(tw, "  (no subjects)\t\t\t")
					}
					for _, s := range subs {
						fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", shortID(s.ID), displayName(s), displayCredit(s.Credit), displayGrade(s.Grade))
					}
				}
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().IntVar(&year, "year", 0, "only show this year")
	cmd.AddCommand(listCmd)

	var name, credit, grade string
	addCmd := &cobra.Command{
		Use:   "add [year] [semester]",
		Short: "Add a subject to a semester",
		Long:  "Add a subject to a semester. Without --grade the configured default grade is used.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseInt("year", args[0])
			if err != nil {
				return err
			}
			sem, err := parseInt("semester", args[1])
			if err != nil {
				return err
			}
			c, err := ledger.ParseCredit(credit)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			sub, err := e.svc.AddSubject(cmd.Context(), domain.Slot{Year: y, Semester: sem},
				domain.Subject{Name: name, Credit: c, Grade: grade})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added subject %s: %s  %s  %s\n",
				shortID(sub.ID), displayName(sub), displayCredit(sub.Credit), displayGrade(sub.Grade))
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "subject name")
	addCmd.Flags().StringVar(&credit, "credit", "", "credit value")
	addCmd.Flags().StringVar(&grade, "grade", "", "grade symbol (S, A, B, C, D, E, F)")
	cmd.AddCommand(addCmd)

	var editName, editCredit, editGrade string
	editCmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a subject; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p ledger.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &editName
			}
			if flags.Changed("credit") {
				c, err := ledger.ParseCredit(editCredit)
				if err != nil {
					return err
				}
				p.Credit = &c
			}
			if flags.Changed("grade") {
				p.Grade = &editGrade
			}
			if p.Name == nil && p.Credit == nil && p.Grade == nil {
				return fmt.Errorf("nothing to change: pass --name, --credit or --grade")
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.svc.ResolveSubject(args[0])
			if err != nil {
				return err
			}
			sub, err := e.svc.UpdateSubject(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated subject %s: %s  %s  %s\n",
				shortID(sub.ID), displayName(sub), displayCredit(sub.Credit), displayGrade(sub.Grade))
			return nil
		},
	}
	editCmd.Flags().StringVar(&editName, "name", "", "subject name")
	editCmd.Flags().StringVar(&editCredit, "credit", "", "credit value")
	editCmd.Flags().StringVar(&editGrade, "grade", "", "grade symbol, empty to clear")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.svc.ResolveSubject(args[0])
			if err != nil {
				return err
			}
			if err := e.svc.RemoveSubject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed subject %s\n", shortID(id))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Import subjects from a spreadsheet (Year, Semester, Subject, Credits, Grade)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			rows, unreadable, err := sheet.Import(f)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			rep, err := e.svc.ImportRows(cmd.Context(), rows)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s, skipped %d\n", plural(rep.Added, "subject"), rep.Skipped+unreadable)
			if unreadable > 0 {
				fmt.Fprintf(out, "  %s without a usable year, semester or credit\n", plural(unreadable, "row"))
			}
			for _, reason := range rep.Reasons {
				fmt.Fprintf(out, "  %s\n", reason)
			}
			return nil
		},
	})

	return cmd
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(field, domain.ErrInvalid, "%q is not an integer", raw)
	}
	return n, nil
}

func displayName(s domain.Subject) string {
	if s.Name == "" {
		return "Untitled Subject"
	}
	return s.Name
}

func displayCredit(c float64) string {
	if c == 0 {
		return "-"
	}
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func displayGrade(g string) string {
	if g == "" {
		return "-"
	}
	return g
}
