package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/api"
	"github.com/pbaille/unikit/internal/export"
	"github.com/pbaille/unikit/internal/notes"
	"github.com/pbaille/unikit/internal/share"
)

func reportCmd(opts *rootOptions) *cobra.Command {
	var (
		format     string
		out        string
		shareIt    bool
		comparison bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the CGPA report or the comparison report",
		Long: `Render the CGPA report (html, text or xlsx) or, with --compare, the
comparison report (html or text). HTML and text go to stdout unless --out
is given; xlsx is written to a file. --share publishes the report through
the configured share driver and prints its link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			kind := export.KindLedger
			if comparison {
				kind = export.KindComparison
			}
			now := time.Now()
			doc, err := export.Build(e.svc, kind, format, now)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if shareIt {
				p, err := share.New(e.cfg.Share)
				if err != nil {
					return err
				}
				name := share.ObjectName(doc.Base, doc.Ext, now)
				link, err := p.Upload(cmd.Context(), name, bytes.NewReader(doc.Body), int64(len(doc.Body)), doc.ContentType)
				if err != nil {
					return fmt.Errorf("share report: %w", err)
				}
				e.log.Info("report shared", zap.String("name", name), zap.String("driver", e.cfg.Share.Driver))
				fmt.Fprintf(stdout, "Shared: %s\n", link)
				return nil
			}

			if out == "" && doc.Ext == export.FormatXLSX {
				out = doc.FileName()
			}
			if out == "" {
				_, err := stdout.Write(doc.Body)
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			if err := os.WriteFile(out, doc.Body, 0644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(stdout, "Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatHTML, "output format: html, text or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&shareIt, "share", false, "publish the report and print its link")
	cmd.Flags().BoolVar(&comparison, "compare", false, "render the friends comparison instead of the ledger")
	return cmd
}

func notesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Browse and download study notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "topics [category]",
		Short: "List categories, or the topics of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer log.Sync()
			client := notes.New(cfg.Notes, log)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				topics, err := client.Category(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, t := range topics {
					fmt.Fprintf(out, "  %s\n", t.Topic)
				}
				return nil
			}

			grouped, err := client.Topics(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range notes.Categories(grouped) {
				fmt.Fprintf(out, "%s (%s)\n", name, plural(len(grouped[name]), "topic"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read [category] [topic]",
		Short: "Print the markdown of a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer log.Sync()

			content, err := notes.New(cfg.Notes, log).Content(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [category] [dir]",
		Short: "Download every topic of a category as markdown files",
		Long:  "Download every topic of a category as markdown files. Without dir they go into a folder named after the category.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer log.Sync()

			target := strings.TrimSuffix(notes.FileName(args[0]), ".md")
			if len(args) == 2 {
				target = args[1]
			}
			paths, err := notes.New(cfg.Notes, log).Export(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", plural(len(paths), "topic"), target)
			return nil
		},
	})

	return cmd
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			sp, err := share.New(e.cfg.Share)
			if err != nil {
				return err
			}
			return api.New(e.svc, sp, addr, e.log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default server.addr)")
	return cmd
}
