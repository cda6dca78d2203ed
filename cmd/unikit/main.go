package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/config"
	"github.com/pbaille/unikit/internal/logger"
	"github.com/pbaille/unikit/internal/service"
	"github.com/pbaille/unikit/internal/store"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "unikit",
		Short: "CGPA ledger, grade scale and friends comparison for students",
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file or directory (default ~/.unikit)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path (overrides storage.path)")

	rootCmd.AddCommand(calcCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(yearCmd(opts))
	rootCmd.AddCommand(subjectCmd(opts))
	rootCmd.AddCommand(gradeCmd(opts))
	rootCmd.AddCommand(compareCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(notesCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	return rootCmd
}

// env is what a command needs once configuration is loaded
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	backend store.Backend
	svc     *service.Service
}

func loadConfig(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.dbPath != "" {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.Path = opts.dbPath
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openEnv loads config, opens storage and loads the service state
func openEnv(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	backend, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}
	svc, err := service.Load(ctx, backend, log)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &env{cfg: cfg, log: log, backend: backend, svc: svc}, nil
}

func (e *env) Close() {
	e.backend.Close()
	_ = e.log.Sync()
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
