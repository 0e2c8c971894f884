// ccb builds per-directory context documents that describe a codebase's
// public API for coding agents.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/phobologic/ccb/internal/config"
	"github.com/phobologic/ccb/internal/scan"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	envFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "ccb",
		Short:         "Build an agent-friendly index of your codebase",
		Long:          "ccb parses source files with tree-sitter and writes a context document into every directory, summarizing its public symbols, dependencies and calls.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("ccb {{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", config.EnvFile, "settings file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug detail")

	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newVersionCmd(opts))
	return root
}

func newScanCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan the codebase and generate context files",
		Long:  "Indexes every supported source file under path (default: current directory), reusing cached symbols for unchanged files, and rewrites the context documents.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}
	cmd.Flags().Bool("no-llm", false, "skip LLM summaries")
	cmd.Flags().String("output", ".context.md", "context document file name")
	cmd.Flags().Bool("prune", false, "drop registry entries for files that no longer exist")
	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *globalOptions) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, opts.envFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(opts.stderr, opts.verbose)
	stats, err := scan.New(cfg, scan.WithFs(fs), scan.WithLogger(logger)).Scan(cmd.Context(), root)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(opts.stdout,
		"Scan complete: %d files (%d cached, %d extracted, %d skipped, %d failed), %d summarized, %d documents updated\n",
		stats.Discovered, stats.CacheHits, stats.Extracted, stats.Skipped, stats.Failed,
		stats.Summarized, len(stats.Documents))
	return nil
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ccb version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(opts.stdout, "ccb %s\n", version)
		},
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
