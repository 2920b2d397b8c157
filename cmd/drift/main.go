package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nmoller/drift"
	"github.com/nmoller/drift/internal/config"
)

var (
	flagFormat  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "drift",
	Short:         "Track structural drift across a codebase",
	Long:          "Drift parses source files with tree-sitter, maintains an import-dependency graph, and classifies every change between scans by semantic severity.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(showCmd)
}

// newLogger builds the CLI logger. Quiet by default; --verbose switches to
// zap's development config on stderr.
func newLogger() (*zap.Logger, error) {
	if !flagVerbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// openEngine creates an Engine rooted at the target directory.
func openEngine(args []string) (*drift.Engine, error) {
	root, err := resolveTargetDir(args)
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return drift.New(root, drift.WithLogger(log))
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default .drift/config.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

var flagLanguages string

func init() {
	initCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. python,typescript)")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	cfgPath := config.Path(root)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("already initialized: %s", cfgPath)
	}

	cfg := config.Default()
	if flagLanguages != "" {
		cfg.Languages = splitCommaList(flagLanguages)
	}
	if err := cfg.Write(root); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Initialized: %s\n", cfgPath)
	return nil
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the repository and classify changes since the last scan",
	Long:  "Walks tracked source files, detects added, modified, deleted, and unchanged paths against the persisted state, classifies every change, and updates the dependency graph.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	engine, err := openEngine(args)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Scan(context.Background())
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if err := outputScanResult(result, engine.ImpactOf(result)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Scanned in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveTargetDir returns the absolute path of the repository root argument,
// defaulting to the current directory.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
