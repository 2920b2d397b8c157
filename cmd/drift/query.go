package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmoller/drift"
)

// Query commands run against the state persisted by a previous scan. They
// root the engine at the current directory.

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the import-dependency graph",
}

func init() {
	graphCmd.AddCommand(depsCmd)
	graphCmd.AddCommand(dependentsCmd)
	graphCmd.AddCommand(cyclesCmd)
	graphCmd.AddCommand(orderCmd)
}

var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "List the resolved direct dependencies of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			return outputPaths(e.Dependencies(args[0]))
		})
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file>",
	Short: "List the files that directly import a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			if flagTransitive {
				return outputPaths(e.TransitiveDependents(args[0]))
			}
			return outputPaths(e.Dependents(args[0]))
		})
	},
}

var flagTransitive bool

func init() {
	dependentsCmd.Flags().BoolVar(&flagTransitive, "transitive", false, "include indirect dependents")
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List import cycles in the tracked file set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			return outputCycles(e.Cycles())
		})
	},
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "List tracked files in dependency-first order",
	Long:  "Prints a topological ordering of the dependency graph. Files trapped in import cycles are appended after the acyclic portion and flagged.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			order, acyclic := e.AnalysisOrder()
			return outputOrder(order, acyclic)
		})
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact <file>",
	Short: "Show which files a change to the given file can affect",
	Long:  "Derives an impact statement for each direct dependent of the file, using the change category recorded by the last scan.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			path := args[0]
			snap := e.Snapshot(path)
			if snap == nil {
				return fmt.Errorf("untracked file: %s (run 'drift scan' first)", path)
			}
			result := drift.Result{
				Category:    snap.Category,
				Description: "change to " + path,
			}
			return outputImpact(path, e.Impact(path, result))
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the stored snapshot of a tracked file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(e *drift.Engine) error {
			snap := e.Snapshot(args[0])
			if snap == nil {
				return fmt.Errorf("untracked file: %s (run 'drift scan' first)", args[0])
			}
			return outputSnapshot(snap)
		})
	},
}

// withEngine opens an engine rooted at the current directory, runs fn, and
// closes it.
func withEngine(fn func(*drift.Engine) error) error {
	engine, err := openEngine(nil)
	if err != nil {
		return err
	}
	defer engine.Close()
	return fn(engine)
}
