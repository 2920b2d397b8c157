package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nmoller/drift"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cliScanResult is the JSON shape of one scan pass.
type cliScanResult struct {
	Added     []string                     `json:"added"`
	Modified  []string                     `json:"modified"`
	Deleted   []string                     `json:"deleted"`
	Unchanged []string                     `json:"unchanged"`
	Changes   map[string]drift.Result      `json:"changes"`
	Impact    map[string]map[string]string `json:"impact,omitempty"`
	Summary   drift.Summary                `json:"summary"`
}

func outputScanResult(result *drift.ScanResult, impact map[string]map[string]string) error {
	if flagFormat == "json" {
		return outputJSON(cliScanResult{
			Added:     orEmpty(result.Added),
			Modified:  orEmpty(result.Modified),
			Deleted:   orEmpty(result.Deleted),
			Unchanged: orEmpty(result.Unchanged),
			Changes:   result.Changes,
			Impact:    impact,
			Summary:   result.Summary,
		})
	}

	w := io.Writer(os.Stdout)
	if !result.Changed() {
		fmt.Fprintf(w, "No changes (%d files unchanged)\n", len(result.Unchanged))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tCATEGORY\tDETAIL")
	for _, path := range result.ChangedPaths() {
		res := result.Changes[path]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", path, pathStatus(result, path), res.Category, res.Description)
	}
	tw.Flush()

	if len(impact) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Impact:")
		paths := make([]string, 0, len(impact))
		for p := range impact {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			for _, dep := range sortedKeys(impact[p]) {
				fmt.Fprintf(w, "  %s: %s\n", dep, impact[p][dep])
			}
		}
	}

	s := result.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d files changed: +%d -%d ~%d declarations, %d unchanged\n",
		s.TotalFiles, s.Additions, s.Removals, s.Modifications, len(result.Unchanged))
	return nil
}

func pathStatus(result *drift.ScanResult, path string) string {
	for _, p := range result.Deleted {
		if p == path {
			return "deleted"
		}
	}
	for _, p := range result.Added {
		if p == path {
			return "added"
		}
	}
	return "modified"
}

func outputPaths(paths []string) error {
	if flagFormat == "json" {
		return outputJSON(orEmpty(paths))
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func outputCycles(cycles [][]string) error {
	if flagFormat == "json" {
		if cycles == nil {
			cycles = [][]string{}
		}
		return outputJSON(cycles)
	}
	if len(cycles) == 0 {
		fmt.Println("No import cycles")
		return nil
	}
	for _, cycle := range cycles {
		fmt.Println(strings.Join(cycle, " -> "))
	}
	return nil
}

func outputOrder(order []string, acyclic bool) error {
	if flagFormat == "json" {
		return outputJSON(struct {
			Order   []string `json:"order"`
			Acyclic bool     `json:"acyclic"`
		}{orEmpty(order), acyclic})
	}
	for _, p := range order {
		fmt.Println(p)
	}
	if !acyclic {
		fmt.Fprintln(os.Stderr, "Warning: graph contains import cycles; cyclic files listed last")
	}
	return nil
}

func outputImpact(path string, impact map[string]string) error {
	if flagFormat == "json" {
		return outputJSON(struct {
			File   string            `json:"file"`
			Impact map[string]string `json:"impact"`
		}{path, impact})
	}
	if len(impact) == 0 {
		fmt.Printf("No dependents of %s\n", path)
		return nil
	}
	for _, dep := range sortedKeys(impact) {
		fmt.Printf("%s: %s\n", dep, impact[dep])
	}
	return nil
}

// cliSnapshot is the JSON shape of one stored snapshot.
type cliSnapshot struct {
	Path           string              `json:"path"`
	Language       string              `json:"language"`
	ContentHash    string              `json:"content_hash"`
	StructuralHash string              `json:"structural_hash"`
	Imports        []string            `json:"imports"`
	Declarations   []drift.Declaration `json:"declarations"`
	Category       drift.Category      `json:"category"`
	ChangeType     string              `json:"change_type"`
	LastModified   time.Time           `json:"last_modified"`
}

func outputSnapshot(snap *drift.Snapshot) error {
	if flagFormat == "json" {
		return outputJSON(cliSnapshot{
			Path:           snap.Path,
			Language:       snap.Language,
			ContentHash:    snap.ContentHash,
			StructuralHash: snap.StructuralHash,
			Imports:        orEmpty(snap.Imports),
			Declarations:   snap.Declarations,
			Category:       snap.Category,
			ChangeType:     snap.ChangeType,
			LastModified:   snap.LastModified,
		})
	}

	w := io.Writer(os.Stdout)
	fmt.Fprintf(w, "Path: %s\n", snap.Path)
	fmt.Fprintf(w, "Language: %s\n", snap.Language)
	fmt.Fprintf(w, "Category: %s (%s)\n", snap.Category, snap.ChangeType)
	fmt.Fprintf(w, "Content hash: %s\n", snap.ContentHash)
	fmt.Fprintf(w, "Structural hash: %s\n", snap.StructuralHash)
	if len(snap.Imports) > 0 {
		fmt.Fprintf(w, "Imports: %s\n", strings.Join(snap.Imports, ", "))
	}
	if len(snap.Declarations) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tLINE\tVISIBILITY\tSIGNATURE")
		for _, d := range snap.Declarations {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				d.Name, d.Kind, d.Line, visibility(d.Public), signature(d))
		}
		tw.Flush()
	}
	return nil
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

func signature(d drift.Declaration) string {
	if d.Kind != drift.KindFunction && d.Kind != drift.KindMethod {
		return ""
	}
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.String()
	}
	sig := "(" + strings.Join(params, ", ") + ")"
	if d.ReturnType != "" {
		sig += " -> " + d.ReturnType
	}
	return sig
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// orEmpty keeps JSON output as [] rather than null.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
