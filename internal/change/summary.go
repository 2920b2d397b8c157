package change

import "sort"

// Summary aggregates classification results across files.
type Summary struct {
	TotalFiles    int              `json:"total_files"`
	ByCategory    map[Category]int `json:"by_category"`
	BreakingFiles []string         `json:"breaking_files"`
	AdditiveFiles []string         `json:"additive_files"`
	Additions     int              `json:"additions"`
	Removals      int              `json:"removals"`
	Modifications int              `json:"modifications"`
}

// Summarize rolls many per-file results into per-category totals plus total
// declaration-level add/remove/modify counts.
func Summarize(results map[string]Result) Summary {
	s := Summary{
		TotalFiles: len(results),
		ByCategory: map[Category]int{
			Breaking: 0,
			Additive: 0,
			Internal: 0,
			DocsOnly: 0,
			Unknown:  0,
		},
	}

	for path, result := range results {
		s.ByCategory[result.Category]++
		switch result.Category {
		case Breaking:
			s.BreakingFiles = append(s.BreakingFiles, path)
		case Additive:
			s.AdditiveFiles = append(s.AdditiveFiles, path)
		}
		for _, c := range result.Declarations {
			switch c.Change {
			case Added:
				s.Additions++
			case Removed:
				s.Removals++
			case Modified:
				s.Modifications++
			}
		}
	}

	sort.Strings(s.BreakingFiles)
	sort.Strings(s.AdditiveFiles)
	return s
}
