// Package display renders command results for people (pterm tables) or for
// machines (JSON).
package display

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/treelabel/history"
	"github.com/teranos/treelabel/progress"
)

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// ProgressTable returns one row per recorded iteration.
func ProgressTable(records []progress.Record) pterm.TableData {
	data := pterm.TableData{
		{"Iteration", "Manual", "Univocal", "Ambiguous", "Missing", "Total", "Allowed Labels"},
	}
	for _, r := range records {
		p := r.Stats.Progress
		data = append(data, []string{
			strconv.Itoa(r.Iteration),
			strconv.Itoa(p.Manual),
			percent(p.Univocal),
			percent(p.Ambiguous),
			percent(p.Missing),
			strconv.Itoa(r.Stats.Tree.NProducts),
			percent(p.AllowedLabels),
		})
	}
	return data
}

// ManualCoverageTable returns how many items carry each manual label,
// largest first.
func ManualCoverageTable(s progress.Stats) pterm.TableData {
	data := pterm.TableData{{"Label", "Manual"}}
	for _, l := range byCount(s.ManualLabels.NProductsPerManualLabel) {
		data = append(data, []string{l, strconv.Itoa(s.ManualLabels.NProductsPerManualLabel[l])})
	}
	return data
}

// PredictedCoverageTable returns good and ambiguous item counts per label.
func PredictedCoverageTable(s progress.Stats) pterm.TableData {
	p := s.PredictedLabels
	data := pterm.TableData{{"Label", "Good", "Ambiguous"}}
	for _, l := range byCount(p.NProductsPerGoodLabel) {
		data = append(data, []string{
			l,
			strconv.Itoa(p.NProductsPerGoodLabel[l]),
			strconv.Itoa(p.NProductsPerAmbiguousLabel[l]),
		})
	}
	return data
}

// HistoryTable returns one row per ledger entry.
func HistoryTable(entries []history.Entry) pterm.TableData {
	data := pterm.TableData{
		{"Iteration", "Run", "Started", "Selector", "Sample", "Selected", "To verify", "Good", "Exhausted"},
	}
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.Iteration),
			shortID(e.RunID),
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Selector,
			strconv.Itoa(e.SampleSize),
			strconv.Itoa(e.Selected),
			strconv.Itoa(e.RequiringVerification),
			strconv.Itoa(e.Good),
			strconv.FormatBool(e.Exhausted),
		})
	}
	return data
}

// RenderTable writes data to w with its first row as header.
func RenderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// byCount orders labels by descending count, then by name.
func byCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return strings.Compare(a, b)
	})
	return keys
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
