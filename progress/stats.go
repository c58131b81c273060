// Package progress computes per-iteration labelling statistics and keeps
// their history in the task directory.
package progress

import (
	"slices"

	"github.com/teranos/treelabel/coloring"
	"github.com/teranos/treelabel/labels"
	"github.com/teranos/treelabel/tree"
)

// Stats is the statistics document written after every iteration.
type Stats struct {
	Tree            TreeStats      `json:"tree"`
	ManualLabels    ManualStats    `json:"manual_labels"`
	PredictedLabels PredictedStats `json:"predicted_labels"`
	Progress        Fractions      `json:"progress"`
	Ingest          labels.Ingest  `json:"ingest"`
}

// TreeStats describes the shape of the pruned tree.
type TreeStats struct {
	NProducts           int         `json:"n_products"`
	NCategories         int         `json:"n_categories"`
	NCategoriesPerDepth map[int]int `json:"n_categories_per_depth"`
	MaxDepth            int         `json:"max_depth"`
}

// ManualStats describes the labels given by the annotator.
type ManualStats struct {
	NManualLabels           int            `json:"n_manual_labels"`
	NAllowedLabelsUsed      int            `json:"n_allowed_labels_used"`
	AllowedLabelsNotUsed    []string       `json:"allowed_labels_not_used"`
	NAllowedLabels          int            `json:"n_allowed_labels"`
	NProductsPerManualLabel map[string]int `json:"n_products_per_manual_label"`
}

// PredictedStats describes the state of every item after propagation.
type PredictedStats struct {
	NGoodLabels         int `json:"n_good_labels"`
	NGoodManualLabels   int `json:"n_good_manual_labels"`
	NGoodInferredLabels int `json:"n_good_inferred_labels"`
	NUniqueGoodLabels   int `json:"n_unique_good_labels"`
	NMissingLabels      int `json:"n_missing_labels"`
	NToRejectLabels     int `json:"n_to_reject_labels"`
	NToSkipLabels       int `json:"n_to_skip_labels"`
	NAmbiguousLabels    int `json:"n_ambiguous_labels"`

	// Items the selector may still pick: missing or ambiguous and not
	// deferred with the skip label. Equals the driver's RequiringVerification.
	NRequiresVerification          int `json:"n_requires_verification_labels"`
	NRequiresVerificationMissing   int `json:"n_requires_verification_missing_labels"`
	NRequiresVerificationAmbiguous int `json:"n_requires_verification_ambiguous_labels"`

	NSelected          int `json:"n_selected_for_verification_labels"`
	NSelectedMissing   int `json:"n_selected_for_verification_missing_labels"`
	NSelectedAmbiguous int `json:"n_selected_for_verification_ambiguous_labels"`

	NProductsPerGoodLabel      map[string]int `json:"n_products_per_good_label"`
	NProductsPerAmbiguousLabel map[string]int `json:"n_products_per_ambiguous_label"`
}

// Fractions summarises progress relative to the number of items.
type Fractions struct {
	Manual    int     `json:"manual"`
	Univocal  float64 `json:"univocal"`
	Ambiguous float64 `json:"ambiguous"`
	Missing   float64 `json:"missing"`
	// AllowedLabels is the share of task labels used by the annotator.
	AllowedLabels float64 `json:"allowed_labels"`
}

// Collect computes the statistics of t. Allowed is the task alphabet without
// the reserved labels; ingest comes from the sheet read at the start of the
// iteration.
func Collect(t *tree.Tree, allowed []string, ingest labels.Ingest) Stats {
	alphabet := append(slices.Clone(allowed), tree.Reject, tree.Skip)
	s := Stats{Ingest: ingest}

	s.Tree.NCategoriesPerDepth = make(map[int]int)
	for _, c := range t.Categories() {
		d := t.Depth(c)
		s.Tree.NCategoriesPerDepth[d]++
		s.Tree.MaxDepth = max(s.Tree.MaxDepth, d)
	}
	s.Tree.NCategories = len(t.Categories())

	manual := zeroed(alphabet)
	good := zeroed(alphabet)
	ambiguous := zeroed(alphabet)
	unique := make(map[string]bool)

	p := &s.PredictedLabels
	in := coloring.Participating(t)
	items := t.Items()
	s.Tree.NProducts = len(items)
	for _, n := range items {
		l := t.Node(n).Labels
		s.Tree.MaxDepth = max(s.Tree.MaxDepth, t.Depth(n))

		if l.Manual != "" {
			s.ManualLabels.NManualLabels++
			manual[l.Manual]++
		}
		switch {
		case l.IsGood():
			label, _ := l.GoodLabel()
			p.NGoodLabels++
			good[label]++
			unique[label] = true
			if l.IsInferred() {
				p.NGoodInferredLabels++
			} else {
				p.NGoodManualLabels++
			}
		case l.IsAmbiguous():
			p.NAmbiguousLabels++
			for _, c := range l.Predicted {
				ambiguous[c]++
			}
		default:
			p.NMissingLabels++
		}
		if l.ToReject() {
			p.NToRejectLabels++
		}
		if l.ToSkip() {
			p.NToSkipLabels++
		}
		if in[n] && l.RequiresVerification() {
			p.NRequiresVerification++
			p.NRequiresVerificationMissing += b2i(l.IsMissing())
			p.NRequiresVerificationAmbiguous += b2i(l.IsAmbiguous())
		}
		if l.Selected {
			p.NSelected++
			p.NSelectedMissing += b2i(l.IsMissing())
			p.NSelectedAmbiguous += b2i(l.IsAmbiguous())
		}
	}
	p.NUniqueGoodLabels = len(unique)
	p.NProductsPerGoodLabel = good
	p.NProductsPerAmbiguousLabel = ambiguous

	m := &s.ManualLabels
	m.NAllowedLabels = len(alphabet)
	m.NProductsPerManualLabel = manual
	m.AllowedLabelsNotUsed = []string{}
	providedUsed := 0
	for _, l := range alphabet {
		if manual[l] == 0 {
			m.AllowedLabelsNotUsed = append(m.AllowedLabelsNotUsed, l)
			continue
		}
		m.NAllowedLabelsUsed++
		if l != tree.Reject && l != tree.Skip {
			providedUsed++
		}
	}
	slices.Sort(m.AllowedLabelsNotUsed)

	s.Progress = Fractions{
		Manual:        m.NManualLabels,
		Univocal:      ratio(p.NGoodLabels, s.Tree.NProducts),
		Ambiguous:     ratio(p.NAmbiguousLabels, s.Tree.NProducts),
		Missing:       ratio(p.NMissingLabels, s.Tree.NProducts),
		AllowedLabels: ratio(providedUsed, len(allowed)),
	}
	return s
}

func zeroed(alphabet []string) map[string]int {
	m := make(map[string]int, len(alphabet))
	for _, l := range alphabet {
		m[l] = 0
	}
	return m
}

func ratio(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
