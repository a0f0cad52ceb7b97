// Package progress aggregates per-section resolution into document-level
// completion reporting.
package progress

import "sort"

// SectionProgress is the per-section slice of data progress math needs.
type SectionProgress struct {
	SectionID  string
	SectionKey string
	Title      string
	Category   string
	State      string
	Resolved   int
	Required   int
	Position   int
}

// States mirrored here so this package stays free of engine imports.
const (
	StatePendingInputs = "pending_inputs"
	StateReadyToRender = "ready_to_render"
	StateRendered      = "rendered"
)

// CategoryProgress summarizes one template category. Percent is the share
// of the category's sections that have rendered.
type CategoryProgress struct {
	Category         string  `json:"category"`
	Sections         int     `json:"sections"`
	SectionsRendered int     `json:"sectionsRendered"`
	Resolved         int     `json:"inputsResolved"`
	Required         int     `json:"inputsRequired"`
	Percent          float64 `json:"percent"`
}

// Report is the full progress snapshot for a document.
type Report struct {
	Sections         int                `json:"sections"`
	SectionsPending  int                `json:"sectionsPending"`
	SectionsReady    int                `json:"sectionsReady"`
	SectionsRendered int                `json:"sectionsRendered"`
	Resolved         int                `json:"inputsResolved"`
	Required         int                `json:"inputsRequired"`
	Percent          float64            `json:"percent"`
	ByCategory       []CategoryProgress `json:"byCategory"`
	NextIncomplete   string             `json:"nextIncomplete,omitempty"`
	NeedsAttention   []string           `json:"needsAttention,omitempty"`
}

// Compute builds the progress report. Percent is the share of required
// inputs resolved across all sections; a document with no required inputs
// reports 0 rather than dividing by zero.
func Compute(sections []SectionProgress) Report {
	report := Report{Sections: len(sections)}
	byCat := make(map[string]*CategoryProgress)

	ordered := make([]SectionProgress, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	var attention []SectionProgress
	for _, sec := range ordered {
		switch sec.State {
		case StateReadyToRender:
			report.SectionsReady++
		case StateRendered:
			report.SectionsRendered++
		default:
			report.SectionsPending++
		}
		report.Resolved += sec.Resolved
		report.Required += sec.Required

		cat, ok := byCat[sec.Category]
		if !ok {
			cat = &CategoryProgress{Category: sec.Category}
			byCat[sec.Category] = cat
		}
		cat.Sections++
		if sec.State == StateRendered {
			cat.SectionsRendered++
		}
		cat.Resolved += sec.Resolved
		cat.Required += sec.Required

		if sec.Resolved > 0 && sec.Resolved < sec.Required {
			attention = append(attention, sec)
		}
	}

	report.Percent = percent(report.Resolved, report.Required)
	report.NextIncomplete = nextIncomplete(ordered)

	// Partially-complete sections, closest to done first. Untouched
	// sections are "not started", a separate bucket for callers.
	sort.SliceStable(attention, func(i, j int) bool {
		return completionRatio(attention[i]) > completionRatio(attention[j])
	})
	for _, sec := range attention {
		report.NeedsAttention = append(report.NeedsAttention, sec.SectionKey)
	}

	// Categories ordered by first appearance in assembly order.
	seen := make(map[string]bool)
	for _, sec := range ordered {
		if seen[sec.Category] {
			continue
		}
		seen[sec.Category] = true
		cat := byCat[sec.Category]
		cat.Percent = float64(cat.SectionsRendered) / float64(cat.Sections) * 100
		report.ByCategory = append(report.ByCategory, *cat)
	}

	return report
}

// nextIncomplete picks the unrendered section closest to completion, ties
// broken by assembly order. ordered must already be sorted by position.
func nextIncomplete(ordered []SectionProgress) string {
	best := -1
	for i, sec := range ordered {
		if sec.State == StateRendered {
			continue
		}
		if best < 0 || completionRatio(sec) > completionRatio(ordered[best]) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return ordered[best].SectionKey
}

func completionRatio(sec SectionProgress) float64 {
	if sec.Required == 0 {
		return 1
	}
	return float64(sec.Resolved) / float64(sec.Required)
}

func percent(resolved, required int) float64 {
	if required == 0 {
		return 0
	}
	p := float64(resolved) / float64(required) * 100
	if p > 100 {
		p = 100
	}
	return p
}
