package progress

import (
	"math/rand"
	"testing"
)

func sample() []SectionProgress {
	return []SectionProgress{
		{SectionKey: "project-overview", Category: "general", State: StateRendered, Resolved: 3, Required: 3, Position: 0},
		{SectionKey: "site-description", Category: "general", State: StateReadyToRender, Resolved: 3, Required: 3, Position: 1},
		{SectionKey: "environmental-impact", Category: "environmental", State: StatePendingInputs, Resolved: 1, Required: 3, Position: 2},
		{SectionKey: "grid-connection", Category: "electrical", State: StatePendingInputs, Resolved: 0, Required: 3, Position: 4},
		{SectionKey: "annexes", Category: "supporting", State: StateReadyToRender, Resolved: 0, Required: 0, Position: 12},
	}
}

func TestComputeCounts(t *testing.T) {
	report := Compute(sample())

	if report.Sections != 5 {
		t.Fatalf("sections = %d, want 5", report.Sections)
	}
	if report.SectionsPending != 2 || report.SectionsReady != 2 || report.SectionsRendered != 1 {
		t.Fatalf("state counts = %d/%d/%d", report.SectionsPending, report.SectionsReady, report.SectionsRendered)
	}
	if report.Resolved != 7 || report.Required != 9 {
		t.Fatalf("inputs = %d/%d, want 7/9", report.Resolved, report.Required)
	}
	wantPercent := 7.0 / 9.0 * 100
	if report.Percent != wantPercent {
		t.Fatalf("percent = %v, want %v", report.Percent, wantPercent)
	}
}

func TestComputeNextIncompletePrefersHighestRatio(t *testing.T) {
	report := Compute(sample())

	// project-overview is rendered and out of the running; site-description
	// at 3/3 beats every partially-resolved section.
	if report.NextIncomplete != "site-description" {
		t.Fatalf("nextIncomplete = %q", report.NextIncomplete)
	}
}

func TestComputeNextIncompleteTieBreaksByPosition(t *testing.T) {
	report := Compute([]SectionProgress{
		{SectionKey: "b", State: StatePendingInputs, Resolved: 1, Required: 2, Position: 3},
		{SectionKey: "a", State: StatePendingInputs, Resolved: 2, Required: 4, Position: 1},
	})

	if report.NextIncomplete != "a" {
		t.Fatalf("nextIncomplete = %q, want the earlier section on equal ratios", report.NextIncomplete)
	}
}

func TestComputeNeedsAttentionExcludesUntouched(t *testing.T) {
	report := Compute(sample())

	// grid-connection has zero progress and is "not started", not stuck.
	if len(report.NeedsAttention) != 1 || report.NeedsAttention[0] != "environmental-impact" {
		t.Fatalf("needsAttention = %v", report.NeedsAttention)
	}
}

func TestComputeNeedsAttentionSortedByRatioDescending(t *testing.T) {
	report := Compute([]SectionProgress{
		{SectionKey: "low", State: StatePendingInputs, Resolved: 1, Required: 4, Position: 0},
		{SectionKey: "high", State: StatePendingInputs, Resolved: 2, Required: 3, Position: 1},
		{SectionKey: "mid", State: StatePendingInputs, Resolved: 3, Required: 5, Position: 2},
	})

	want := []string{"high", "mid", "low"}
	if len(report.NeedsAttention) != len(want) {
		t.Fatalf("needsAttention = %v", report.NeedsAttention)
	}
	for i := range want {
		if report.NeedsAttention[i] != want[i] {
			t.Fatalf("needsAttention = %v, want %v", report.NeedsAttention, want)
		}
	}
}

func TestComputePartialDocumentRanking(t *testing.T) {
	report := Compute([]SectionProgress{
		{SectionKey: "a", State: StateRendered, Resolved: 2, Required: 2, Position: 0},
		{SectionKey: "b", State: StatePendingInputs, Resolved: 1, Required: 3, Position: 1},
		{SectionKey: "c", State: StatePendingInputs, Resolved: 0, Required: 4, Position: 2},
	})

	if report.NextIncomplete != "b" {
		t.Fatalf("nextIncomplete = %q, want b", report.NextIncomplete)
	}
	if len(report.NeedsAttention) != 1 || report.NeedsAttention[0] != "b" {
		t.Fatalf("needsAttention = %v, want [b]", report.NeedsAttention)
	}
}

func TestComputeByCategoryRenderedShare(t *testing.T) {
	report := Compute(sample())

	if len(report.ByCategory) != 4 {
		t.Fatalf("categories = %d, want 4", len(report.ByCategory))
	}
	first := report.ByCategory[0]
	if first.Category != "general" || first.Sections != 2 || first.SectionsRendered != 1 {
		t.Fatalf("general category = %+v", first)
	}
	if first.Percent != 50 {
		t.Fatalf("general percent = %v, want 50", first.Percent)
	}
	last := report.ByCategory[3]
	if last.Category != "supporting" || last.Percent != 0 {
		t.Fatalf("supporting category = %+v", last)
	}
}

func TestComputeEmptyDocument(t *testing.T) {
	report := Compute(nil)

	if report.Sections != 0 {
		t.Fatalf("sections = %d", report.Sections)
	}
	if report.Percent != 0 {
		t.Fatalf("empty document percent = %v, want 0", report.Percent)
	}
	if report.NextIncomplete != "" || len(report.NeedsAttention) != 0 {
		t.Fatalf("unexpected incompleteness markers: %+v", report)
	}
}

func TestComputeZeroRequiredInputsReportsZeroPercent(t *testing.T) {
	report := Compute([]SectionProgress{
		{SectionKey: "annexes", State: StateReadyToRender, Resolved: 0, Required: 0, Position: 0},
	})

	if report.Percent != 0 {
		t.Fatalf("percent = %v, want 0 with no required inputs", report.Percent)
	}
}

func TestComputePercentMatchesRawSums(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	states := []string{StatePendingInputs, StateReadyToRender, StateRendered}

	for round := 0; round < 200; round++ {
		n := rng.Intn(20)
		secs := make([]SectionProgress, 0, n)
		sumResolved, sumRequired := 0, 0
		for i := 0; i < n; i++ {
			required := rng.Intn(6)
			resolved := 0
			if required > 0 {
				resolved = rng.Intn(required + 1)
			}
			secs = append(secs, SectionProgress{
				SectionKey: "s",
				State:      states[rng.Intn(len(states))],
				Resolved:   resolved,
				Required:   required,
				Position:   i,
			})
			sumResolved += resolved
			sumRequired += required
		}

		want := 0.0
		if sumRequired > 0 {
			want = float64(sumResolved) / float64(sumRequired) * 100
		}
		if got := Compute(secs).Percent; got != want {
			t.Fatalf("round %d: percent = %v, want %v (resolved=%d required=%d)",
				round, got, want, sumResolved, sumRequired)
		}
	}
}
