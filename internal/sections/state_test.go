package sections

import (
	"testing"

	"dossier-backend/internal/templates"
)

func reqInput(key string, required, resolved bool) InputRequest {
	return InputRequest{
		InputKey:   key,
		Type:       templates.InputText,
		Required:   required,
		IsResolved: resolved,
	}
}

func TestComputeStatePendingWhileRequiredUnresolved(t *testing.T) {
	inputs := []InputRequest{
		reqInput("a", true, true),
		reqInput("b", true, false),
		reqInput("c", false, false),
	}
	if got := ComputeState(StatePendingInputs, inputs); got != StatePendingInputs {
		t.Fatalf("expected pending_inputs, got %s", got)
	}
}

func TestComputeStateReadyWhenAllRequiredResolved(t *testing.T) {
	inputs := []InputRequest{
		reqInput("a", true, true),
		reqInput("b", false, false), // optional never blocks
	}
	if got := ComputeState(StatePendingInputs, inputs); got != StateReadyToRender {
		t.Fatalf("expected ready_to_render, got %s", got)
	}
}

func TestComputeStateRenderedIsSticky(t *testing.T) {
	inputs := []InputRequest{reqInput("a", true, false)}
	if got := ComputeState(StateRendered, inputs); got != StateRendered {
		t.Fatalf("rendered section must stay rendered, got %s", got)
	}
}

func TestComputeStateIdempotent(t *testing.T) {
	inputs := []InputRequest{reqInput("a", true, true)}
	first := ComputeState(StatePendingInputs, inputs)
	second := ComputeState(first, inputs)
	if first != second {
		t.Fatalf("recompute changed state: %s then %s", first, second)
	}
}

func TestInitialStateNoRequiredInputs(t *testing.T) {
	inputs := []InputRequest{reqInput("note", false, false)}
	if got := InitialState(inputs); got != StateReadyToRender {
		t.Fatalf("section without required inputs must start ready, got %s", got)
	}
	if got := InitialState(nil); got != StateReadyToRender {
		t.Fatalf("section with no inputs must start ready, got %s", got)
	}
}

func TestResolvedCountsExcludesOptional(t *testing.T) {
	inputs := []InputRequest{
		reqInput("a", true, true),
		reqInput("b", true, false),
		reqInput("c", false, true),
	}
	resolved, required := ResolvedCounts(inputs)
	if resolved != 1 || required != 2 {
		t.Fatalf("expected 1/2, got %d/%d", resolved, required)
	}
}
