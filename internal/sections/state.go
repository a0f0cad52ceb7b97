package sections

// ComputeState derives a section's state from its input requests. A section
// that has rendered stays rendered; otherwise it is pending while any
// required input is unresolved and ready once none are. The computation is
// idempotent and has no side effects.
func ComputeState(current State, inputs []InputRequest) State {
	if current == StateRendered {
		return StateRendered
	}
	for _, in := range inputs {
		if in.Required && !in.IsResolved {
			return StatePendingInputs
		}
	}
	return StateReadyToRender
}

// InitialState is the state of a freshly created section: sections with no
// required inputs are immediately ready.
func InitialState(inputs []InputRequest) State {
	return ComputeState(StatePendingInputs, inputs)
}

// ResolvedCounts returns how many required inputs are resolved and how many
// are required in total. Optional inputs are excluded from both.
func ResolvedCounts(inputs []InputRequest) (resolved, required int) {
	for _, in := range inputs {
		if !in.Required {
			continue
		}
		required++
		if in.IsResolved {
			resolved++
		}
	}
	return resolved, required
}
