package templates

// Category classifies a section template within the dossier.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategoryTechnical     Category = "technical"
	CategoryRegulatory    Category = "regulatory"
	CategoryFinancial     Category = "financial"
	CategoryOther         Category = "other"
)

// InputType identifies the value kind an input accepts.
type InputType string

const (
	InputText    InputType = "text"
	InputNumber  InputType = "number"
	InputDate    InputType = "date"
	InputBoolean InputType = "boolean"
	InputFile    InputType = "file"
)

// Validation constrains the values accepted for an input.
// Nil fields mean the constraint does not apply.
type Validation struct {
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	FileTypes []string
}

// InputSpec describes one input a section collects.
type InputSpec struct {
	Key        string
	Label      string
	Type       InputType
	Required   bool
	Validation Validation
}

// Template is a static definition of a dossier section: the inputs it
// collects and the sections that conceptually precede it. Dependencies are
// an ordering hint for presentation; they do not block state transitions.
type Template struct {
	Key          string
	Title        string
	Description  string
	Category     Category
	Inputs       []InputSpec
	Dependencies []string
}

// RequiredInputs returns the specs whose resolution gates the section state.
func (t Template) RequiredInputs() []InputSpec {
	var out []InputSpec
	for _, spec := range t.Inputs {
		if spec.Required {
			out = append(out, spec)
		}
	}
	return out
}

// Input looks up a spec by key.
func (t Template) Input(key string) (InputSpec, bool) {
	for _, spec := range t.Inputs {
		if spec.Key == key {
			return spec, true
		}
	}
	return InputSpec{}, false
}
