package sections

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"dossier-backend/internal/templates"
)

// DateFormat is the wire format for date-typed inputs.
const DateFormat = "2006-01-02"

// InputValue is a resolved input value tagged by its input type. Only the
// field matching Type is meaningful.
type InputValue struct {
	Type     templates.InputType
	Text     string
	Number   float64
	Date     time.Time
	Bool     bool
	FileName string
}

type inputValueJSON struct {
	Type     templates.InputType `json:"type"`
	Text     *string             `json:"text,omitempty"`
	Number   *float64            `json:"number,omitempty"`
	Date     *string             `json:"date,omitempty"`
	Bool     *bool               `json:"bool,omitempty"`
	FileName *string             `json:"fileName,omitempty"`
}

// MarshalJSON encodes only the field matching the value's type.
func (v InputValue) MarshalJSON() ([]byte, error) {
	out := inputValueJSON{Type: v.Type}
	switch v.Type {
	case templates.InputText:
		out.Text = &v.Text
	case templates.InputNumber:
		out.Number = &v.Number
	case templates.InputDate:
		d := v.Date.Format(DateFormat)
		out.Date = &d
	case templates.InputBoolean:
		out.Bool = &v.Bool
	case templates.InputFile:
		out.FileName = &v.FileName
	default:
		return nil, fmt.Errorf("input value has unknown type %q", v.Type)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tagged value.
func (v *InputValue) UnmarshalJSON(data []byte) error {
	var raw inputValueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := InputValue{Type: raw.Type}
	switch raw.Type {
	case templates.InputText:
		if raw.Text != nil {
			parsed.Text = *raw.Text
		}
	case templates.InputNumber:
		if raw.Number != nil {
			parsed.Number = *raw.Number
		}
	case templates.InputDate:
		if raw.Date != nil {
			d, err := time.Parse(DateFormat, *raw.Date)
			if err != nil {
				return fmt.Errorf("parse date value: %w", err)
			}
			parsed.Date = d
		}
	case templates.InputBoolean:
		if raw.Bool != nil {
			parsed.Bool = *raw.Bool
		}
	case templates.InputFile:
		if raw.FileName != nil {
			parsed.FileName = *raw.FileName
		}
	default:
		return fmt.Errorf("input value has unknown type %q", raw.Type)
	}
	*v = parsed
	return nil
}

// Display returns a human-readable rendering of the value.
func (v InputValue) Display() string {
	switch v.Type {
	case templates.InputText:
		return v.Text
	case templates.InputNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case templates.InputDate:
		return v.Date.Format(DateFormat)
	case templates.InputBoolean:
		if v.Bool {
			return "Sí"
		}
		return "No"
	case templates.InputFile:
		return v.FileName
	default:
		return ""
	}
}
