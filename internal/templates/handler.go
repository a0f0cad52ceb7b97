package templates

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationResponse mirrors Validation with JSON field names.
type ValidationResponse struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	FileTypes []string `json:"fileTypes,omitempty"`
}

// InputSpecResponse is the outward-facing representation of an input spec.
type InputSpecResponse struct {
	Key        string             `json:"key"`
	Label      string             `json:"label"`
	Type       string             `json:"type"`
	Required   bool               `json:"required"`
	Validation ValidationResponse `json:"validation"`
}

// TemplateResponse is the outward-facing representation of a template.
type TemplateResponse struct {
	Key          string              `json:"key"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Category     string              `json:"category"`
	Inputs       []InputSpecResponse `json:"inputs"`
	Dependencies []string            `json:"dependencies,omitempty"`
}

// RegisterRoutes attaches the template catalog route to the router group.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", listTemplates)
}

func listTemplates(c *gin.Context) {
	ordered := OrderedSections()
	out := make([]TemplateResponse, 0, len(ordered))
	for _, tpl := range ordered {
		inputs := make([]InputSpecResponse, 0, len(tpl.Inputs))
		for _, spec := range tpl.Inputs {
			inputs = append(inputs, InputSpecResponse{
				Key:      spec.Key,
				Label:    spec.Label,
				Type:     string(spec.Type),
				Required: spec.Required,
				Validation: ValidationResponse{
					MinLength: spec.Validation.MinLength,
					MaxLength: spec.Validation.MaxLength,
					Min:       spec.Validation.Min,
					Max:       spec.Validation.Max,
					FileTypes: spec.Validation.FileTypes,
				},
			})
		}
		out = append(out, TemplateResponse{
			Key:          tpl.Key,
			Title:        tpl.Title,
			Description:  tpl.Description,
			Category:     string(tpl.Category),
			Inputs:       inputs,
			Dependencies: tpl.Dependencies,
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}
