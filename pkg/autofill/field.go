package autofill

import (
	"strings"

	"github.com/solace-ai/go-concierge/pkg/page"
)

// FieldType classifies a form field for value coercion.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypeDate     FieldType = "date"
	TypeNumber   FieldType = "number"
	TypeDropdown FieldType = "dropdown"
	TypeCheckbox FieldType = "checkbox"
	TypeChoice   FieldType = "choice"
	TypePassword FieldType = "password"
	TypeURL      FieldType = "url"
)

// FormField is one extracted fillable field.
type FormField struct {
	// Ref is the underlying page control.
	Ref page.Field

	// Label is the resolved human-readable label.
	Label string

	// Type drives value coercion.
	Type FieldType

	// Required mirrors the required attribute.
	Required bool

	// Placeholder is the placeholder text, possibly empty.
	Placeholder string
}

// skippedInputTypes are input types that carry no user data.
var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// extractFields enumerates a form's fillable fields in document order,
// dropping non-data input types and invisible controls. The set is
// extracted fresh at the start of each fill session.
func extractFields(form page.Form) []*FormField {
	var fields []*FormField
	for _, f := range form.Fields() {
		if f.Tag() == "input" && skippedInputTypes[strings.ToLower(f.Type())] {
			continue
		}
		if !f.Visible() {
			continue
		}
		fields = append(fields, &FormField{
			Ref:         f,
			Label:       resolveLabel(f),
			Type:        inferType(f),
			Required:    f.Required(),
			Placeholder: f.Placeholder(),
		})
	}
	return fields
}

// resolveLabel picks the best human-readable label for a control:
// associated label element, aria-label, placeholder, then name or id.
func resolveLabel(f page.Field) string {
	if label := strings.TrimSpace(f.Label()); label != "" {
		return label
	}
	if aria := strings.TrimSpace(f.AriaLabel()); aria != "" {
		return aria
	}
	if ph := strings.TrimSpace(f.Placeholder()); ph != "" {
		return ph
	}
	if name := f.Name(); name != "" {
		return name
	}
	return f.ID()
}

// inferType maps a control's tag and type attribute to a FieldType.
func inferType(f page.Field) FieldType {
	switch f.Tag() {
	case "select":
		return TypeDropdown
	case "textarea":
		return TypeText
	}

	switch strings.ToLower(f.Type()) {
	case "email":
		return TypeEmail
	case "tel", "phone":
		return TypePhone
	case "date":
		return TypeDate
	case "number":
		return TypeNumber
	case "checkbox":
		return TypeCheckbox
	case "radio":
		return TypeChoice
	case "password":
		return TypePassword
	case "url":
		return TypeURL
	default:
		return TypeText
	}
}
