// Package page defines the host page capabilities the assistant needs:
// enumerating forms, reading and writing field values, and dispatching
// the synthetic events a page's own scripts listen for.
//
// The interfaces are deliberately narrow. A real host binds them to its
// DOM; tests use the in-memory fake in this package.
package page

// Document is the host page.
type Document interface {
	// URL returns the current page URL.
	URL() string

	// Forms returns the page's forms in document order.
	Forms() []Form
}

// Form is one fillable form.
type Form interface {
	// ID returns a stable identifier for the form (id attribute, name,
	// or a positional fallback).
	ID() string

	// Fields returns the form's controls in document order, including
	// ones the autofill engine will skip.
	Fields() []Field

	// Submit dispatches a cancelable submit event and, if no handler
	// cancels it, performs the submission. It reports whether the
	// submission went through.
	Submit() bool
}

// Field is one form control.
type Field interface {
	// Tag returns the element tag: "input", "select" or "textarea".
	Tag() string

	// Type returns the input type attribute ("text", "email",
	// "checkbox", "hidden", ...). Empty for non-inputs.
	Type() string

	// Name and ID return the respective attributes, possibly empty.
	Name() string
	ID() string

	// Label returns the text of an associated label element, resolved
	// by the host from label[for] or an enclosing label. Empty when
	// the field has no label element.
	Label() string

	// AriaLabel and Placeholder return the respective attributes.
	AriaLabel() string
	Placeholder() string

	// Required reports the required attribute.
	Required() bool

	// Visible reports whether the control is rendered. Collapsed and
	// zero-size controls are not fillable.
	Visible() bool

	// Value returns the current value.
	Value() string

	// SetValue replaces the value without dispatching events.
	SetValue(v string)

	// Checked reports and sets the checked state of checkboxes and
	// radio buttons.
	Checked() bool
	SetChecked(on bool)

	// Options returns the choices a control offers, in order: a
	// select's option texts, or the resolved labels of a radio group
	// (the host collapses the group into one Field and SetValue picks
	// the matching member). Empty for other controls.
	Options() []string

	// Focus, Blur and ScrollIntoView mirror the DOM calls.
	Focus()
	Blur()
	ScrollIntoView()

	// Highlight toggles the visual fill indicator on the control.
	Highlight(on bool)

	// DispatchInput and DispatchChange fire the synthetic events that
	// framework-bound pages rely on to notice programmatic edits.
	DispatchInput()
	DispatchChange()
}
