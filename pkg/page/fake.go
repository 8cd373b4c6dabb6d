package page

import (
	"fmt"
	"sync"
)

// FakeDocument is an in-memory Document for tests and the demo binary.
type FakeDocument struct {
	PageURL  string
	FormList []*FakeForm
}

var _ Document = (*FakeDocument)(nil)

func (d *FakeDocument) URL() string {
	return d.PageURL
}

func (d *FakeDocument) Forms() []Form {
	forms := make([]Form, len(d.FormList))
	for i, f := range d.FormList {
		forms[i] = f
	}
	return forms
}

// FakeForm is an in-memory Form. OnSubmit, when set, can cancel the
// synthetic submission by returning false.
type FakeForm struct {
	FormID    string
	FieldList []*FakeField
	OnSubmit  func() bool

	mu      sync.Mutex
	submits int
}

var _ Form = (*FakeForm)(nil)

func (f *FakeForm) ID() string {
	return f.FormID
}

func (f *FakeForm) Fields() []Field {
	fields := make([]Field, len(f.FieldList))
	for i, fl := range f.FieldList {
		fields[i] = fl
	}
	return fields
}

func (f *FakeForm) Submit() bool {
	f.mu.Lock()
	f.submits++
	f.mu.Unlock()

	if f.OnSubmit != nil {
		return f.OnSubmit()
	}
	return true
}

// SubmitCount returns how many submissions were attempted.
func (f *FakeForm) SubmitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

// FakeField is an in-memory Field that records every mutation.
type FakeField struct {
	TagName        string
	InputType      string
	FieldName      string
	FieldID        string
	LabelText      string
	Aria           string
	PlaceholderTxt string
	Hidden         bool
	Req            bool
	OptionValues   []string

	mu          sync.Mutex
	value       string
	checked     bool
	focused     bool
	highlighted bool
	scrolls     int
	inputEvents int
	changeEvts  int
}

var _ Field = (*FakeField)(nil)

// TextField returns a visible text input with a label.
func TextField(name, label string) *FakeField {
	return &FakeField{TagName: "input", InputType: "text", FieldName: name, LabelText: label}
}

func (f *FakeField) Tag() string {
	if f.TagName == "" {
		return "input"
	}
	return f.TagName
}

func (f *FakeField) Type() string        { return f.InputType }
func (f *FakeField) Name() string        { return f.FieldName }
func (f *FakeField) ID() string          { return f.FieldID }
func (f *FakeField) Label() string       { return f.LabelText }
func (f *FakeField) AriaLabel() string   { return f.Aria }
func (f *FakeField) Placeholder() string { return f.PlaceholderTxt }
func (f *FakeField) Required() bool      { return f.Req }
func (f *FakeField) Visible() bool       { return !f.Hidden }

func (f *FakeField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *FakeField) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
}

func (f *FakeField) Checked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checked
}

func (f *FakeField) SetChecked(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = on
}

func (f *FakeField) Options() []string {
	return f.OptionValues
}

func (f *FakeField) Focus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = true
}

func (f *FakeField) Blur() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = false
}

func (f *FakeField) ScrollIntoView() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
}

func (f *FakeField) Highlight(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.highlighted = on
}

func (f *FakeField) DispatchInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputEvents++
}

func (f *FakeField) DispatchChange() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeEvts++
}

// Focused reports whether the field currently holds focus.
func (f *FakeField) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

// Highlighted reports whether the fill indicator is on.
func (f *FakeField) Highlighted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.highlighted
}

// ScrollCount returns how many times the field was scrolled into view.
func (f *FakeField) ScrollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrolls
}

// InputEventCount returns how many input events were dispatched.
func (f *FakeField) InputEventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputEvents
}

// ChangeEventCount returns how many change events were dispatched.
func (f *FakeField) ChangeEventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changeEvts
}

// String aids test failure messages.
func (f *FakeField) String() string {
	return fmt.Sprintf("field(%s/%s name=%q)", f.Tag(), f.InputType, f.FieldName)
}
