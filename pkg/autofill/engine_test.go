package autofill

import (
	"testing"
	"time"

	"github.com/solace-ai/go-concierge/pkg/page"
)

func noDelay() time.Duration { return 0 }

func newTestEngine(doc *page.FakeDocument, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithTypingDelay(noDelay)}, opts...)
	return NewEngine(doc, opts...)
}

func contactForm() (*page.FakeDocument, *page.FakeForm) {
	form := &page.FakeForm{
		FormID: "contact",
		FieldList: []*page.FakeField{
			page.TextField("name", "Name"),
			{TagName: "input", InputType: "email", FieldName: "email", LabelText: "Email"},
			{TagName: "input", InputType: "date", FieldName: "dob", LabelText: "DOB"},
		},
	}
	doc := &page.FakeDocument{PageURL: "https://example.com/contact", FormList: []*page.FakeForm{form}}
	return doc, form
}

func TestFieldTraversalOrder(t *testing.T) {
	doc, form := contactForm()
	e := newTestEngine(doc)

	first := e.StartFilling(form)
	if first == nil || first.Label != "Name" {
		t.Fatalf("first field = %+v, want Name", first)
	}

	second := e.NextField()
	if second == nil || second.Label != "Email" {
		t.Fatalf("second field = %+v, want Email", second)
	}

	third := e.NextField()
	if third == nil || third.Label != "DOB" {
		t.Fatalf("third field = %+v, want DOB", third)
	}

	if got := e.NextField(); got != nil {
		t.Fatalf("fourth advance = %+v, want nil", got)
	}
	if e.CurrentField() != nil {
		t.Error("CurrentField() past the end should be nil")
	}
	if e.State() != StateComplete {
		t.Errorf("state = %v, want complete", e.State())
	}
}

func TestExtractionSkipsNonDataAndInvisible(t *testing.T) {
	form := &page.FakeForm{
		FormID: "f",
		FieldList: []*page.FakeField{
			{TagName: "input", InputType: "hidden", FieldName: "csrf"},
			{TagName: "input", InputType: "submit", FieldName: "go"},
			{TagName: "input", InputType: "button", FieldName: "b"},
			{TagName: "input", InputType: "reset", FieldName: "r"},
			{TagName: "input", InputType: "image", FieldName: "i"},
			{TagName: "input", InputType: "text", FieldName: "ghost", Hidden: true},
			page.TextField("real", "Real"),
		},
	}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	field := e.StartFilling(form)
	if field == nil || field.Label != "Real" {
		t.Fatalf("first field = %+v, want the only data field", field)
	}
	if _, total := e.Progress(); total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestLabelResolutionOrder(t *testing.T) {
	tests := []struct {
		name  string
		field *page.FakeField
		want  string
	}{
		{"label element wins", &page.FakeField{LabelText: "Full name", Aria: "aria", PlaceholderTxt: "ph", FieldName: "n"}, "Full name"},
		{"aria next", &page.FakeField{Aria: "Your email", PlaceholderTxt: "ph", FieldName: "n"}, "Your email"},
		{"placeholder next", &page.FakeField{PlaceholderTxt: "Phone number", FieldName: "n"}, "Phone number"},
		{"name next", &page.FakeField{FieldName: "company"}, "company"},
		{"id last", &page.FakeField{FieldID: "field-9"}, "field-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveLabel(tt.field); got != tt.want {
				t.Errorf("resolveLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckboxVoiceMapping(t *testing.T) {
	box := &page.FakeField{TagName: "input", InputType: "checkbox", FieldName: "terms", LabelText: "Accept terms"}
	form := &page.FakeForm{
		FormID:    "f",
		FieldList: []*page.FakeField{box, page.TextField("name", "Name")},
	}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	if !e.FillFieldByVoice("yes") {
		t.Fatal("FillFieldByVoice returned false during active session")
	}
	if !box.Checked() {
		t.Error(`"yes" did not check the box`)
	}
	if got := e.CurrentField(); got == nil || got.Label != "Name" {
		t.Errorf("cursor did not advance, current = %+v", got)
	}

	// Restart and answer no.
	e.Stop()
	e.StartFilling(form)
	e.FillFieldByVoice("no")
	if box.Checked() {
		t.Error(`"no" left the box checked`)
	}
}

func TestVoiceFillInactiveFallsThrough(t *testing.T) {
	doc, _ := contactForm()
	e := newTestEngine(doc)

	if e.FillFieldByVoice("hello there") {
		t.Fatal("inactive engine consumed an utterance meant for chat")
	}
}

func TestDropdownMatching(t *testing.T) {
	sel := &page.FakeField{
		TagName:      "select",
		FieldName:    "country",
		LabelText:    "Country",
		OptionValues: []string{"United States", "United Kingdom", "France"},
	}
	form := &page.FakeForm{FormID: "f", FieldList: []*page.FakeField{sel}}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	if err := e.FillCurrentField("france"); err != nil {
		t.Fatalf("FillCurrentField: %v", err)
	}
	if got := sel.Value(); got != "France" {
		t.Errorf("value = %q, want case-insensitive option match", got)
	}

	e.StartFilling(form)
	e.FillCurrentField("kingdom")
	if got := sel.Value(); got != "United Kingdom" {
		t.Errorf("value = %q, want substring option match", got)
	}
}

func TestRadioGroupMatchesSpokenOptionLabel(t *testing.T) {
	radio := &page.FakeField{
		TagName:      "input",
		InputType:    "radio",
		FieldName:    "contact_method",
		LabelText:    "Preferred contact method",
		OptionValues: []string{"Email", "Phone call", "Postal mail"},
	}
	form := &page.FakeForm{FormID: "f", FieldList: []*page.FakeField{radio}}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	if err := e.FillCurrentField("phone"); err != nil {
		t.Fatalf("FillCurrentField: %v", err)
	}
	if got := radio.Value(); got != "Phone call" {
		t.Errorf("value = %q, want spoken label matched against group options", got)
	}
	if !radio.Checked() {
		t.Error("matched radio member not checked")
	}
}

func TestDateFieldNormalization(t *testing.T) {
	date := &page.FakeField{TagName: "input", InputType: "date", FieldName: "dob", LabelText: "DOB"}
	form := &page.FakeForm{FormID: "f", FieldList: []*page.FakeField{date}}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	e.FillCurrentField("1st of May 2024")
	if got := date.Value(); got != "2024-05-01" {
		t.Errorf("value = %q, want 2024-05-01", got)
	}

	// Unparseable input fails soft: the raw text is committed.
	e.StartFilling(form)
	e.FillCurrentField("not a date")
	if got := date.Value(); got != "not a date" {
		t.Errorf("value = %q, want raw text retained", got)
	}
}

func TestTypingCommitsFullValueAndDispatchesEvents(t *testing.T) {
	field := page.TextField("name", "Name")
	form := &page.FakeForm{FormID: "f", FieldList: []*page.FakeField{field}}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	if err := e.FillCurrentField("Ada Lovelace"); err != nil {
		t.Fatalf("FillCurrentField: %v", err)
	}

	if got := field.Value(); got != "Ada Lovelace" {
		t.Errorf("value = %q, want complete value", got)
	}
	if field.InputEventCount() == 0 {
		t.Error("no input events dispatched")
	}
	if field.ChangeEventCount() == 0 {
		t.Error("no change event dispatched")
	}
	if field.ScrollCount() == 0 {
		t.Error("field never scrolled into view")
	}
}

func TestCompletionCallbackAndSubmit(t *testing.T) {
	field := page.TextField("name", "Name")
	form := &page.FakeForm{FormID: "f", FieldList: []*page.FakeField{field}}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}

	completed := false
	e := newTestEngine(doc, WithOnComplete(func() { completed = true }))

	e.StartFilling(form)
	e.FillCurrentField("Ada")
	if !completed {
		t.Fatal("completion callback not fired after last field")
	}

	if !e.SubmitForm() {
		t.Fatal("submit reported canceled with no page handler")
	}
	if form.SubmitCount() != 1 {
		t.Errorf("submits = %d, want 1", form.SubmitCount())
	}
	if e.Active() {
		t.Error("session still active after submit")
	}
}

func TestSubmitCancelableByPageHandler(t *testing.T) {
	field := page.TextField("name", "Name")
	form := &page.FakeForm{
		FormID:    "f",
		FieldList: []*page.FakeField{field},
		OnSubmit:  func() bool { return false },
	}
	doc := &page.FakeDocument{FormList: []*page.FakeForm{form}}
	e := newTestEngine(doc)

	e.StartFilling(form)
	e.FillCurrentField("Ada")
	if e.SubmitForm() {
		t.Fatal("submit went through despite page handler canceling it")
	}
}

func TestPreviousFieldClampsAtStart(t *testing.T) {
	doc, form := contactForm()
	e := newTestEngine(doc)

	e.StartFilling(form)
	if got := e.PreviousField(); got == nil || got.Label != "Name" {
		t.Fatalf("PreviousField at start = %+v, want clamp to first", got)
	}

	e.NextField()
	if got := e.PreviousField(); got == nil || got.Label != "Name" {
		t.Fatalf("PreviousField = %+v, want Name", got)
	}
}

func TestProgress(t *testing.T) {
	doc, form := contactForm()
	e := newTestEngine(doc)

	e.StartFilling(form)
	if visited, total := e.Progress(); visited != 0 || total != 3 {
		t.Fatalf("progress = %d/%d, want 0/3", visited, total)
	}
	e.FillCurrentField("Ada")
	if visited, _ := e.Progress(); visited != 1 {
		t.Fatalf("visited = %d, want 1", visited)
	}
}
