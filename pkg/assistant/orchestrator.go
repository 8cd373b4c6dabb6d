// Package assistant is the conversational orchestration engine. It
// owns the session message log and sequences the independently-failing
// subsystems (AI fallback client, speech input, speech output, idle
// nudge, form autofill, avatar) so they never overlap or desynchronize.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/solace-ai/go-concierge/internal/log"
	"github.com/solace-ai/go-concierge/pkg/ai"
	"github.com/solace-ai/go-concierge/pkg/autofill"
	"github.com/solace-ai/go-concierge/pkg/avatar"
	"github.com/solace-ai/go-concierge/pkg/nudge"
	"github.com/solace-ai/go-concierge/pkg/page"
	"github.com/solace-ai/go-concierge/pkg/speech"
	"github.com/solace-ai/go-concierge/pkg/tts"
)

var (
	// ErrBusy is returned when a reply is already in flight. At most
	// one AI call runs at a time.
	ErrBusy = errors.New("assistant: a reply is already in flight")

	// ErrNotInitialized is returned for operations before Init.
	ErrNotInitialized = errors.New("assistant: engine not initialized")
)

// unavailableMessage is shown on fatal auth failures.
const unavailableMessage = "Sorry, the assistant is unavailable right now. Please try again later."

// Deps are the collaborators the engine orchestrates. AI is required;
// the rest are optional capabilities degraded gracefully when absent.
type Deps struct {
	AI         ai.Client
	Speaker    *tts.Speaker
	Recognizer speech.Recognizer
	Avatar     avatar.Capability
	Document   page.Document
}

// Events are optional observer callbacks, used by the web bridge.
// Callbacks run synchronously on the engine's calling goroutine.
type Events struct {
	// Message fires for every appended log entry.
	Message func(Message)

	// State fires on subsystem state changes ("speech"/"listening",
	// "tts"/"speaking", ...).
	State func(component, state string)
}

// Engine is the orchestrator. Create with New, then Init; one Engine
// per widget instance, no package-level singleton.
type Engine struct {
	cfg    Config
	client ai.Client
	logger *slog.Logger

	speaker *tts.Speaker
	input   *speech.Input
	nudger  *nudge.Timer
	filler  *autofill.Engine
	face    *avatar.Controller
	doc     page.Document

	mu          sync.Mutex
	initialized bool
	busy        bool
	sessionID   string
	persona     Persona
	language    Language
	messages    []Message
	events      Events
}

// New wires an engine from config and collaborators.
func New(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.AI == nil {
		return nil, errors.New("assistant: AI client required")
	}

	e := &Engine{
		cfg:      cfg,
		client:   deps.AI,
		logger:   log.Component("assistant"),
		speaker:  deps.Speaker,
		doc:      deps.Document,
		persona:  PersonaByID(cfg.Persona),
		language: LanguageByCode(cfg.Language),
	}

	if deps.Avatar != nil {
		e.face = avatar.NewController(deps.Avatar)
	}
	if deps.Recognizer != nil && cfg.VoiceEnabled {
		e.input = speech.NewInput(deps.Recognizer, log.L())
		e.input.OnResult(e.handleRecognized)
		e.input.OnListeningChange(e.handleListeningChange)
		e.input.OnError(e.handleSpeechError)
	}
	if deps.Document != nil && cfg.AutofillEnabled {
		e.filler = autofill.NewEngine(deps.Document)
	}
	e.nudger = nudge.NewTimer(e.deliverNudge,
		nudge.WithIdleTimeout(cfg.IdleTimeout),
		nudge.WithRules(cfg.NudgeRules),
	)
	if e.speaker != nil {
		e.speaker.OnStateChange(e.handleSpeakerState)
		// The config flag can only tighten the policy; a host that
		// already disabled fallback on the Speaker keeps it disabled.
		if !cfg.NativeFallbackEnabled {
			e.speaker.SetNativeFallbackDisabled(true)
		}
	}

	return e, nil
}

// SetEvents installs observer callbacks. Call before Init.
func (e *Engine) SetEvents(ev Events) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = ev
}

// Init starts the session: avatar up, greeting appended and spoken,
// idle timer armed.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return errors.New("assistant: already initialized")
	}
	e.initialized = true
	e.sessionID = uuid.NewString()
	persona := e.persona
	language := e.language
	e.mu.Unlock()

	e.logger.Info("session started",
		"session", e.sessionID,
		"site", e.cfg.SiteID,
		"persona", persona.ID,
		"language", language.Code,
	)

	if e.face != nil {
		e.face.Start()
		e.face.SetLocale(language.Code)
		e.face.SetAccentColor(persona.Color)
		e.face.Handle(avatar.EventGreeting)
	}

	greeting := e.append(NewMessage(ai.RoleAssistant, persona.Greeting, language.Code))
	e.speak(ctx, greeting.Content)
	if e.face != nil {
		e.face.Handle(avatar.EventIdle)
	}

	if e.doc != nil {
		e.nudger.SetURL(e.doc.URL())
	}
	e.nudger.Start()
	return nil
}

// Destroy tears the session down. The engine cannot be reused.
func (e *Engine) Destroy() {
	e.mu.Lock()
	e.initialized = false
	e.mu.Unlock()

	e.nudger.Stop()
	if e.input != nil {
		e.input.Stop()
	}
	if e.speaker != nil {
		_ = e.speaker.Close()
	}
	if e.filler != nil {
		e.filler.Stop()
	}
	if e.face != nil {
		e.face.Destroy()
	}
	e.logger.Info("session destroyed", "session", e.sessionID)
}

// HandleText routes one user utterance, typed or transcribed. While a
// form-fill session is active the utterance goes to the autofill
// cursor first; otherwise it is appended to the log and answered by
// the AI pipeline. The assistant's reply (or error notice) is
// returned after being appended and spoken.
func (e *Engine) HandleText(ctx context.Context, text string) (Message, error) {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return Message{}, ErrNotInitialized
	}
	e.mu.Unlock()

	// Activity resets the idle countdown synchronously, so a nudge can
	// never fire inside an active exchange.
	e.nudger.Reset()

	if e.filler != nil {
		if e.filler.State() == autofill.StateComplete {
			if reply, handled := e.finishFill(text); handled {
				return reply, nil
			}
		} else if e.filler.FillFieldByVoice(text) {
			reply := e.append(NewMessage(ai.RoleAssistant, e.fillPrompt(), e.Language().Code))
			return reply, nil
		}
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return Message{}, ErrBusy
	}
	e.busy = true
	language := e.language
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	// The user message lands in the log before the AI pipeline runs.
	e.append(NewMessage(ai.RoleUser, text, language.Code))

	if e.face != nil {
		e.face.Handle(avatar.EventThinking)
	}

	reply, err := e.client.Send(ctx, text, e.historyBefore(1))
	if err != nil {
		msg := e.append(NewMessage(ai.RoleAssistant, e.describeFailure(err), language.Code))
		if e.face != nil {
			e.face.Handle(avatar.EventIdle)
		}
		e.nudger.Start()
		return msg, err
	}

	display, quick := parseQuickReplies(reply)
	spoken := display
	display = tts.StripDirectives(display)

	msg := NewMessage(ai.RoleAssistant, display, language.Code)
	msg.QuickReplies = quick
	// Reply is appended before synthesis starts.
	e.append(msg)

	e.speak(ctx, spoken)
	if e.face != nil {
		e.face.Handle(avatar.EventIdle)
	}

	// The timer is re-armed only once the turn has fully completed.
	e.nudger.Start()
	return msg, nil
}

// StartListening begins a single-shot speech capture in the session
// language. The transcript is routed through HandleText.
func (e *Engine) StartListening() error {
	if e.input == nil {
		return errors.New("assistant: voice input not available")
	}
	e.nudger.Reset()
	if e.speaker != nil {
		// Never listen to our own voice.
		e.speaker.Stop()
	}
	return e.input.Start(e.Language().VoiceLang)
}

// StopListening hard-stops any capture, discarding partial results.
func (e *Engine) StopListening() {
	if e.input != nil {
		e.input.Stop()
	}
}

// NotifyActivity reports user activity (pointer, key, scroll, touch)
// and resets the idle countdown.
func (e *Engine) NotifyActivity() {
	e.nudger.Reset()
}

// NotifyGesture reports a user gesture, releasing any audio deferred
// by the autoplay policy.
func (e *Engine) NotifyGesture(ctx context.Context) {
	e.nudger.Reset()
	if e.speaker != nil {
		if err := e.speaker.NotifyGesture(ctx); err != nil {
			e.logger.Warn("deferred playback failed", "error", err)
		}
	}
}

// SetPersona switches the active persona, recoloring the avatar and
// greeting in the new voice.
func (e *Engine) SetPersona(ctx context.Context, id string) {
	e.mu.Lock()
	e.persona = PersonaByID(id)
	persona := e.persona
	language := e.language
	e.mu.Unlock()

	e.logger.Info("persona switched", "persona", persona.ID)
	if e.face != nil {
		e.face.SetAccentColor(persona.Color)
		e.face.Handle(avatar.EventGreeting)
	}
	greeting := e.append(NewMessage(ai.RoleAssistant, persona.Greeting, language.Code))
	e.speak(ctx, greeting.Content)
	if e.face != nil {
		e.face.Handle(avatar.EventIdle)
	}
}

// SetLanguage switches the session language, driving recognition
// locale, synthesis locale and avatar color.
func (e *Engine) SetLanguage(code string) {
	e.mu.Lock()
	e.language = LanguageByCode(code)
	language := e.language
	e.mu.Unlock()

	e.logger.Info("language switched", "language", language.Code)
	if e.face != nil {
		e.face.SetLocale(language.Code)
	}
}

// Autofill exposes the form-fill engine, or nil when autofill is
// disabled or the page capability is absent.
func (e *Engine) Autofill() *autofill.Engine {
	return e.filler
}

// Messages returns a copy of the session log.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// SessionID returns the session identifier assigned at Init.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Persona returns the active persona.
func (e *Engine) Persona() Persona {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persona
}

// Language returns the active language.
func (e *Engine) Language() Language {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// Status is a point-in-time snapshot for observability surfaces.
type Status struct {
	SessionID string `json:"sessionId"`
	SiteID    string `json:"siteId"`
	Persona   string `json:"persona"`
	Language  string `json:"language"`
	Busy      bool   `json:"busy"`
	Listening bool   `json:"listening"`
	Messages  int    `json:"messages"`
}

// Status reports the engine's current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	listening := false
	if e.input != nil {
		listening = e.input.State() == speech.StateListening
	}
	return Status{
		SessionID: e.sessionID,
		SiteID:    e.cfg.SiteID,
		Persona:   e.persona.ID,
		Language:  e.language.Code,
		Busy:      e.busy,
		Listening: listening,
		Messages:  len(e.messages),
	}
}

// append adds a message to the log and notifies observers.
func (e *Engine) append(msg Message) Message {
	e.mu.Lock()
	e.messages = append(e.messages, msg)
	notify := e.events.Message
	e.mu.Unlock()

	if notify != nil {
		notify(msg)
	}
	return msg
}

// historyBefore returns the log as AI turns, excluding the most recent
// skip entries (the prompt being answered is passed separately).
func (e *Engine) historyBefore(skip int) []ai.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()

	end := len(e.messages) - skip
	if end < 0 {
		end = 0
	}
	turns := make([]ai.Turn, 0, end)
	for _, m := range e.messages[:end] {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			continue
		}
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// speak voices text through the output engine. Synthesis and playback
// failures degrade to text-only and are not surfaced as turn errors.
func (e *Engine) speak(ctx context.Context, text string) {
	if e.speaker == nil || text == "" {
		return
	}
	err := e.speaker.Speak(ctx, tts.SpeakRequest{
		Text:     text,
		VoiceRef: e.voiceRef(),
		Lang:     e.Language().VoiceLang,
		Pitch:    e.Persona().VoicePitch,
		Rate:     e.Persona().VoiceRate,
	})
	if err != nil {
		e.logger.Warn("speech output failed, continuing in text", "error", err)
	}
}

// voiceRef resolves the cloned-voice reference for the active persona.
func (e *Engine) voiceRef() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ref, ok := e.cfg.VoiceRefs[e.persona.ID]; ok {
		return ref
	}
	return e.persona.VoiceRef
}

// describeFailure maps an AI pipeline error to user-facing text.
func (e *Engine) describeFailure(err error) string {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuth() {
		return unavailableMessage
	}

	var diag *ai.DiagnosticError
	if errors.As(err, &diag) {
		text := "I couldn't reach any assistant model. " + unavailableMessage
		e.logger.Error("all AI candidates exhausted", "attempts", len(diag.Attempts))
		for _, item := range diag.Checklist() {
			e.logger.Error("diagnostic", "check", item)
		}
		return text
	}

	return unavailableMessage
}

// Utterances the completed-form prompt accepts as an answer.
var (
	submitIntents = map[string]bool{
		"submit": true, "submit it": true, "send": true, "send it": true,
		"yes": true, "yes please": true, "go ahead": true, "do it": true,
	}
	cancelIntents = map[string]bool{
		"cancel": true, "no": true, "stop": true, "don't": true,
		"never mind": true, "nevermind": true,
	}
)

// finishFill resolves the utterance the completion prompt asked for.
// A submit intent dispatches the form and a cancel intent abandons it;
// anything else ends the session and reports false so the utterance
// falls through to the chat pipeline.
func (e *Engine) finishFill(text string) (Message, bool) {
	intent := strings.ToLower(strings.TrimSpace(text))
	switch {
	case submitIntents[intent]:
		content := "Done, the form is on its way."
		if !e.filler.SubmitForm() {
			content = "The page declined the submission, sorry about that."
		}
		return e.append(NewMessage(ai.RoleAssistant, content, e.Language().Code)), true
	case cancelIntents[intent]:
		e.filler.Stop()
		content := "No problem, I've left the form as it is."
		return e.append(NewMessage(ai.RoleAssistant, content, e.Language().Code)), true
	default:
		e.filler.Stop()
		return Message{}, false
	}
}

// fillPrompt builds the assistant's next instruction during a fill
// session.
func (e *Engine) fillPrompt() string {
	if e.filler.State() == autofill.StateComplete {
		return "That's every field. Say \"submit\" when you're ready to send the form."
	}
	if f := e.filler.CurrentField(); f != nil {
		return "Got it. Next: " + f.Label + "?"
	}
	return "Got it."
}

// handleRecognized routes a final transcript into the turn pipeline.
func (e *Engine) handleRecognized(transcript string) {
	if _, err := e.HandleText(context.Background(), transcript); err != nil {
		e.logger.Warn("recognized utterance not handled", "error", err)
	}
}

// handleListeningChange mirrors recognition state onto the avatar and
// observers.
func (e *Engine) handleListeningChange(listening bool) {
	if e.face != nil {
		if listening {
			e.face.Handle(avatar.EventListening)
		} else {
			e.face.Handle(avatar.EventIdle)
		}
	}
	e.emitState("speech", map[bool]string{true: "listening", false: "idle"}[listening])
}

// handleSpeechError logs a recognition failure. The session degrades
// to text input; no user-facing error is raised.
func (e *Engine) handleSpeechError(reason string) {
	e.logger.Warn("speech recognition error", "reason", reason)
	e.emitState("speech", "error:"+reason)
}

// handleSpeakerState mirrors output state onto the avatar and
// observers.
func (e *Engine) handleSpeakerState(state tts.SpeakerState) {
	if e.face != nil {
		if state == tts.SpeakerSpeaking {
			e.face.Handle(avatar.EventSpeaking)
		} else {
			e.face.Handle(avatar.EventIdle)
		}
	}
	e.emitState("tts", state.String())
}

// deliverNudge appends and speaks the one-shot idle suggestion. A
// nudge never interrupts an in-flight turn or live listening.
func (e *Engine) deliverNudge(suggestion string) {
	e.mu.Lock()
	busy := e.busy || !e.initialized
	listening := e.input != nil && e.input.State() == speech.StateListening
	language := e.language
	e.mu.Unlock()
	if busy || listening {
		e.logger.Debug("nudge suppressed by active exchange")
		return
	}

	e.logger.Info("idle nudge delivered")
	msg := e.append(NewMessage(ai.RoleAssistant, suggestion, language.Code))
	e.speak(context.Background(), msg.Content)
	if e.face != nil {
		e.face.Handle(avatar.EventIdle)
	}
}

// emitState notifies the state observer.
func (e *Engine) emitState(component, state string) {
	e.mu.Lock()
	notify := e.events.State
	e.mu.Unlock()
	if notify != nil {
		notify(component, state)
	}
}
