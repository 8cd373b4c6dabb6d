package assistant

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solace-ai/go-concierge/pkg/ai"
)

// Message is one entry in the session conversation log. Messages are
// append-only and immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      ai.Role   `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Language is the message's locale code.
	Language string `json:"language,omitempty"`

	// Translation carries a localized rendering when it differs from
	// Content.
	Translation string `json:"translation,omitempty"`

	// QuickReplies are suggested follow-up utterances for one-tap
	// re-use.
	QuickReplies []string `json:"quickReplies,omitempty"`
}

// NewMessage creates a log entry with a fresh ID and timestamp.
func NewMessage(role ai.Role, content, language string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Language:  language,
	}
}

// Persona is a selectable voice/visual profile.
type Persona struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	VoicePitch float64 `json:"voicePitch"`
	VoiceRate  float64 `json:"voiceRate"`
	Greeting   string  `json:"greeting"`

	// VoiceRef is the cloned-voice reference ID, optional.
	VoiceRef string `json:"voiceRef,omitempty"`
}

// Language drives recognition locale, synthesis locale and avatar
// coloring.
type Language struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	NativeName string   `json:"nativeName"`
	Flag       string   `json:"flag"`
	FlagColors []string `json:"flagColors"`
	VoiceLang  string   `json:"voiceLang"`
	Greeting   string   `json:"greeting"`
}

// Personas is the built-in persona table. The first entry is the
// default.
var Personas = []Persona{
	{
		ID:         "sol",
		Name:       "Sol",
		Color:      "#4a90d9",
		VoicePitch: 1.0,
		VoiceRate:  1.0,
		Greeting:   "Hi, I'm Sol! Ask me anything about this site.",
	},
	{
		ID:         "luna",
		Name:       "Luna",
		Color:      "#9b59b6",
		VoicePitch: 1.2,
		VoiceRate:  0.95,
		Greeting:   "Hello! Luna here, how can I help today?",
	},
	{
		ID:         "atlas",
		Name:       "Atlas",
		Color:      "#2e8b57",
		VoicePitch: 0.85,
		VoiceRate:  1.0,
		Greeting:   "Welcome. I'm Atlas, here to point you the right way.",
	},
}

// Languages is the built-in language table. The first entry is the
// default.
var Languages = []Language{
	{
		Code: "en", Name: "English", NativeName: "English",
		Flag: "🇺🇸", FlagColors: []string{"#b22234", "#ffffff", "#3c3b6e"},
		VoiceLang: "en-US", Greeting: "Hello!",
	},
	{
		Code: "es", Name: "Spanish", NativeName: "Español",
		Flag: "🇪🇸", FlagColors: []string{"#aa151b", "#f1bf00"},
		VoiceLang: "es-ES", Greeting: "¡Hola!",
	},
	{
		Code: "fr", Name: "French", NativeName: "Français",
		Flag: "🇫🇷", FlagColors: []string{"#0055a4", "#ffffff", "#ef4135"},
		VoiceLang: "fr-FR", Greeting: "Bonjour !",
	},
	{
		Code: "de", Name: "German", NativeName: "Deutsch",
		Flag: "🇩🇪", FlagColors: []string{"#000000", "#dd0000", "#ffce00"},
		VoiceLang: "de-DE", Greeting: "Hallo!",
	},
	{
		Code: "pt", Name: "Portuguese", NativeName: "Português",
		Flag: "🇵🇹", FlagColors: []string{"#006600", "#ff0000"},
		VoiceLang: "pt-PT", Greeting: "Olá!",
	},
}

// PersonaByID finds a built-in persona, falling back to the default.
func PersonaByID(id string) Persona {
	for _, p := range Personas {
		if p.ID == id {
			return p
		}
	}
	return Personas[0]
}

// LanguageByCode finds a built-in language, falling back to the
// default. Matching ignores case and accepts full tags ("en-GB").
func LanguageByCode(code string) Language {
	lower := strings.ToLower(code)
	base, _, _ := strings.Cut(lower, "-")
	for _, l := range Languages {
		if l.Code == lower || l.Code == base {
			return l
		}
	}
	return Languages[0]
}

// quickReplyPattern matches a trailing suggestion directive the model
// appends to replies, e.g. "[suggest: pricing | book a demo]".
var quickReplyPattern = regexp.MustCompile(`\[suggest:([^\]]+)\]\s*$`)

// parseQuickReplies splits a raw model reply into display text and
// suggested follow-ups.
func parseQuickReplies(reply string) (text string, replies []string) {
	m := quickReplyPattern.FindStringSubmatchIndex(reply)
	if m == nil {
		return strings.TrimSpace(reply), nil
	}

	text = strings.TrimSpace(reply[:m[0]])
	for _, part := range strings.Split(reply[m[2]:m[3]], "|") {
		if s := strings.TrimSpace(part); s != "" {
			replies = append(replies, s)
		}
	}
	return text, replies
}
