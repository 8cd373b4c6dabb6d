// Package tts provides speech synthesis with provider fallback and strict
// playback cancellation.
//
// Two independent audio paths exist: a cloned-voice HTTP provider whose
// output is played through an audio Playback capability, and a native
// synthesis capability (the browser's built-in speechSynthesis). The two
// have independent stop semantics, so the Speaker runs a cancellation
// barrier before every new utterance so two voices are never audible at
// once.
//
// Example usage:
//
//	provider, _ := tts.NewCloneVoice(
//	    tts.WithAPIKey(os.Getenv("TTS_API_KEY")),
//	)
//	speaker := tts.NewSpeaker(provider, native, playback)
//
//	err := speaker.Speak(ctx, tts.SpeakRequest{
//	    Text:     "Hello!",
//	    VoiceRef: persona.VoiceRef,
//	    Lang:     "en-US",
//	})
package tts

import (
	"context"
	"time"
)

// Provider synthesizes a complete audio buffer for a request.
type Provider interface {
	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, req SpeakRequest) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// SupportsDirectives reports whether the provider interprets inline
	// parenthesized emotion/pause directives. When false, directives
	// are stripped before dispatch.
	SupportsDirectives() bool

	// Close releases any resources held by the provider.
	Close() error
}

// SpeakRequest describes one utterance.
type SpeakRequest struct {
	// Text is the sentence to speak. May contain inline parenthesized
	// directives; see Provider.SupportsDirectives.
	Text string

	// VoiceRef is the provider voice/reference ID. Optional; absence
	// falls back to the provider default voice.
	VoiceRef string

	// Lang is the BCP-47 synthesis locale (e.g. "en-US").
	Lang string

	// Pitch and Rate tune native synthesis. Zero means default (1.0).
	Pitch float64
	Rate  float64
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// Audio contains the encoded audio data.
	Audio []byte

	// MIME is the audio content type (e.g. "audio/mpeg").
	MIME string

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time to last byte in milliseconds.
	LatencyMs int64
}

// Playback is the audio-element capability: it plays one buffer at a
// time and can be stopped from another goroutine.
type Playback interface {
	// Play plays the buffer, returning when playback ends.
	// It returns ErrAutoplayBlocked when the host refuses to start
	// audio without a user gesture, and ErrPlaybackStopped when Stop
	// interrupts an in-flight Play.
	Play(ctx context.Context, result *AudioResult) error

	// Stop halts any in-flight playback immediately.
	Stop()
}

// Utterance is a native synthesis request.
type Utterance struct {
	Text  string
	Lang  string
	Pitch float64
	Rate  float64
}

// NativeSynth is the built-in synthesis capability.
type NativeSynth interface {
	// Speak starts synthesis and returns a channel that receives the
	// terminal result (nil on natural end) exactly once.
	Speak(u Utterance) <-chan error

	// Cancel stops any active synthesis. Safe to call when idle.
	Cancel()
}

// SpeakerState is the output-side state.
type SpeakerState int

const (
	// SpeakerIdle indicates no audio in flight.
	SpeakerIdle SpeakerState = iota
	// SpeakerSpeaking indicates an utterance is audible.
	SpeakerSpeaking
)

// String returns a human-readable state.
func (s SpeakerState) String() string {
	switch s {
	case SpeakerIdle:
		return "idle"
	case SpeakerSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// DefaultSettleDelay is how long the barrier waits after stopping native
// synthesis before starting new audio. Native cancel is asynchronous in
// browsers; starting too early risks overlap.
const DefaultSettleDelay = 150 * time.Millisecond
