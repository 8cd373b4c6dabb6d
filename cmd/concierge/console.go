package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/solace-ai/go-concierge/pkg/avatar"
	"github.com/solace-ai/go-concierge/pkg/tts"
)

// consoleAvatar renders avatar state as console lines.
type consoleAvatar struct{}

var _ avatar.Capability = (*consoleAvatar)(nil)

func (a *consoleAvatar) MorphTo(shape string)  { fmt.Printf("  (avatar: %s)\n", shape) }
func (a *consoleAvatar) SetColor(rgb string)   { fmt.Printf("  (avatar color: %s)\n", rgb) }
func (a *consoleAvatar) SetActive(active bool) {}
func (a *consoleAvatar) Start()                {}
func (a *consoleAvatar) Stop()                 {}
func (a *consoleAvatar) Destroy()              {}

// consoleSynth is the native synthesis stand-in: it "speaks" by
// printing and completes immediately.
type consoleSynth struct {
	mu     sync.Mutex
	active chan error
}

var _ tts.NativeSynth = (*consoleSynth)(nil)

func (s *consoleSynth) Speak(u tts.Utterance) <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Printf("  (voice: %s)\n", u.Text)
	done := make(chan error, 1)
	done <- nil
	s.active = done
	return done
}

func (s *consoleSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

// consolePlayback discards provider audio after reporting it.
type consolePlayback struct{}

var _ tts.Playback = (*consolePlayback)(nil)

func (p *consolePlayback) Play(ctx context.Context, result *tts.AudioResult) error {
	fmt.Printf("  (audio: %d bytes %s)\n", len(result.Audio), result.MIME)
	return nil
}

func (p *consolePlayback) Stop() {}
