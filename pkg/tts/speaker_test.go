package tts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestSpeaker(t *testing.T, provider Provider, native NativeSynth, playback Playback, opts ...SpeakerOption) *Speaker {
	t.Helper()
	opts = append([]SpeakerOption{WithSettleDelay(0)}, opts...)
	s := NewSpeaker(provider, native, playback, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSpeakUsesProviderWhenHealthy(t *testing.T) {
	provider := NewMockProvider()
	native := NewMockNative()
	playback := NewMockPlayback()
	s := newTestSpeaker(t, provider, native, playback)

	if err := s.Speak(context.Background(), SpeakRequest{Text: "hello there"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if got := provider.SynthesizeCount(); got != 1 {
		t.Errorf("synthesize calls = %d, want 1", got)
	}
	if got := len(playback.Played()); got != 1 {
		t.Errorf("played = %d, want 1", got)
	}
	if got := len(native.Utterances()); got != 0 {
		t.Errorf("native utterances = %d, want 0", got)
	}
}

func TestSpeakEmptyText(t *testing.T) {
	s := newTestSpeaker(t, NewMockProvider(), NewMockNative(), NewMockPlayback())
	if err := s.Speak(context.Background(), SpeakRequest{}); !errors.Is(err, ErrNoText) {
		t.Fatalf("error = %v, want ErrNoText", err)
	}
}

func TestBarrierRunsBeforeEveryUtterance(t *testing.T) {
	provider := NewMockProvider()
	native := NewMockNative()
	playback := NewMockPlayback()
	s := newTestSpeaker(t, provider, native, playback)

	ctx := context.Background()
	if err := s.Speak(ctx, SpeakRequest{Text: "first"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := s.Speak(ctx, SpeakRequest{Text: "second"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	// Each Speak stops both output paths up front even when nothing is
	// audibly playing.
	if got := playback.StopCount(); got != 2 {
		t.Errorf("playback stops = %d, want 2", got)
	}
	if got := native.CancelCount(); got != 2 {
		t.Errorf("native cancels = %d, want 2", got)
	}
}

func TestHealthProbedOnce(t *testing.T) {
	provider := NewMockProvider()
	s := newTestSpeaker(t, provider, NewMockNative(), NewMockPlayback())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Speak(ctx, SpeakRequest{Text: fmt.Sprintf("utterance %d", i)}); err != nil {
			t.Fatalf("Speak %d: %v", i, err)
		}
	}

	if got := provider.HealthCount(); got != 1 {
		t.Errorf("health probes = %d, want 1", got)
	}
}

func TestUnavailableProviderFallsBackToNative(t *testing.T) {
	provider := NewMockProvider()
	provider.HealthErr = errors.New("connection refused")
	native := NewMockNative()
	playback := NewMockPlayback()
	s := newTestSpeaker(t, provider, native, playback)

	done := make(chan error, 1)
	go func() {
		done <- s.Speak(context.Background(), SpeakRequest{Text: "hello"})
	}()

	waitFor(t, func() bool { return len(native.Utterances()) == 1 })
	native.FinishUtterance(nil)

	if err := <-done; err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if got := provider.SynthesizeCount(); got != 0 {
		t.Errorf("synthesize calls = %d, want 0", got)
	}
	if got := len(playback.Played()); got != 0 {
		t.Errorf("played = %d, want 0", got)
	}
}

func TestUnavailableProviderWithFallbackDisabled(t *testing.T) {
	provider := NewMockProvider()
	provider.HealthErr = errors.New("connection refused")
	native := NewMockNative()
	s := newTestSpeaker(t, provider, native, NewMockPlayback(), WithNativeFallbackDisabled())

	err := s.Speak(context.Background(), SpeakRequest{Text: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(native.Utterances()); got != 0 {
		t.Errorf("native utterances = %d, want 0", got)
	}
}

func TestSetNativeFallbackDisabledAfterConstruction(t *testing.T) {
	provider := NewMockProvider()
	provider.HealthErr = errors.New("connection refused")
	native := NewMockNative()
	s := newTestSpeaker(t, provider, native, NewMockPlayback())

	s.SetNativeFallbackDisabled(true)

	err := s.Speak(context.Background(), SpeakRequest{Text: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(native.Utterances()); got != 0 {
		t.Errorf("native utterances = %d, want 0", got)
	}
}

func TestNoFallbackAfterProviderWasAvailable(t *testing.T) {
	provider := NewMockProvider()
	provider.SynthesizeFunc = func(ctx context.Context, req SpeakRequest) (*AudioResult, error) {
		return nil, &APIError{StatusCode: 500, Message: "boom", Provider: "clonevoice"}
	}
	native := NewMockNative()
	s := newTestSpeaker(t, provider, native, NewMockPlayback())

	err := s.Speak(context.Background(), SpeakRequest{Text: "hello"})
	if !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("error = %v, want ErrProviderFailed", err)
	}
	if got := len(native.Utterances()); got != 0 {
		t.Errorf("native utterances = %d, want 0: no fallback once the provider was available", got)
	}
}

func TestNilProviderSpeaksNatively(t *testing.T) {
	native := NewMockNative()
	s := newTestSpeaker(t, nil, native, NewMockPlayback())

	done := make(chan error, 1)
	go func() {
		done <- s.Speak(context.Background(), SpeakRequest{Text: "(warmly) hello there", Lang: "en-US"})
	}()

	waitFor(t, func() bool { return len(native.Utterances()) == 1 })
	u := native.Utterances()[0]
	if u.Text != "hello there" {
		t.Errorf("utterance text = %q, want directives stripped", u.Text)
	}
	if u.Pitch != 1.0 || u.Rate != 1.0 {
		t.Errorf("defaults: pitch = %v rate = %v, want 1.0", u.Pitch, u.Rate)
	}
	native.FinishUtterance(nil)
	if err := <-done; err != nil {
		t.Fatalf("Speak: %v", err)
	}
}

func TestNativeUtteranceCancelledByContext(t *testing.T) {
	native := NewMockNative()
	s := newTestSpeaker(t, nil, native, NewMockPlayback())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Speak(ctx, SpeakRequest{Text: "long announcement"})
	}()

	waitFor(t, func() bool { return len(native.Utterances()) == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	// One cancel from the barrier, one from the context path.
	if got := native.CancelCount(); got != 2 {
		t.Errorf("native cancels = %d, want 2", got)
	}
}

func TestRepeatedUtteranceServedFromCache(t *testing.T) {
	provider := NewMockProvider()
	playback := NewMockPlayback()
	s := newTestSpeaker(t, provider, NewMockNative(), playback)

	ctx := context.Background()
	req := SpeakRequest{Text: "welcome back", VoiceRef: "ref-1", Lang: "en-US"}
	for i := 0; i < 3; i++ {
		if err := s.Speak(ctx, req); err != nil {
			t.Fatalf("Speak %d: %v", i, err)
		}
	}

	if got := provider.SynthesizeCount(); got != 1 {
		t.Errorf("synthesize calls = %d, want 1 (rest from cache)", got)
	}
	if got := len(playback.Played()); got != 3 {
		t.Errorf("played = %d, want 3", got)
	}
}

func TestAutoplayBlockedDefersToGesture(t *testing.T) {
	provider := NewMockProvider()
	playback := NewMockPlayback()
	playback.PlayErrs = []error{ErrAutoplayBlocked}
	s := newTestSpeaker(t, provider, NewMockNative(), playback)

	ctx := context.Background()
	if err := s.Speak(ctx, SpeakRequest{Text: "greeting"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if !s.HasDeferred() {
		t.Fatal("expected deferred audio")
	}

	if err := s.NotifyGesture(ctx); err != nil {
		t.Fatalf("NotifyGesture: %v", err)
	}
	if s.HasDeferred() {
		t.Error("deferral not cleared after gesture")
	}
	if got := len(playback.Played()); got != 2 {
		t.Errorf("play attempts = %d, want 2", got)
	}

	// A second gesture is a no-op.
	if err := s.NotifyGesture(ctx); err != nil {
		t.Fatalf("NotifyGesture: %v", err)
	}
	if got := len(playback.Played()); got != 2 {
		t.Errorf("play attempts after second gesture = %d, want 2", got)
	}
}

func TestNewUtteranceDropsDeferredAudio(t *testing.T) {
	provider := NewMockProvider()
	playback := NewMockPlayback()
	playback.PlayErrs = []error{ErrAutoplayBlocked}
	s := newTestSpeaker(t, provider, NewMockNative(), playback)

	ctx := context.Background()
	if err := s.Speak(ctx, SpeakRequest{Text: "stale"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := s.Speak(ctx, SpeakRequest{Text: "fresh"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if s.HasDeferred() {
		t.Error("stale deferred audio survived a newer utterance")
	}
}

func TestSupersededPlaybackIsNotAnError(t *testing.T) {
	provider := NewMockProvider()
	playback := NewMockPlayback()
	playback.PlayErrs = []error{ErrPlaybackStopped}
	s := newTestSpeaker(t, provider, NewMockNative(), playback)

	if err := s.Speak(context.Background(), SpeakRequest{Text: "interrupted"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
}

func TestStateTransitions(t *testing.T) {
	provider := NewMockProvider()
	s := newTestSpeaker(t, provider, NewMockNative(), NewMockPlayback())

	var states []SpeakerState
	s.OnStateChange(func(st SpeakerState) { states = append(states, st) })

	if err := s.Speak(context.Background(), SpeakRequest{Text: "hello"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	want := []SpeakerState{SpeakerSpeaking, SpeakerIdle}
	if len(states) != len(want) {
		t.Fatalf("transitions = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", states, want)
		}
	}
	if got := s.State(); got != SpeakerIdle {
		t.Errorf("final state = %v, want idle", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
