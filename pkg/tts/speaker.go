package tts

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Speaker sequences all audio output. It owns the only mutable shared
// audio resources (the playback element and the native utterance); no
// other component may start or stop audio directly.
type Speaker struct {
	provider Provider // nil when no cloned-voice provider is configured
	native   NativeSynth
	playback Playback
	logger   *slog.Logger

	settle                time.Duration
	disableNativeFallback bool
	cache                 *audioCache

	mu  sync.Mutex
	gen uint64 // current utterance generation; stale utterances stand down

	state         SpeakerState
	onStateChange func(SpeakerState)

	providerChecked   bool
	providerAvailable bool

	// pending holds audio blocked by the autoplay policy, replayed on
	// the next user gesture.
	pending *AudioResult
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithSettleDelay overrides the barrier settle delay.
func WithSettleDelay(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		s.settle = d
	}
}

// WithCacheCapacity bounds the synthesis cache (0 disables caching).
func WithCacheCapacity(n int) SpeakerOption {
	return func(s *Speaker) {
		s.cache = newAudioCache(n)
	}
}

// WithNativeFallbackDisabled prevents falling back to native synthesis
// when the cloned-voice provider is unavailable.
func WithNativeFallbackDisabled() SpeakerOption {
	return func(s *Speaker) {
		s.disableNativeFallback = true
	}
}

// WithSpeakerLogger sets the structured logger.
func WithSpeakerLogger(logger *slog.Logger) SpeakerOption {
	return func(s *Speaker) {
		s.logger = logger.With("component", "tts.speaker")
	}
}

// NewSpeaker creates the output engine. provider may be nil; native and
// playback are required capabilities.
func NewSpeaker(provider Provider, native NativeSynth, playback Playback, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		provider: provider,
		native:   native,
		playback: playback,
		logger:   slog.Default().With("component", "tts.speaker"),
		settle:   DefaultSettleDelay,
		cache:    newAudioCache(24),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnStateChange sets the callback invoked on idle/speaking transitions.
func (s *Speaker) OnStateChange(fn func(SpeakerState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// SetNativeFallbackDisabled toggles the native fallback policy on an
// already built Speaker, for hosts that configure the policy after
// construction.
func (s *Speaker) SetNativeFallbackDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disableNativeFallback = disabled
}

// State returns the current output state.
func (s *Speaker) State() SpeakerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speak synthesizes and plays one utterance, returning when playback
// finishes. The newest request always wins: any in-flight audio is
// cancelled by the barrier first, and there is no utterance queue.
//
// Fallback policy: native synthesis substitutes for the cloned-voice
// provider only when the provider is unavailable up front. A provider
// that fails after having been available does NOT fall back; a silent
// miss is preferred over risking two overlapping voices.
func (s *Speaker) Speak(ctx context.Context, req SpeakRequest) error {
	if req.Text == "" {
		return ErrNoText
	}

	gen := s.barrier()

	if s.provider == nil {
		return s.speakNative(ctx, gen, req)
	}

	if !s.checkProvider(ctx) {
		s.mu.Lock()
		disabled := s.disableNativeFallback
		s.mu.Unlock()
		if disabled {
			return WrapError("speaker", errors.New("provider unavailable and native fallback disabled"))
		}
		s.logger.Info("provider unavailable, using native synthesis")
		return s.speakNative(ctx, gen, req)
	}

	payload := req
	payload.Text = normalizeFor(req.Text, s.provider.SupportsDirectives())

	result := s.cache.get(payload)
	if result == nil {
		var err error
		result, err = s.provider.Synthesize(ctx, payload)
		if err != nil {
			// Deliberate policy: no native fallback here. The provider
			// was available, so synthesis may have partially started on
			// its side; starting a second voice risks overlap.
			s.logger.Warn("provider failed after being available, skipping fallback", "error", err)
			return errors.Join(ErrProviderFailed, err)
		}
		s.cache.put(payload, result)
	}

	return s.play(ctx, gen, result)
}

// NotifyGesture replays audio deferred by the autoplay policy. The host
// shell calls this from its click/touch handler; the deferral is
// cleared whether or not replay succeeds.
func (s *Speaker) NotifyGesture(ctx context.Context) error {
	s.mu.Lock()
	result := s.pending
	s.pending = nil
	gen := s.gen
	s.mu.Unlock()

	if result == nil {
		return nil
	}
	s.logger.Debug("replaying deferred audio after user gesture")
	return s.play(ctx, gen, result)
}

// HasDeferred reports whether audio is waiting for a user gesture.
func (s *Speaker) HasDeferred() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Stop cancels all audio output immediately.
func (s *Speaker) Stop() {
	s.barrier()
}

// Close stops audio and releases the provider.
func (s *Speaker) Close() error {
	s.Stop()
	if s.provider != nil {
		return s.provider.Close()
	}
	return nil
}

// checkProvider probes provider health once and caches the verdict.
// Availability is decided up front for the life of the Speaker; later
// failures do not re-trigger the probe.
func (s *Speaker) checkProvider(ctx context.Context) bool {
	s.mu.Lock()
	checked := s.providerChecked
	available := s.providerAvailable
	s.mu.Unlock()
	if checked {
		return available
	}

	err := s.provider.Health(ctx)

	s.mu.Lock()
	s.providerChecked = true
	s.providerAvailable = err == nil
	available = s.providerAvailable
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("provider health check failed", "error", err)
	}
	return available
}

// barrier is the cancellation barrier executed before any new audio:
// stop provider playback, cancel native synthesis, drop any deferred
// utterance, then wait for the native stop to take effect. Provider
// playback and native synthesis are separate subsystems with
// independent stop semantics; this ordering is what guarantees two
// voices are never audible at once.
func (s *Speaker) barrier() uint64 {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pending = nil
	s.mu.Unlock()

	s.playback.Stop()
	if s.native != nil {
		s.native.Cancel()
	}

	if s.settle > 0 {
		time.Sleep(s.settle)
	}

	s.setState(gen, SpeakerIdle)
	return gen
}

// play runs provider audio through the playback capability.
func (s *Speaker) play(ctx context.Context, gen uint64, result *AudioResult) error {
	s.setState(gen, SpeakerSpeaking)
	err := s.playback.Play(ctx, result)
	s.setState(gen, SpeakerIdle)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPlaybackStopped):
		// Superseded by a newer utterance.
		return nil
	case errors.Is(err, ErrAutoplayBlocked):
		s.deferAudio(gen, result)
		return nil
	default:
		return err
	}
}

// speakNative runs an utterance through the native synthesis capability.
func (s *Speaker) speakNative(ctx context.Context, gen uint64, req SpeakRequest) error {
	if s.native == nil {
		return WrapError("speaker", errors.New("no native synthesis capability"))
	}

	u := Utterance{
		Text:  StripDirectives(req.Text),
		Lang:  req.Lang,
		Pitch: req.Pitch,
		Rate:  req.Rate,
	}
	if u.Pitch == 0 {
		u.Pitch = 1.0
	}
	if u.Rate == 0 {
		u.Rate = 1.0
	}

	s.setState(gen, SpeakerSpeaking)
	defer s.setState(gen, SpeakerIdle)

	done := s.native.Speak(u)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.native.Cancel()
		return ctx.Err()
	}
}

// deferAudio parks audio until the next user gesture, unless a newer
// utterance has already superseded this one.
func (s *Speaker) deferAudio(gen uint64, result *AudioResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.logger.Info("autoplay blocked, deferring audio to next user gesture")
	s.pending = result
}

// setState applies a state transition if this utterance is still the
// newest one, notifying the state callback outside the lock.
func (s *Speaker) setState(gen uint64, state SpeakerState) {
	s.mu.Lock()
	if gen != s.gen || s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	notify := s.onStateChange
	s.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}
