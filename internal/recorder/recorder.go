// Package recorder wraps microphone capture into start/stop operations that
// produce a single encoded audio capture.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/pkg/channels"
	"github.com/jonboulle/clockwork"
)

// DefaultMaxBytes caps the raw PCM kept for one recording (10 MiB).
const DefaultMaxBytes = 10 << 20

// levelWindow is how much recent audio Levels reports: 50ms at 16kHz.
const levelWindow = audio.DefaultSampleRate / 20

var (
	// ErrPermissionDenied is returned when the microphone cannot be opened.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrNoAudio is returned by Stop when nothing was captured.
	ErrNoAudio = errors.New("no audio captured")
)

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePermissionRequested
	StateArmed
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePermissionRequested:
		return "permission-requested"
	case StateArmed:
		return "armed"
	case StateRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// TimerFunc receives the elapsed recording time once per second.
type TimerFunc func(elapsed time.Duration)

// Config configures a Recorder.
type Config struct {
	Encoder  audio.EncoderConfig
	MaxBytes int64
	Clock    clockwork.Clock
	OnTick   TimerFunc
}

// Recorder owns the microphone stream. Only one session may hold it at a time.
type Recorder struct {
	dev    audio.Device
	config Config
	clock  clockwork.Clock

	mu      sync.Mutex
	state   State
	dataC   chan audio.DataPacket
	onTick  TimerFunc
	session *session

	// recent samples for level metering
	levels *audio.SampleWindow
}

// session is the transient state of a single recording.
type session struct {
	startTime time.Time
	pcm       bytes.Buffer
	truncated bool
	stopC     chan struct{}
	done      chan struct{}
}

// New creates a recorder over the given capture device.
func New(dev audio.Device, config Config) *Recorder {
	config.Encoder = config.Encoder.WithDefaults()
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &Recorder{
		dev:    dev,
		config: config,
		clock:  config.Clock,
		onTick: config.OnTick,
		levels: audio.NewSampleWindow(levelWindow),
	}
}

// SetTimerFunc replaces the elapsed-time callback.
func (r *Recorder) SetTimerFunc(fn TimerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.onTick = fn
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool {
	return r.State() == StateRecording
}

// Elapsed returns the time since Start, or zero when not recording.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return 0
	}

	return r.clock.Since(r.session.startTime)
}

// Levels returns the most recently captured samples, or nil when not
// recording.
func (r *Recorder) Levels() []int16 {
	return r.levels.Recent(levelWindow)
}

// RequestPermission opens the microphone stream. It is a no-op when the
// stream is already open.
func (r *Recorder) RequestPermission(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateArmed || r.state == StateRecording {
		return nil
	}

	r.state = StatePermissionRequested
	dataC := make(chan audio.DataPacket, 64)

	if err := r.dev.CaptureInto(ctx, dataC); err != nil {
		r.state = StateIdle
		slog.Error("Error accessing microphone", "error", err)

		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	r.dataC = dataC
	r.state = StateArmed

	return nil
}

// Start begins a recording session. It returns false, leaving all state
// untouched, when no microphone stream is armed.
func (r *Recorder) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateArmed {
		slog.Warn("No microphone access", "state", r.state)
		return false
	}

	// discard anything captured between sessions
	channels.Drain(r.dataC)

	if err := r.dev.Start(context.Background()); err != nil {
		slog.Error("Failed to start audio device", "error", err)
		return false
	}

	s := &session{
		startTime: r.clock.Now(),
		stopC:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	r.session = s
	r.state = StateRecording

	go r.collect(s, r.dataC)
	go r.tick(s, r.onTick)

	slog.Debug("recording started")

	return true
}

// Stop ends the session and returns the encoded capture. It returns nil, nil
// when nothing was recording.
func (r *Recorder) Stop(ctx context.Context) (*capture.Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording || r.session == nil {
		return nil, nil
	}

	s := r.session
	r.session = nil
	r.state = StateArmed

	// stopping the device flushes the final callbacks into dataC
	if err := r.dev.Stop(ctx); err != nil {
		slog.Error("Failed to stop audio device", "error", err)
	}

	close(s.stopC)
	<-s.done

	if s.truncated {
		slog.Warn("recording truncated", "maxBytes", r.config.MaxBytes)
	}

	pcm := s.pcm.Bytes()
	duration := audio.PCMDuration(len(pcm), r.config.Encoder.SampleRate, r.config.Encoder.Channels)
	slog.Debug("recording stopped", "bytes", len(pcm), "duration", duration)

	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	data, err := audio.Encode(r.config.Encoder, pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recording: %w", err)
	}

	format := r.config.Encoder.Format

	c := capture.New(
		capture.RecordingName(r.clock.Now(), format.Ext()),
		format.ContentType(),
		data,
	)
	c.Duration = duration

	return c, nil
}

// Cleanup releases the microphone. Safe to call multiple times.
func (r *Recorder) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()

	if r.session != nil {
		close(r.session.stopC)
		<-r.session.done
		r.session = nil
	}

	if r.state != StateIdle {
		if err := r.dev.Stop(ctx); err != nil {
			slog.Warn("failed to stop audio device", "error", err)
		}

		r.dev.Dealloc(ctx)
		slog.Debug("Audio device deallocated")
	}

	r.dataC = nil
	r.state = StateIdle
}

// collect accumulates packets until the session is stopped.
func (r *Recorder) collect(s *session, dataC <-chan audio.DataPacket) {
	defer close(s.done)
	defer r.levels.Reset()

	appendPacket := func(p audio.DataPacket) {
		r.levels.Write(audio.BytesToInt16(p))

		if int64(s.pcm.Len()+len(p)) > r.config.MaxBytes {
			s.truncated = true
			return
		}
		s.pcm.Write(p)
	}

	for {
		select {
		case p := <-dataC:
			appendPacket(p)
		case <-s.stopC:
			for _, p := range channels.Drain(dataC) {
				appendPacket(p)
			}

			return
		}
	}
}

// tick reports the elapsed time at 1 Hz until the session is stopped.
func (r *Recorder) tick(s *session, onTick TimerFunc) {
	if onTick == nil {
		return
	}

	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			select {
			case <-s.stopC:
				return
			default:
			}
			onTick(r.clock.Since(s.startTime))
		case <-s.stopC:
			return
		}
	}
}

// FormatElapsed renders a duration as mm:ss.
func FormatElapsed(d time.Duration) string {
	seconds := int(d / time.Second)

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
