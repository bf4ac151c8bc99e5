// Package capture records microphone audio for a voice note.
//
// A Session owns the microphone from Open to Close. While it is active it
// buffers every frame the device delivers; while paused it keeps reading
// but drops the frames. Both states feed a level loop that publishes band
// levels for a visualiser at about 60 Hz.
package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/filex"
)

var (
	ErrInvalidState = errors.New("invalid capture state")
	ErrDeviceBusy   = errors.New("audio device is in use by another session")
)

// deviceHeld enforces one open session per process.
var deviceHeld atomic.Bool

const levelInterval = time.Second / 60

// Stream is an open microphone input.
type Stream interface {
	Start() error
	// Read blocks until dst is filled with interleaved samples in -1..1.
	Read(dst []float32) error
	Stop() error
	Close() error
}

// Device opens input streams. A permission or availability problem must
// be reported as common.ErrPermissionDenied.
type Device interface {
	Open(sampleRate, channels, framesPerBuffer int) (Stream, error)
}

type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Options struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	// Dir keeps a copy of every finished recording; empty disables it.
	Dir string
}

// Result is a finished recording.
type Result struct {
	Blob     []byte
	Duration float64 // seconds
	Path     string
}

type Session struct {
	dev  Device
	opts Options

	// op serialises lifecycle calls; mu guards what the loops touch.
	op sync.Mutex
	mu sync.Mutex

	state   State
	samples []float32
	window  []float32
	readErr error

	stream    Stream
	gen       int
	cancel    context.CancelFunc
	stopAfter func() bool
	wg        sync.WaitGroup

	levels chan Levels
	now    func() time.Time
}

// Open claims the device for a new session.
func Open(dev Device, opts Options) (*Session, error) {
	if opts.SampleRate <= 0 || opts.Channels <= 0 {
		return nil, fmt.Errorf("%w: sample rate and channels must be positive", common.ErrInvalidArgument)
	}
	if opts.FramesPerBuffer <= 0 {
		opts.FramesPerBuffer = opts.SampleRate / 20
	}
	if !deviceHeld.CompareAndSwap(false, true) {
		return nil, ErrDeviceBusy
	}
	return &Session{
		dev:    dev,
		opts:   opts,
		levels: make(chan Levels, 1),
		now:    time.Now,
	}, nil
}

// Levels delivers visualiser frames. Slow readers miss frames rather than
// stall capture. The channel is closed by Close.
func (s *Session) Levels() <-chan Levels {
	return s.levels
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the microphone and begins buffering. Cancelling ctx stops
// the capture and releases the device, discarding what was recorded.
func (s *Session) Start(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	switch s.State() {
	case StateIdle, StateStopped:
	default:
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, s.State())
	}
	return s.begin(ctx)
}

func (s *Session) Pause() error {
	return s.flip(StateActive, StatePaused)
}

func (s *Session) Resume() error {
	return s.flip(StatePaused, StateActive)
}

// Stop ends the capture and returns the recording as a WAV blob. The
// device is released whatever happens.
func (s *Session) Stop() (*Result, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if st := s.State(); st != StateActive && st != StatePaused {
		return nil, fmt.Errorf("%w: cannot stop while %s", ErrInvalidState, st)
	}
	relErr := s.release()

	s.mu.Lock()
	samples, readErr := s.samples, s.readErr
	s.samples = nil
	s.state = StateStopped
	s.mu.Unlock()

	if readErr != nil {
		return nil, errors.Join(fmt.Errorf("read audio: %w", readErr), relErr)
	}
	blob, err := EncodeWAV(samples, s.opts.SampleRate, s.opts.Channels)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Blob:     blob,
		Duration: float64(len(samples)) / float64(s.opts.SampleRate*s.opts.Channels),
	}
	if s.opts.Dir != "" {
		p, err := s.save(blob)
		if err != nil {
			return res, errors.Join(err, relErr)
		}
		res.Path = p
	}
	return res, relErr
}

// Reset throws away what was recorded and starts over in the active state.
func (s *Session) Reset(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	if st := s.State(); st != StateActive && st != StatePaused {
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidState, st)
	}
	err := s.release()
	if err == nil {
		err = s.begin(ctx)
	}
	if err != nil {
		s.mu.Lock()
		s.samples = nil
		s.state = StateStopped
		s.mu.Unlock()
	}
	return err
}

// Close releases the device and gives up the claim on it. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.op.Lock()
	defer s.op.Unlock()

	if s.State() == StateClosed {
		return nil
	}
	err := s.release()
	s.mu.Lock()
	s.state = StateClosed
	s.samples = nil
	s.mu.Unlock()
	close(s.levels)
	deviceHeld.Store(false)
	return err
}

// begin runs with op held.
func (s *Session) begin(ctx context.Context) error {
	stream, err := s.dev.Open(s.opts.SampleRate, s.opts.Channels, s.opts.FramesPerBuffer)
	if err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("start microphone: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.stream = stream
	s.cancel = cancel
	s.samples = s.samples[:0]
	s.window = make([]float32, 0, windowSize)
	s.readErr = nil
	s.state = StateActive
	s.mu.Unlock()

	s.wg.Add(2)
	go s.readLoop(runCtx, stream)
	go s.levelLoop(runCtx)
	s.gen++
	gen := s.gen
	s.stopAfter = context.AfterFunc(ctx, func() { s.abort(gen) })
	return nil
}

// release stops both loops and closes the stream. It runs with op held and
// is a no-op when nothing is open.
func (s *Session) release() error {
	if s.stopAfter != nil {
		s.stopAfter()
		s.stopAfter = nil
	}
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil

	stream := s.stream
	s.stream = nil
	return errors.Join(stream.Stop(), stream.Close())
}

// abort runs when the Start context of capture gen ends.
func (s *Session) abort(gen int) {
	s.op.Lock()
	defer s.op.Unlock()

	if st := s.State(); gen != s.gen || (st != StateActive && st != StatePaused) {
		return
	}
	_ = s.release()
	s.mu.Lock()
	s.samples = nil
	s.state = StateStopped
	s.mu.Unlock()
}

func (s *Session) flip(from, to State) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: cannot go %s while %s", ErrInvalidState, to, s.state)
	}
	s.state = to
	return nil
}

func (s *Session) readLoop(ctx context.Context, stream Stream) {
	defer s.wg.Done()
	frame := make([]float32, s.opts.FramesPerBuffer*s.opts.Channels)
	for ctx.Err() == nil {
		if err := stream.Read(frame); err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
		s.mu.Lock()
		if s.state == StateActive {
			s.samples = append(s.samples, frame...)
		}
		s.pushWindow(frame)
		s.mu.Unlock()
	}
}

// pushWindow keeps the last windowSize mono samples. Called with mu held.
func (s *Session) pushWindow(frame []float32) {
	ch := s.opts.Channels
	for i := 0; i+ch <= len(frame); i += ch {
		var sum float32
		for _, v := range frame[i : i+ch] {
			sum += v
		}
		s.window = append(s.window, sum/float32(ch))
	}
	if extra := len(s.window) - windowSize; extra > 0 {
		s.window = append(s.window[:0], s.window[extra:]...)
	}
}

func (s *Session) levelLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(levelInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.mu.Lock()
		window := append([]float32(nil), s.window...)
		s.mu.Unlock()

		lv := ComputeLevels(window, s.opts.SampleRate)
		select {
		case s.levels <- lv:
		default:
		}
	}
}

func (s *Session) save(blob []byte) (string, error) {
	dir, err := filex.EnsureDir(s.opts.Dir)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, s.now().Format("20060102-150405")+".wav")
	if err := filex.WriteFileAtomic(p, blob, 0o600); err != nil {
		return "", fmt.Errorf("save recording: %w", err)
	}
	return p, nil
}
