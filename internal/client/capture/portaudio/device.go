// Package portaudio plugs the default PortAudio input device into a
// capture session.
package portaudio

import (
	"errors"
	"fmt"

	pa "github.com/gordonklaus/portaudio"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/capture"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

// Device is the system default microphone. Init must be paired with
// Terminate.
type Device struct{}

func Init() (*Device, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &Device{}, nil
}

func (d *Device) Terminate() error {
	return pa.Terminate()
}

func (d *Device) Open(sampleRate, channels, framesPerBuffer int) (capture.Stream, error) {
	if _, err := pa.DefaultInputDevice(); err != nil {
		return nil, mapErr(err)
	}
	buf := make([]float32, framesPerBuffer*channels)
	s, err := pa.OpenDefaultStream(channels, 0, float64(sampleRate), framesPerBuffer, buf)
	if err != nil {
		return nil, mapErr(err)
	}
	return &stream{s: s, buf: buf}, nil
}

type stream struct {
	s   *pa.Stream
	buf []float32
}

func (st *stream) Start() error {
	return mapErr(st.s.Start())
}

// Read tolerates input overflow; a dropped buffer is not worth ending the
// recording for.
func (st *stream) Read(dst []float32) error {
	if err := st.s.Read(); err != nil && !errors.Is(err, pa.InputOverflowed) {
		return mapErr(err)
	}
	copy(dst, st.buf)
	return nil
}

func (st *stream) Stop() error {
	return st.s.Stop()
}

func (st *stream) Close() error {
	return st.s.Close()
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pa.DeviceUnavailable), errors.Is(err, pa.InvalidDevice):
		return fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
	}
	return err
}
