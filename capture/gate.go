// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrUnsupported      = errors.New("camera not supported")
	// ErrNotReady means the camera is still starting or no frame has been taken
	ErrNotReady = errors.New("camera not ready")
)

// State is where the gate is in acquiring photo evidence
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateStreaming // camera live, no frame taken yet
	StateReady     // photo held, camera released
	StateDenied
	StateUnsupported
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateReady:
		return "ready"
	case StateDenied:
		return "denied"
	case StateUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Provider acquires a camera. Open fails with ErrPermissionDenied or
// ErrUnsupported when the device refuses.
type Provider interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live camera feed. Close releases the device.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Photo is an encoded still bound to the action in progress
type Photo struct {
	DataURL    string
	Width      int
	Height     int
	CapturedAt time.Time
}

// Gate holds at most one pending photo. It owns the camera stream between
// Open and Capture and releases it as soon as a frame is taken.
type Gate struct {
	mu       sync.Mutex
	provider Provider
	cfg      Config

	state  State
	stream Stream
	photo  *Photo
	gen    uint64 // bumped by Clear so a slow Open can tell it was abandoned
}

func NewGate(provider Provider, cfg Config) *Gate {
	return &Gate{provider: provider, cfg: cfg.withDefaults()}
}

// Open starts the camera. It is a no-op while a stream is live or a photo
// is held; use Retake to replace a photo.
func (g *Gate) Open(ctx context.Context) error {
	g.mu.Lock()
	if g.stream != nil || g.photo != nil || g.state == StateInitializing {
		g.mu.Unlock()
		return nil
	}
	g.state = StateInitializing
	gen := g.gen
	g.mu.Unlock()

	stream, err := g.provider.Open(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		if stream != nil {
			stream.Close()
		}
		return ErrNotReady
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			g.state = StateDenied
		case errors.Is(err, ErrUnsupported):
			g.state = StateUnsupported
		default:
			g.state = StateIdle
		}
		slog.Warn("camera unavailable", "state", g.state.String(), "error", err)
		return err
	}

	g.stream = stream
	g.state = StateStreaming
	return nil
}

// Capture grabs one frame, encodes it and releases the camera
func (g *Gate) Capture(ctx context.Context) (Photo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stream == nil {
		return Photo{}, g.errLocked()
	}

	frame, err := g.stream.Frame(ctx)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to read frame: %w", err)
	}

	photo, err := Encode(frame, g.cfg)
	if err != nil {
		return Photo{}, err
	}

	g.releaseLocked()
	g.photo = &photo
	g.state = StateReady
	return photo, nil
}

// Photo returns the held photo, if any
func (g *Gate) Photo() (Photo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.photo == nil {
		return Photo{}, false
	}
	return *g.photo, true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Err explains why no photo is held: ErrPermissionDenied, ErrUnsupported or
// ErrNotReady. It returns nil once a photo is held.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errLocked()
}

func (g *Gate) errLocked() error {
	switch g.state {
	case StateReady:
		return nil
	case StateDenied:
		return ErrPermissionDenied
	case StateUnsupported:
		return ErrUnsupported
	}
	return ErrNotReady
}

// Clear drops the photo and releases the camera
func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releaseLocked()
	g.photo = nil
	g.state = StateIdle
	g.gen++
}

// Retake drops the held photo and reopens the camera
func (g *Gate) Retake(ctx context.Context) error {
	g.Clear()
	return g.Open(ctx)
}

// Close releases the camera. The gate can be reopened afterwards.
func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.releaseLocked()
	g.photo = nil
	g.state = StateIdle
	g.gen++
	return err
}

func (g *Gate) releaseLocked() error {
	if g.stream == nil {
		return nil
	}
	err := g.stream.Close()
	g.stream = nil
	return err
}
