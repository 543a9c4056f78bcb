// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package locfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/crewclock/geo"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrTimeout          = errors.New("location request timed out")
	ErrUnavailable      = errors.New("location unavailable")
)

// Fix is one device-reported position
type Fix struct {
	geo.Point
	At time.Time
}

// Source produces the device's current position
type Source interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (Fix, error)

func (f SourceFunc) CurrentPosition(ctx context.Context) (Fix, error) {
	return f(ctx)
}

// StaticSource always reports the same fix or the same failure, such as a
// position the client already resolved
type StaticSource struct {
	Fix Fix
	Err error
}

func (s StaticSource) CurrentPosition(ctx context.Context) (Fix, error) {
	if s.Err != nil {
		return Fix{}, s.Err
	}
	fix := s.Fix
	if fix.At.IsZero() {
		fix.At = time.Now()
	}
	return fix, nil
}

// Request asks src for one fix. A source that has not answered within
// timeout yields ErrTimeout even if it ignores ctx. Every failure wraps one
// of the package errors.
func Request(ctx context.Context, src Source, timeout time.Duration) (Fix, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		fix Fix
		err error
	}
	ch := make(chan result, 1)
	go func() {
		fix, err := src.CurrentPosition(ctx)
		ch <- result{fix, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return Fix{}, classify(r.err)
		}
		if err := validate(r.fix); err != nil {
			return Fix{}, err
		}
		return r.fix, nil
	case <-ctx.Done():
		return Fix{}, classify(ctx.Err())
	}
}

// ParseError maps the client-reported failure codes to errors.
// An empty code means no failure.
func ParseError(code string) error {
	switch code {
	case "":
		return nil
	case "permission_denied":
		return ErrPermissionDenied
	case "timeout":
		return ErrTimeout
	}
	return ErrUnavailable
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func validate(fix Fix) error {
	if fix.Lat < -90 || fix.Lat > 90 || fix.Lon < -180 || fix.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range (%f, %f)", ErrUnavailable, fix.Lat, fix.Lon)
	}
	return nil
}
