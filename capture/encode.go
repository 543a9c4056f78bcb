// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the webp decoder for uploaded frames
)

// Defaults match what the clock screen has always produced
const (
	DefaultQuality  = 70
	DefaultMaxWidth = 640

	// MaxUploadBytes bounds a decoded uploaded frame
	MaxUploadBytes = 8 << 20
)

var ErrInvalidPhoto = errors.New("invalid photo")

type Config struct {
	Quality  int  // JPEG quality, 1-100
	MaxWidth int  // longest edge in px; larger frames are scaled down
	Mirror   bool // flip horizontally, as a front camera preview shows it
}

func (c Config) withDefaults() Config {
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = DefaultQuality
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = DefaultMaxWidth
	}
	return c
}

// Encode turns a raw frame into the quality-reduced JPEG data URL stored as
// photo evidence
func Encode(frame image.Image, cfg Config) (Photo, error) {
	cfg = cfg.withDefaults()

	if frame == nil || frame.Bounds().Empty() {
		return Photo{}, fmt.Errorf("%w: empty frame", ErrInvalidPhoto)
	}

	img := imaging.Fit(frame, cfg.MaxWidth, cfg.MaxWidth, imaging.Lanczos)
	if cfg.Mirror {
		img = imaging.FlipH(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.Quality)); err != nil {
		return Photo{}, fmt.Errorf("failed to encode photo: %w", err)
	}

	b := img.Bounds()
	return Photo{
		DataURL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:      b.Dx(),
		Height:     b.Dy(),
		CapturedAt: time.Now(),
	}, nil
}

// DecodeDataURL decodes a base64 image data URL (png, jpeg, gif or webp)
func DecodeDataURL(s string) (image.Image, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 image data URL", ErrInvalidPhoto)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidPhoto, MaxUploadBytes)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhoto, err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhoto, err)
	}
	return img, nil
}

// StillProvider serves a frame a client already took, such as an uploaded
// data URL. Err simulates the device refusing the camera.
type StillProvider struct {
	DataURL string
	Err     error
}

func (p StillProvider) Open(ctx context.Context) (Stream, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return &stillStream{dataURL: p.DataURL}, nil
}

type stillStream struct {
	dataURL string
	closed  bool
}

func (s *stillStream) Frame(ctx context.Context) (image.Image, error) {
	if s.closed {
		return nil, ErrNotReady
	}
	if s.dataURL == "" {
		return nil, ErrNotReady
	}
	return DecodeDataURL(s.dataURL)
}

func (s *stillStream) Close() error {
	s.closed = true
	return nil
}
