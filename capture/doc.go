// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package capture binds one photo to the clock action in progress.

A Gate opens the camera through a Provider, takes a single frame, encodes it
as a mirrored, scaled-down JPEG data URL and releases the camera straight
away. The photo stays held until Clear, Retake or Close.

	gate := capture.NewGate(provider, capture.Config{Quality: 70, MaxWidth: 640, Mirror: true})
	if err := gate.Open(ctx); err != nil {
		// ErrPermissionDenied or ErrUnsupported
	}
	photo, err := gate.Capture(ctx)

The gate keeps the reasons a photo is missing apart (denied, unsupported,
starting, not taken yet) so callers can tell the user what to fix.

StillProvider adapts a frame the client already took, uploaded as a data URL
in PNG, JPEG, GIF or WebP.
*/
package capture
