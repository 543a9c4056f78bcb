// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package locfeed wraps device position sources.

A Source answers CurrentPosition with a Fix: a geo.Point plus the time it
was taken. Devices, browsers and tests plug in through the interface;
SourceFunc adapts a plain function and StaticSource replays a position
(or failure) the client already resolved.

# Errors

Every failure from this package wraps exactly one of:

  - ErrPermissionDenied when the user refused location access
  - ErrTimeout when no fix arrived in time
  - ErrUnavailable for everything else, including coordinates outside
    [-90, 90] x [-180, 180]

Source errors that already wrap one of these pass through unchanged. A
context deadline becomes ErrTimeout and anything else is classified as
ErrUnavailable, with the original error kept in the chain.

ParseError maps the codes clients report ("permission_denied", "timeout",
anything else) onto the same errors. An empty code means no failure.

# One fix

Request asks once and never waits past its timeout, even when the source
ignores ctx. A zero timeout waits for ctx alone.

	fix, err := locfeed.Request(ctx, src, 10*time.Second)
	if errors.Is(err, locfeed.ErrPermissionDenied) {
		// ask the user to enable location
	}

# Watching

Watch requests a fix right away and then every interval (5s when the
interval is not positive), handing each outcome to the callback on the
watcher's own goroutine. Callbacks never overlap. A failed fix is
reported and the watch keeps going.

	w := locfeed.Watch(ctx, src, 5*time.Second, 10*time.Second, onFix)
	defer w.Stop()

Stop cancels the watch and returns once the last callback has finished,
so state touched by the callback is safe to read afterwards. Stop must
not be called from inside the callback. Done closes when the watch ends,
whether through Stop or ctx.
*/
package locfeed
