// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package clock is the clock-in/clock-out state machine.

A Session collects the inputs one crew member needs before recording an
attendance event and reports which of them are still missing:

	s := clock.NewSession(store, gate, clock.Config{RadiusKm: 1})
	defer s.Close()

	s.SelectLocation(loc)
	s.SelectCrewMember(ctx, crew)
	s.Locate(ctx, src)
	s.OpenCamera(ctx)
	s.CapturePhoto(ctx)
	s.SelectShift("Shift 1")

	ev, err := s.Submit(ctx)

# States

	no_selection -> awaiting_location -> out_of_range | ready_in | ready_out
	             -> submitting -> idle | error

Selecting a store clears the crew member, shift and photo. Selecting a crew
member clears the shift and photo. A failed fix returns to awaiting_location.

# Gates

Submission needs a selection, a fix within RadiusKm of the store, a photo
and a shift. Evaluate and Submit report every unmet gate as a Blocker with
its own message; Submit returns them in an IneligibleError that matches each
gate's error with errors.Is.

The next action alternates with the crew member's last stored event and is
looked up again at submission time. A failed write keeps every selection and
the photo; the error wraps attendance.ErrWriteDenied or
attendance.ErrWriteFailed.
*/
package clock
