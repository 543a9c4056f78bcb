// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package attendance is the append-only attendance log.

# Store

Store is the contract the clock engine and the summaries depend on. Two
implementations ship with the package:

  - SQLStore runs on PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).
    Authorization failures from either driver wrap ErrWriteDenied; anything
    else wraps ErrWriteFailed.
  - MemStore keeps events in memory and can be told to fail reads or writes.

LastByCrewMember returns the newest event for a crew member and
LastBefore the newest at or before a given time, however old.

Events are never edited after Append except for their notes:

	id, err := store.Append(ctx, ev)
	err = store.UpdateNotes(ctx, id, "left early, approved")

# Subscriptions

Subscribe returns an iter.Seq2 of snapshots. The consumer owns cancellation:

	for events, err := range store.Subscribe(ctx, attendance.Filter{Start: from, End: to}) {
		if err != nil {
			return err
		}
		render(events)
	}

SQLStore polls every poll interval and only yields when the result set
changed; MemStore wakes on every mutation.

# Alternation

NextAction derives the next action from the last stored event. Only the clock
engine follows it, so administrative entries can break the in/out
alternation; BreaksAlternation and CountRepeats detect that after the fact.
An "out" with nothing before it also breaks alternation.
*/
package attendance
