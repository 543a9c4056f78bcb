// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key and IP hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 over a location scope:

	key := auth.GenerateAdminKey(locationID, salt)
	all := auth.GenerateAdminKey(auth.AllLocations, salt)
	err := auth.Authorize(key, locationID, salt)

Keys are URL-safe base64 without padding. Since they are deterministic,
validation needs no stored secret beyond the salt. A location key only opens
that location's summaries and events; the AllLocations key opens everything.

# IP Hashing

Attendance events record a privacy-preserving device fingerprint:

	hash := auth.HashIP(ipAddress, salt)

Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
