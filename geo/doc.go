// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package geo computes great-circle distances for geofence checks.

# Distance

Distance uses the haversine formula with a mean Earth radius of 6371 km
(EarthRadiusKm). Points are WGS84 decimal degrees and are not validated
here; locfeed rejects out-of-range fixes before they reach this package.

	km := geo.Distance(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 0.02})
	// km ≈ 2.22

The result is always in kilometers and satisfies:

  - Distance(a, a) == 0
  - Distance(a, b) == Distance(b, a)
  - antipodal points come out at half the circumference, never NaN,
    because rounding noise in the haversine term is clamped to 1

# Geofence

Within applies an inclusive radius, so a crew member standing exactly on
the boundary may clock:

	if !geo.Within(store, fix.Point, radiusKm) {
		// out of range
	}

The clock engine compares the raw Distance against the configured radius
with the same inclusive rule, so the distance it reports and the decision
it makes always agree.

# Formatting

FormatKm renders two decimals with no unit, e.g. "2.22". Messages shown to
crew add " km" around it:

	fmt.Sprintf("You are %s km away.", geo.FormatKm(km))

Rounding happens only for display; comparisons use the raw value.
*/
package geo
