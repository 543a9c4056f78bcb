// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - GeofenceRadiusKm: Clock in/out radius around a store (default: 1.0)
  - PhotoQuality: JPEG quality of captured photos (default: 70)
  - PhotoMaxWidth: Longest edge of captured photos (default: 640)
  - PhotoMirror: Store photos flipped like a selfie preview (default: true)
  - LocationTimeout: How long a location fix may take (default: 10s)
  - Timezone: IANA zone that defines "today" (default: process zone)
  - PollInterval: Live subscription refresh (default: 2s)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--admin-salt      Admin key salt
	--radius-km       Geofence radius
	--photo-quality   Photo JPEG quality
	--photo-max-width Photo longest edge
	--photo-mirror    Mirror photos (--photo-mirror=false to keep them as captured)
	--location-timeout Location fix timeout
	--timezone        Reporting timezone
	--poll-interval   Subscription refresh
	--log-level       Log level

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	ADMIN_KEY_SALT          → --admin-salt
	GEOFENCE_RADIUS_KM      → --radius-km
	PHOTO_QUALITY           → --photo-quality
	PHOTO_MAX_WIDTH         → --photo-max-width
	PHOTO_MIRROR            → --photo-mirror
	LOCATION_TIMEOUT        → --location-timeout
	TZ_NAME                 → --timezone
	SUBSCRIBE_POLL_INTERVAL → --poll-interval
	LOG_LEVEL               → --log-level

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over the .env file.

# Validation

ParseFlags returns an error if required values are missing or out of range:

  - DATABASE_URL and ADMIN_KEY_SALT must be provided
  - the geofence radius must be positive
  - photo quality must be within 1-100
  - the timezone must resolve
*/
package cliparse
