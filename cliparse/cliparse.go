package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // zones resolve without a system tz database

	"github.com/joho/godotenv"
)

// Defaults for optional settings
const (
	DefaultPort             = 3318
	DefaultDatabaseType     = "sqlite"
	DefaultGeofenceRadiusKm = 1.0
	DefaultPhotoQuality     = 70
	DefaultPhotoMaxWidth    = 640
	DefaultPhotoMirror      = true
	DefaultLocationTimeout  = 10 * time.Second
	DefaultPollInterval     = 2 * time.Second
	DefaultLogLevel         = "info"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	GeofenceRadiusKm float64
	PhotoQuality     int
	PhotoMaxWidth    int
	PhotoMirror      bool // store photos flipped, the way the front camera preview shows them
	LocationTimeout  time.Duration
	Timezone         string
	PollInterval     time.Duration
	LogLevel         string
}

// LoadDotEnv loads a .env file into the environment. A missing file is not
// an error and variables already set are never overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and falls back to env variables and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("crewclock", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Clock engine
	fs.Float64Var(&cfg.GeofenceRadiusKm, "radius-km", 0, "Geofence radius in km")
	fs.IntVar(&cfg.PhotoQuality, "photo-quality", 0, "JPEG quality of captured photos (1-100)")
	fs.IntVar(&cfg.PhotoMaxWidth, "photo-max-width", 0, "Longest edge of captured photos in px")
	fs.BoolVar(&cfg.PhotoMirror, "photo-mirror", DefaultPhotoMirror, "Mirror captured photos like a selfie preview")
	fs.DurationVar(&cfg.LocationTimeout, "location-timeout", 0, "Location fix timeout")
	fs.StringVar(&cfg.Timezone, "timezone", "", "IANA zone that defines 'today'")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", 0, "Live subscription refresh interval")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.GeofenceRadiusKm == 0 {
		radius, err := envFloat("GEOFENCE_RADIUS_KM", DefaultGeofenceRadiusKm)
		if err != nil {
			return Config{}, err
		}
		cfg.GeofenceRadiusKm = radius
	}
	if cfg.GeofenceRadiusKm <= 0 {
		return Config{}, errors.New("geofence radius must be positive")
	}

	if cfg.PhotoQuality == 0 {
		quality, err := envInt("PHOTO_QUALITY", DefaultPhotoQuality)
		if err != nil {
			return Config{}, err
		}
		cfg.PhotoQuality = quality
	}
	if cfg.PhotoQuality < 1 || cfg.PhotoQuality > 100 {
		return Config{}, errors.New("photo quality must be between 1 and 100")
	}

	if cfg.PhotoMaxWidth == 0 {
		width, err := envInt("PHOTO_MAX_WIDTH", DefaultPhotoMaxWidth)
		if err != nil {
			return Config{}, err
		}
		cfg.PhotoMaxWidth = width
	}
	if cfg.PhotoMaxWidth < 16 {
		return Config{}, errors.New("photo max width must be at least 16")
	}

	// A bool flag has no unset zero value, so check whether it was passed
	mirrorSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "photo-mirror" {
			mirrorSet = true
		}
	})
	if !mirrorSet {
		mirror, err := envBool("PHOTO_MIRROR", DefaultPhotoMirror)
		if err != nil {
			return Config{}, err
		}
		cfg.PhotoMirror = mirror
	}

	if cfg.LocationTimeout == 0 {
		timeout, err := envDuration("LOCATION_TIMEOUT", DefaultLocationTimeout)
		if err != nil {
			return Config{}, err
		}
		cfg.LocationTimeout = timeout
	}

	if cfg.PollInterval == 0 {
		interval, err := envDuration("SUBSCRIBE_POLL_INTERVAL", DefaultPollInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.PollInterval = interval
	}

	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("TZ_NAME")
	}
	if _, err := cfg.TimeLocation(); err != nil {
		return Config{}, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = DefaultLogLevel
		}
	}

	return cfg, nil
}

// TimeLocation resolves Timezone; empty or "Local" means the process zone
func (c Config) TimeLocation() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}
