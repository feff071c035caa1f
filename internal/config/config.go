// Package config loads runtime settings from configs/config.yml, with TC_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TC"

// Allowed auto-rotation intervals in minutes; 0 disables rotation.
var RotationIntervals = []int{0, 5, 10, 15, 30, 60}

type Config struct {
	Port       string           `mapstructure:"port"`
	DB         DBConfig         `mapstructure:"db"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Clock      ClockConfig      `mapstructure:"clock"`
	TimeSync   TimeSyncConfig   `mapstructure:"timesync"`
	Rotation   RotationConfig   `mapstructure:"rotation"`
	WorldClock WorldClockConfig `mapstructure:"worldclock"`
	Travel     TravelConfig     `mapstructure:"travel"`
	Music      MusicConfig      `mapstructure:"music"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type ClockConfig struct {
	// TravelPersistent keeps destination, departed and the travel offset
	// across restarts.
	TravelPersistent bool `mapstructure:"travel_persistent"`
	// AlarmRTC compares the alarm against true time instead of the shown present.
	AlarmRTC    bool          `mapstructure:"alarm_rtc"`
	Brightness  int           `mapstructure:"brightness"`
	BeepMode    int           `mapstructure:"beep_mode"`
	HourlySound bool          `mapstructure:"hourly_sound"`
	Tick        time.Duration `mapstructure:"tick"`
}

type TimeSyncConfig struct {
	NTPServer  string        `mapstructure:"ntp_server"`
	Timezone   string        `mapstructure:"timezone"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SyncHour   int           `mapstructure:"sync_hour"`
	SyncMinute int           `mapstructure:"sync_minute"`
	SyncSecond int           `mapstructure:"sync_second"`
	NTPRetries int           `mapstructure:"ntp_retries"`
	RTCRetries int           `mapstructure:"rtc_retries"`
}

type RotationConfig struct {
	IntervalMinutes int           `mapstructure:"interval_minutes"`
	Pause           time.Duration `mapstructure:"pause"`
}

type WorldClockConfig struct {
	// Zones holds up to two IANA names, for the destination and departed rows.
	Zones []string `mapstructure:"zones"`
}

type TravelConfig struct {
	ButtonDelay time.Duration `mapstructure:"button_delay"`
	ButtonLong  bool          `mapstructure:"button_long"`
}

type MusicConfig struct {
	Tracks  int  `mapstructure:"tracks"`
	Shuffle bool `mapstructure:"shuffle"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "timecircuits.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("clock.travel_persistent", true)
	v.SetDefault("clock.alarm_rtc", true)
	v.SetDefault("clock.brightness", 12)
	v.SetDefault("clock.beep_mode", 0)
	v.SetDefault("clock.hourly_sound", false)
	v.SetDefault("clock.tick", 20*time.Millisecond)
	v.SetDefault("timesync.ntp_server", "pool.ntp.org")
	v.SetDefault("timesync.timezone", "UTC")
	v.SetDefault("timesync.timeout", 2*time.Second)
	v.SetDefault("timesync.sync_hour", 3)
	v.SetDefault("timesync.sync_minute", 1)
	v.SetDefault("timesync.sync_second", 10)
	v.SetDefault("timesync.ntp_retries", 20)
	v.SetDefault("timesync.rtc_retries", 30)
	v.SetDefault("rotation.interval_minutes", 0)
	v.SetDefault("rotation.pause", 30*time.Minute)
	v.SetDefault("worldclock.zones", []string{})
	v.SetDefault("travel.button_delay", time.Duration(0))
	v.SetDefault("travel.button_long", true)
	v.SetDefault("music.tracks", 0)
	v.SetDefault("music.shuffle", false)
}

// Load reads the config file at path, or configs/config.yml when path is
// empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that the control loop relies on.
func (c *Config) Validate() error {
	if !validInterval(c.Rotation.IntervalMinutes) {
		return fmt.Errorf("rotation.interval_minutes must be one of %v, got %d", RotationIntervals, c.Rotation.IntervalMinutes)
	}
	if c.Clock.Brightness < 0 || c.Clock.Brightness > 15 {
		return fmt.Errorf("clock.brightness must be 0..15, got %d", c.Clock.Brightness)
	}
	if c.Clock.BeepMode < 0 || c.Clock.BeepMode > 3 {
		return fmt.Errorf("clock.beep_mode must be 0..3, got %d", c.Clock.BeepMode)
	}
	if c.Clock.Tick <= 0 {
		return errors.New("clock.tick must be positive")
	}
	if len(c.WorldClock.Zones) > 2 {
		return fmt.Errorf("worldclock.zones holds at most 2 zones, got %d", len(c.WorldClock.Zones))
	}
	if c.TimeSync.SyncHour < 0 || c.TimeSync.SyncHour > 23 ||
		c.TimeSync.SyncMinute < 0 || c.TimeSync.SyncMinute > 59 ||
		c.TimeSync.SyncSecond < 0 || c.TimeSync.SyncSecond > 59 {
		return errors.New("timesync sync point out of range")
	}
	return nil
}

func validInterval(m int) bool {
	for _, v := range RotationIntervals {
		if v == m {
			return true
		}
	}
	return false
}
