package driver

import "time"

// Config holds configuration for session drivers.
type Config struct {
	// FrameIntervalMS is the tick period of Run in milliseconds.
	FrameIntervalMS int `mapstructure:"frame_interval_ms" default:"16"`
	// HistorySize is the number of pass reports kept per session.
	HistorySize int `mapstructure:"history_size" default:"64"`
}

// FrameInterval returns the tick period, 16ms when unset.
func (c Config) FrameInterval() time.Duration {
	if c.FrameIntervalMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}
