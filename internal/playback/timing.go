package playback

import (
	"fmt"
	"time"
)

// Song length bounds accepted by [SpeedForDuration].
const (
	MinDuration = 15 * time.Second
	MaxDuration = 20 * time.Minute
)

// SpeedForDuration picks a scroll speed that finishes lines (plus buffer lines) in roughly d.
//
// Short songs (one minute or less) scroll twice as fast and long ones (ten minutes or more) at 0.6x, so
// the text stays readable at both ends. The result is clamped to [MinSpeed, MaxSpeed].
func SpeedForDuration(lines, bufferLines int, d time.Duration) float64 {
	d = ClampDuration(d)
	seconds := d.Seconds()

	speed := float64(lines+bufferLines) / seconds
	switch {
	case d <= time.Minute:
		speed *= 2
	case d >= 10*time.Minute:
		speed *= 0.6
	}
	return ClampSpeed(speed)
}

// ClampDuration bounds d to [MinDuration, MaxDuration].
func ClampDuration(d time.Duration) time.Duration {
	return max(MinDuration, min(MaxDuration, d))
}

// FormatCompact renders d as 45s, 3m, 3m:05s or 1h:02m.
func FormatCompact(d time.Duration) string {
	seconds := int(d.Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		m, s := seconds/60, seconds%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm:%02ds", m, s)
	default:
		return fmt.Sprintf("%dh:%02dm", seconds/3600, (seconds%3600)/60)
	}
}

// FormatLabel renders d for sentences: "45 sec", "3 min", "3m 5s", "1h 2m".
func FormatLabel(d time.Duration) string {
	seconds := int(d.Seconds())
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d sec", seconds)
	case seconds < 3600:
		m, s := seconds/60, seconds%60
		if s == 0 {
			return fmt.Sprintf("%d min", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
