// Package timecalc converts tracked durations into minutes, points and
// clock strings.
package timecalc

import (
	"fmt"
	"time"
)

const (
	// MinDifficulty and MaxDifficulty bound the difficulty multiplier.
	MinDifficulty = 1
	MaxDifficulty = 5
)

// MinutesElapsed rounds d up to whole minutes, so any started minute counts.
func MinutesElapsed(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// Points returns the score for a task that ran for d at the given difficulty.
func Points(d time.Duration, difficulty int) int {
	return MinutesElapsed(d) * difficulty
}

// ClampDifficulty forces difficulty into [MinDifficulty, MaxDifficulty].
func ClampDifficulty(difficulty int) int {
	if difficulty < MinDifficulty {
		return MinDifficulty
	}
	if difficulty > MaxDifficulty {
		return MaxDifficulty
	}
	return difficulty
}

// FormatClock renders d as zero-padded HH:MM:SS. Hours do not wrap at 24.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds / 60) % 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatMinutes renders a minute count as zero-padded HH:MM.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
