package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxExpectedMinutes caps estimates at one day.
const MaxExpectedMinutes = 24 * 60

// RangeError reports a numeric value outside its allowed range
type RangeError struct {
	Field    string
	Value    string
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got '%s'", e.Field, e.Min, e.Max, e.Value)
}

var relativeRegex = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minute|minutes|h|hr|hrs|hour|hours)$`)

// ParseExpected parses an expected duration and returns whole minutes
// Supported formats:
// - plain minutes (e.g., "45")
// - Go durations (e.g., "45m", "1h30m")
// - X unit (e.g., "90 minutes", "2 hours", "1 hr")
func ParseExpected(input string) (int, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return 0, errors.New("empty duration")
	}

	var minutes int
	if n, err := strconv.Atoi(input); err == nil {
		minutes = n
	} else if m, err := parseRelativeTime(input); err == nil {
		minutes = m
	} else if d, err := time.ParseDuration(input); err == nil {
		minutes = int((d + time.Minute - 1) / time.Minute)
	} else {
		return 0, fmt.Errorf("invalid duration format. Use: 45, 45m, 1h30m or 2 hours")
	}

	if minutes < 1 || minutes > MaxExpectedMinutes {
		return 0, &RangeError{Field: "expected time (minutes)", Value: input, Min: 1, Max: MaxExpectedMinutes}
	}
	return minutes, nil
}

// parseRelativeTime parses "X unit" forms like "3 hours" or "20 min"
func parseRelativeTime(input string) (int, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "h", "hr", "hrs", "hour", "hours":
		return amount * 60, nil
	default:
		return amount, nil
	}
}
