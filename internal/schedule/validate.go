package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dayCodes indexes the 7 valid weekday codes by time.Weekday (Sunday = 0).
var dayCodes = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func dayCode(d time.Weekday) string { return dayCodes[int(d)%7] }

func validDayCode(code string) bool {
	for _, c := range dayCodes {
		if c == code {
			return true
		}
	}
	return false
}

// normalizeHHMM validates a 24-hour HH:MM string and returns it zero-padded,
// so "9:05" and "09:05" both normalize to "09:05" and compare equal against
// clock-derived times.
func normalizeHHMM(s string) (string, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid minute in %q", s)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// normalizeDays validates day codes and drops duplicates while preserving
// order. A nil/empty input is legal and yields an empty set.
func normalizeDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	seen := map[string]bool{}
	for _, d := range days {
		code := strings.ToLower(strings.TrimSpace(d))
		if !validDayCode(code) {
			return nil, fmt.Errorf("unknown day code %q", d)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

func containsDay(days []string, code string) bool {
	for _, d := range days {
		if d == code {
			return true
		}
	}
	return false
}
