// Package parse validates the raw text answers collected by the dialogue.
package parse

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Abhishek8211/energyiq/internal/device"
)

// Common parse errors. The dialogue maps these to re-prompts, never to
// process failures.
var (
	ErrNotANumber = errors.New("input is not a number")
	ErrOutOfRange = errors.New("value out of range")
)

// Duration grammar, tried in priority order; first match wins.
//
//	"1h30m", "2h 15min", "2h"  — hours with optional minutes
//	"30m", "45min", "90m"      — minutes only
//	"2", "0.5"                 — bare hour decimal
var (
	hoursMinutesRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*h(?:\s*(\d+)\s*m(?:in)?)?$`)
	minutesOnlyRe  = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*m(?:in)?$`)
	bareHoursRe    = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// IntInRange parses input as a decimal integer and checks lo <= n <= hi.
func IntInRange(input string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrNotANumber
	}
	if n < lo || n > hi {
		return 0, ErrOutOfRange
	}
	return n, nil
}

// Hours parses a daily-usage duration and returns the value in hours,
// rounded to two decimal places. The raw (pre-rounding) value must lie in
// [1/60, 24]; one minute is the smallest accepted duration.
func Hours(input string) (float64, error) {
	in := strings.TrimSpace(input)

	var hours float64
	switch {
	case hoursMinutesRe.MatchString(in):
		m := hoursMinutesRe.FindStringSubmatch(in)
		h, _ := strconv.ParseFloat(m[1], 64)
		hours = h
		if m[2] != "" {
			mins, _ := strconv.ParseFloat(m[2], 64)
			hours += mins / 60
		}
	case minutesOnlyRe.MatchString(in):
		m := minutesOnlyRe.FindStringSubmatch(in)
		mins, _ := strconv.ParseFloat(m[1], 64)
		hours = mins / 60
	default:
		// The bare-number form is restricted to plain decimals so that
		// strconv extras ("nan", "inf", "1e3", signs) never slip through
		// the range check below.
		if !bareHoursRe.MatchString(in) {
			return 0, ErrNotANumber
		}
		hours, _ = strconv.ParseFloat(in, 64)
	}

	if hours < device.MinHoursPerDay || hours > device.MaxHoursPerDay {
		return 0, ErrOutOfRange
	}
	return Round2(hours), nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
