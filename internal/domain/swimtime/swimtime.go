// Package swimtime converts race times between their text form ("1:02.34")
// and seconds, and defines how times order against each other.
//
// A time of zero or an empty string means "no time". Absent times always
// sort after present ones.
package swimtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

const (
	secondsPerMinute = 60
	hundredths       = 100
)

var sixty = decimal.NewFromInt(secondsPerMinute)

// Parse converts "SS.ss", "M:SS.ss" or "MM:SS.ss" into seconds.
// Empty input and a zero time return model.ErrNoTime.
func Parse(text string) (float64, error) {
	d, err := ParseDecimal(text)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseDecimal is Parse without the float conversion.
func ParseDecimal(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, model.ErrNoTime
	}
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return decimal.Zero, fmt.Errorf("%q: too many segments: %w", text, model.ErrInvalidTimeFormat)
	}

	secPart := parts[len(parts)-1]
	if !isUnsignedNumber(secPart, true) {
		return decimal.Zero, fmt.Errorf("%q: %w", text, model.ErrInvalidTimeFormat)
	}
	secs, err := decimal.NewFromString(secPart)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", text, model.ErrInvalidTimeFormat)
	}

	total := secs
	if len(parts) == 2 {
		if !isUnsignedNumber(parts[0], false) {
			return decimal.Zero, fmt.Errorf("%q: %w", text, model.ErrInvalidTimeFormat)
		}
		if secs.GreaterThanOrEqual(sixty) {
			return decimal.Zero, fmt.Errorf("%q: seconds out of range: %w", text, model.ErrInvalidTimeFormat)
		}
		mins, err := decimal.NewFromString(parts[0])
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q: %w", text, model.ErrInvalidTimeFormat)
		}
		total = mins.Mul(sixty).Add(secs)
	}

	if total.IsZero() {
		return decimal.Zero, model.ErrNoTime
	}
	return total, nil
}

// isUnsignedNumber accepts digits with an optional single decimal point.
func isUnsignedNumber(s string, allowFraction bool) bool {
	if s == "" {
		return false
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && allowFraction:
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Format renders seconds as "SS.ss" below a minute and "M:SS.ss" otherwise.
// Absent times render as the empty string.
func Format(seconds float64) string {
	if !Present(seconds) {
		return ""
	}
	h := Hundredths(seconds)
	mins := h / (secondsPerMinute * hundredths)
	rem := h % (secondsPerMinute * hundredths)
	secs := fmt.Sprintf("%02d.%02d", rem/hundredths, rem%hundredths)
	if mins == 0 {
		return secs
	}
	return fmt.Sprintf("%d:%s", mins, secs)
}

// FormatScore renders a dive score with two decimals. Absent scores render
// as the empty string.
func FormatScore(points float64) string {
	if !Present(points) {
		return ""
	}
	return decimal.NewFromFloat(points).StringFixed(2)
}

// Present reports whether seconds is a usable race time.
func Present(seconds float64) bool {
	return seconds > 0 && !math.IsNaN(seconds) && !math.IsInf(seconds, 0)
}

// Hundredths rounds seconds to whole hundredths, the resolution at which
// times are compared.
func Hundredths(seconds float64) int64 {
	return decimal.NewFromFloat(seconds).Shift(2).Round(0).IntPart()
}

// Compare orders a before b when a is faster. Absent times sort last and
// compare equal to each other.
func Compare(a, b float64) int {
	pa, pb := Present(a), Present(b)
	switch {
	case !pa && !pb:
		return 0
	case !pa:
		return 1
	case !pb:
		return -1
	}
	ha, hb := Hundredths(a), Hundredths(b)
	switch {
	case ha < hb:
		return -1
	case ha > hb:
		return 1
	}
	return 0
}

// Scale multiplies seconds by factor and rounds to hundredths.
func Scale(seconds, factor float64) float64 {
	if !Present(seconds) {
		return seconds
	}
	return decimal.NewFromFloat(seconds).Mul(decimal.NewFromFloat(factor)).Round(2).InexactFloat64()
}

// Sum adds times exactly on hundredths. Any absent time makes the sum
// absent.
func Sum(times ...float64) float64 {
	total := decimal.Zero
	for _, t := range times {
		if !Present(t) {
			return 0
		}
		total = total.Add(decimal.NewFromFloat(t))
	}
	return total.Round(2).InexactFloat64()
}
