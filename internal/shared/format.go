package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is rendered for any missing optional value.
const NotAvailable = "N/A"

// FormatDuration renders seconds as M:SS.
//
// Zero (or a missing duration) renders as [NotAvailable].
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatOptionalInt renders a nullable integer, treating nil and zero as missing.
func FormatOptionalInt(v *int) string {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d", *v)
}

// FormatDate renders the calendar date of t or [NotAvailable] for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Local().Format("2006-01-02")
}

// FormatDateTime renders date and time of t or [NotAvailable] for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// OrNA returns s, or [NotAvailable] when s is empty.
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// YesNo renders a boolean flag for tables.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ParseDuration reads "M:SS" or a plain number of seconds. Empty input is zero.
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	mins, secs, found := strings.Cut(s, ":")
	if !found {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
		}
		return n, nil
	}

	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec > 59 || len(secs) != 2 {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
	}
	return m*60 + sec, nil
}
