package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
)

// parseDate parses a YYYY-MM-DD date in the server's local time zone, so that
// calendar comparisons against the local clock line up.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, s)
	}
	return t, nil
}
