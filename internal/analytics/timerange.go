package analytics

import (
	"strings"

	"github.com/yanizio/sitedesk/internal/apperr"
)

// TimeRange selects the comparison window for deltas.
type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// ParseTimeRange accepts week, month, or year (case-insensitive).  Empty
// means month.
func ParseTimeRange(s string) (TimeRange, error) {
	switch tr := TimeRange(strings.ToLower(strings.TrimSpace(s))); tr {
	case "":
		return RangeMonth, nil
	case RangeWeek, RangeMonth, RangeYear:
		return tr, nil
	}
	return "", apperr.Invalid("time_range", "must be one of: week month year")
}
