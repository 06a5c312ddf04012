package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmarenov/ghglance/internal/shared"
)

const (
	secondsPerMinuteConstant     = 60
	minutesPerHourConstant       = 60
	hoursPerDayConstant          = 24
	daysPerWeekConstant          = 7
	daysPerMonthConstant         = 30
	weekBucketLimitDaysConstant  = 35
	monthBucketLimitDaysConstant = 365

	justNowLabelConstant    = "1 min ago"
	singleDayLabelConstant  = "1 day ago"
	minutesTemplateConstant = "%d min ago"
	hoursTemplateConstant   = "%d hr ago"
	daysTemplateConstant    = "%d days ago"
	weeksTemplateConstant   = "%d wk ago"
	monthsTemplateConstant  = "%d mo ago"
	yearsTemplateConstant   = "%d yr ago"
)

// RelativeTimeFormatter converts absolute timestamps into coarse
// human-relative buckets. All bucket boundaries use integer floor division,
// and a boundary value always lands in the coarser bucket.
type RelativeTimeFormatter struct {
	clock shared.Clock
}

// NewRelativeTimeFormatter constructs a formatter using the provided clock.
func NewRelativeTimeFormatter(clock shared.Clock) *RelativeTimeFormatter {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &RelativeTimeFormatter{clock: clock}
}

// Format parses an RFC 3339 timestamp and renders its relative bucket.
// Empty or unparsable input yields the placeholder rather than an error.
func (formatter *RelativeTimeFormatter) Format(timestamp string) string {
	trimmedTimestamp := strings.TrimSpace(timestamp)
	if len(trimmedTimestamp) == 0 {
		return UnknownValuePlaceholder
	}
	parsedTimestamp, parseError := time.Parse(time.RFC3339, trimmedTimestamp)
	if parseError != nil {
		return UnknownValuePlaceholder
	}
	return formatter.FormatTime(parsedTimestamp)
}

// FormatTime renders the relative bucket for an absolute instant.
func (formatter *RelativeTimeFormatter) FormatTime(instant time.Time) string {
	if instant.IsZero() {
		return UnknownValuePlaceholder
	}

	elapsedSeconds := int(formatter.clock.Now().UTC().Sub(instant.UTC()) / time.Second)
	if elapsedSeconds < secondsPerMinuteConstant {
		return justNowLabelConstant
	}

	elapsedMinutes := elapsedSeconds / secondsPerMinuteConstant
	if elapsedMinutes < minutesPerHourConstant {
		return fmt.Sprintf(minutesTemplateConstant, elapsedMinutes)
	}

	elapsedHours := elapsedMinutes / minutesPerHourConstant
	if elapsedHours < hoursPerDayConstant {
		return fmt.Sprintf(hoursTemplateConstant, elapsedHours)
	}

	elapsedDays := elapsedHours / hoursPerDayConstant
	if elapsedDays < daysPerWeekConstant {
		if elapsedDays == 1 {
			return singleDayLabelConstant
		}
		return fmt.Sprintf(daysTemplateConstant, elapsedDays)
	}

	if elapsedDays < weekBucketLimitDaysConstant {
		return fmt.Sprintf(weeksTemplateConstant, elapsedDays/daysPerWeekConstant)
	}

	if elapsedDays < monthBucketLimitDaysConstant {
		return fmt.Sprintf(monthsTemplateConstant, elapsedDays/daysPerMonthConstant)
	}

	return fmt.Sprintf(yearsTemplateConstant, elapsedDays/monthBucketLimitDaysConstant)
}
