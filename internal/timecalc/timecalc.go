package timecalc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/saati/saati/pkg/entity"
)

const ISODate = "2006-01-02"

// Duration returns the worked span of a log entry minus its break. Non-work
// entries and entries missing either timestamp yield zero. The result is
// deliberately not clamped: a break longer than the span goes negative and
// the aggregation layer decides what to do with it.
func Duration(log entity.LogEntry) time.Duration {
	if log.Type != entity.LogTypeWork || log.StartTime == nil || log.EndTime == nil {
		return 0
	}
	return log.EndTime.Sub(*log.StartTime) - time.Duration(log.BreakMinutes)*time.Minute
}

// Overtime returns the part of a duration beyond the profile's nominal work
// day. Never negative; deficits are not represented.
func Overtime(d time.Duration, profile entity.ProfileSettings) time.Duration {
	required := time.Duration(profile.WorkHoursPerDay) * time.Hour
	if d <= required {
		return 0
	}
	return d - required
}

// Millis is a duration that travels over the wire as integer milliseconds
// instead of encoding/json's default nanosecond count.
type Millis time.Duration

func (m Millis) Duration() time.Duration {
	return time.Duration(m)
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Duration(m).Milliseconds(), 10), nil
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*m = Millis(time.Duration(v) * time.Millisecond)
	return nil
}

// FormatDuration renders a duration as zero-padded HH:MM:SS. Negative
// inputs clamp to "00:00:00".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatDurationHHMM renders a duration as zero-padded HH:MM, clamping
// negatives like FormatDuration.
func FormatDurationHHMM(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/3600, (total%3600)/60)
}

type Period string

const (
	PeriodToday     Period = "today"
	PeriodThisWeek  Period = "thisWeek"
	PeriodThisMonth Period = "thisMonth"
	PeriodThisYear  Period = "thisYear"
	PeriodCustom    Period = "custom"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodThisWeek, PeriodThisMonth, PeriodThisYear, PeriodCustom:
		return true
	}
	return false
}

// RangeFor resolves a period preset to an inclusive [start, end] ISO date
// pair. Weeks start on Sunday. For the custom preset missing bounds default
// to the trailing 30 days.
func RangeFor(p Period, now time.Time, customStart, customEnd string) (string, string) {
	switch p {
	case PeriodToday:
		d := now.Format(ISODate)
		return d, d
	case PeriodThisWeek:
		first := now.AddDate(0, 0, -int(now.Weekday()))
		last := first.AddDate(0, 0, 6)
		return first.Format(ISODate), last.Format(ISODate)
	case PeriodThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)
		return first.Format(ISODate), last.Format(ISODate)
	case PeriodThisYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		last := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
		return first.Format(ISODate), last.Format(ISODate)
	default:
		start, end := customStart, customEnd
		if start == "" {
			start = now.AddDate(0, 0, -30).Format(ISODate)
		}
		if end == "" {
			end = now.Format(ISODate)
		}
		return start, end
	}
}

// FormatDisplayDate renders an ISO date for report headers, e.g.
// "June 1, 2024". Unparseable input is passed through untouched.
func FormatDisplayDate(iso string) string {
	t, err := time.Parse(ISODate, iso)
	if err != nil {
		return iso
	}
	return t.Format("January 2, 2006")
}

// DisplayRange collapses equal bounds to a single date.
func DisplayRange(start, end string) string {
	if start == "" || end == "" {
		return "N/A"
	}
	if start == end {
		return FormatDisplayDate(start)
	}
	return FormatDisplayDate(start) + " - " + FormatDisplayDate(end)
}
