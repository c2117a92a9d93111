package calculator

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Duration is the billed length of a slot.
type Duration int

const (
	OneHour Duration = 1
	TwoHour Duration = 2
)

// String implements fmt.Stringer.
func (d Duration) String() string {
	if d == TwoHour {
		return "2h"
	}
	return "1h"
}

// Pricing holds the unit price per slot duration. The two prices are
// independent settings; TwoHour is not derived from OneHour.
type Pricing struct {
	OneHour decimal.Decimal
	TwoHour decimal.Decimal
}

// DefaultPricing returns the reference prices (EUR).
func DefaultPricing() Pricing {
	return Pricing{
		OneHour: decimal.RequireFromString("3.80"),
		TwoHour: decimal.RequireFromString("7.60"),
	}
}

// Price returns the cost of a slot with the given duration.
func (p Pricing) Price(d Duration) decimal.Decimal {
	if d == TwoHour {
		return p.TwoHour
	}
	return p.OneHour
}

// timeRangePattern matches "19:00-21:00", "19.00 – 21.00", "9:30—11:30".
var timeRangePattern = regexp.MustCompile(`(\d{1,2})[:.](\d{2})\s*[-–—]\s*(\d{1,2})[:.](\d{2})`)

// Two-hour window, in minutes. The tolerance absorbs sloppy range formatting.
const (
	twoHourMinMinutes = 108 // 1.8h
	twoHourMaxMinutes = 132 // 2.2h
)

// ParseTimeRange returns the start and end of a time range in minutes after
// midnight. ok is false when the range cannot be parsed.
func ParseTimeRange(s string) (start, end int, ok bool) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	nums := make([]int, 4)
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, 0, false
		}
		nums[i] = n
	}
	if nums[0] > 23 || nums[2] > 24 || nums[1] > 59 || nums[3] > 59 {
		return 0, 0, false
	}
	return nums[0]*60 + nums[1], nums[2]*60 + nums[3], true
}

// SlotDuration classifies a time range. Ranges spanning 1.8 to 2.2 hours are
// two-hour slots; everything else, including unparseable ranges, is one hour.
func SlotDuration(timeRange string) Duration {
	start, end, ok := ParseTimeRange(timeRange)
	if !ok {
		return OneHour
	}
	if span := end - start; span >= twoHourMinMinutes && span <= twoHourMaxMinutes {
		return TwoHour
	}
	return OneHour
}
