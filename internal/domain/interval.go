package domain

import (
	"errors"
	"fmt"
)

// Interval is a named lookback window selectable from the range buttons.
type Interval string

const (
	Interval1D Interval = "1d"
	Interval3D Interval = "3d"
	Interval1W Interval = "1w"
	Interval1M Interval = "1m"
	Interval6M Interval = "6m"
	Interval1Y Interval = "1y"
)

// DefaultInterval is the interval fetched unconditionally on first load.
const DefaultInterval = Interval1D

var ErrUnknownInterval = errors.New("unknown interval")

// intervalDays maps each interval to the market_chart "days" parameter.
var intervalDays = map[Interval]int{
	Interval1D: 1,
	Interval3D: 3,
	Interval1W: 7,
	Interval1M: 30,
	Interval6M: 180,
	Interval1Y: 365,
}

var orderedIntervals = []Interval{
	Interval1D, Interval3D, Interval1W, Interval1M, Interval6M, Interval1Y,
}

// Intervals returns every supported interval, shortest lookback first.
func Intervals() []Interval {
	return append([]Interval(nil), orderedIntervals...)
}

// DaysFor resolves an interval to its lookback in days.
func DaysFor(iv Interval) (int, error) {
	days, ok := intervalDays[iv]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInterval, string(iv))
	}
	return days, nil
}

// ParseInterval validates a raw interval name.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, err := DaysFor(iv); err != nil {
		return "", err
	}
	return iv, nil
}

func (iv Interval) Valid() bool {
	_, ok := intervalDays[iv]
	return ok
}

func (iv Interval) String() string { return string(iv) }
