package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSeriesLengthMismatch = errors.New("price and volume arrays differ in length")
	ErrSeriesUnordered      = errors.New("series timestamps are not strictly increasing")
	ErrInvalidQuote         = errors.New("invalid price quote")
)

const (
	priceRetryMessage         = "Too many requests to get current price. Please reload after ~1 minute"
	initialSeriesRetryMessage = "Too many requests. Please reload after ~1 minute"
	switchSeriesRetryMessage  = "Too many requests! Please wait a minute and try again to load the %s data."
)

// UserFacing is implemented by errors that carry a message fit for display.
type UserFacing interface {
	error
	UserMessage() string
}

// PriceFetchError reports a failed quote request.
type PriceFetchError struct {
	Err error
}

func (e *PriceFetchError) Error() string {
	return fmt.Sprintf("price fetch failed: %v", e.Err)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

func (e *PriceFetchError) UserMessage() string { return priceRetryMessage }

// SeriesFetchError reports a failed chart-data request for one interval.
// Initial marks the unconditional default-interval load done at startup.
type SeriesFetchError struct {
	Interval Interval
	Initial  bool
	Err      error
}

func (e *SeriesFetchError) Error() string {
	return fmt.Sprintf("series fetch failed for %s: %v", e.Interval, e.Err)
}

func (e *SeriesFetchError) Unwrap() error { return e.Err }

func (e *SeriesFetchError) UserMessage() string {
	if e.Initial {
		return initialSeriesRetryMessage
	}
	return fmt.Sprintf(switchSeriesRetryMessage, e.Interval)
}

// UserMessage extracts the display message from err, falling back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf UserFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}
	return err.Error()
}
