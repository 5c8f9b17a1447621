package domain

import "fmt"

// PricePoint is one normalized row of the market_chart response.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Series is the chronological price/volume history for one interval.
type Series struct {
	Interval Interval     `json:"interval"`
	Points   []PricePoint `json:"points"`
}

// ChartPoint is a single (timestamp, value) sample handed to a chart surface.
type ChartPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// RenderPayload holds the two projections drawn for a series.
type RenderPayload struct {
	Interval Interval
	Price    []ChartPoint
	Volume   []ChartPoint
}

func (s Series) Len() int { return len(s.Points) }

// Validate checks that timestamps are strictly increasing.
func (s Series) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Timestamp <= s.Points[i-1].Timestamp {
			return fmt.Errorf("%w: point %d at %d follows %d",
				ErrSeriesUnordered, i, s.Points[i].Timestamp, s.Points[i-1].Timestamp)
		}
	}
	return nil
}

// Payload projects the series into price-line and volume sequences.
// Both keep the series order.
func (s Series) Payload() RenderPayload {
	price := make([]ChartPoint, len(s.Points))
	volume := make([]ChartPoint, len(s.Points))
	for i, p := range s.Points {
		price[i] = ChartPoint{Time: p.Timestamp, Value: p.Price}
		volume[i] = ChartPoint{Time: p.Timestamp, Value: p.Volume}
	}
	return RenderPayload{Interval: s.Interval, Price: price, Volume: volume}
}
