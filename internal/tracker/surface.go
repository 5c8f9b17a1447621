package tracker

import "price-tracker/internal/domain"

// ChartSurface is the rendering target fed by the coordinator.
type ChartSurface interface {
	SetPriceData(points []domain.ChartPoint)
	SetVolumeData(points []domain.ChartPoint)
	Resize(width, height int)
}

type nopSurface struct{}

func (nopSurface) SetPriceData([]domain.ChartPoint)  {}
func (nopSurface) SetVolumeData([]domain.ChartPoint) {}
func (nopSurface) Resize(int, int)                   {}
