package chart

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"price-tracker/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	// InitialWidth and InitialHeight are the embedded (non-fullscreen) size in cells.
	InitialWidth  = 100
	InitialHeight = 16

	minWidth   = 24
	minHeight  = 5
	labelWidth = 12
)

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// Styles controls the colors of the rendered chart.
type Styles struct {
	Price  lipgloss.Style
	Volume lipgloss.Style
	Label  lipgloss.Style
	Empty  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Price:  lipgloss.NewStyle().Foreground(lipgloss.Color("#4B40EE")),
		Volume: lipgloss.NewStyle().Foreground(lipgloss.Color("#D3D3D3")),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6F7177")),
		Empty:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6F7177")).Italic(true),
	}
}

// Terminal is a chart surface drawn with block characters: an area chart
// for price above a histogram for volume. It is safe for concurrent use.
type Terminal struct {
	mu     sync.RWMutex
	width  int
	height int
	price  []domain.ChartPoint
	volume []domain.ChartPoint
	styles Styles
}

func NewTerminal(width, height int) *Terminal {
	t := &Terminal{styles: DefaultStyles()}
	t.Resize(width, height)
	return t
}

func (t *Terminal) SetStyles(s Styles) {
	t.mu.Lock()
	t.styles = s
	t.mu.Unlock()
}

func (t *Terminal) SetPriceData(points []domain.ChartPoint) {
	t.mu.Lock()
	t.price = append([]domain.ChartPoint(nil), points...)
	t.mu.Unlock()
}

func (t *Terminal) SetVolumeData(points []domain.ChartPoint) {
	t.mu.Lock()
	t.volume = append([]domain.ChartPoint(nil), points...)
	t.mu.Unlock()
}

// Resize sets the drawing area in terminal cells, clamped to a usable minimum.
func (t *Terminal) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = max(width, minWidth)
	t.height = max(height, minHeight)
}

func (t *Terminal) Size() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width, t.height
}

// Render draws the whole series scaled into the current size.
func (t *Terminal) Render() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.price) == 0 {
		return t.styles.Empty.Width(t.width).Height(t.height).Render("no chart data")
	}

	plotWidth := t.width - labelWidth
	volumeRows := max(1, t.height/4)
	priceRows := t.height - volumeRows - 1

	prices := resample(t.price, plotWidth)
	volumes := resample(t.volume, plotWidth)

	lo, hi := bounds(prices)
	_, vhi := bounds(volumes)

	var b strings.Builder
	priceLines := area(prices, lo, hi, priceRows)
	for i, line := range priceLines {
		label := ""
		switch i {
		case 0:
			label = formatPrice(hi)
		case len(priceLines) - 1:
			label = formatPrice(lo)
		}
		b.WriteString(t.styles.Price.Render(line))
		b.WriteString(t.styles.Label.Render(padLabel(label)))
		b.WriteByte('\n')
	}

	volumeLines := area(volumes, 0, vhi, volumeRows)
	if len(t.volume) == 0 {
		for i := range volumeLines {
			volumeLines[i] = strings.Repeat(" ", plotWidth)
		}
	}
	for i, line := range volumeLines {
		label := ""
		if i == 0 {
			label = formatVolume(vhi)
		}
		b.WriteString(t.styles.Volume.Render(line))
		b.WriteString(t.styles.Label.Render(padLabel(label)))
		b.WriteByte('\n')
	}

	b.WriteString(t.styles.Label.Render(timeAxis(t.price, plotWidth) + strings.Repeat(" ", labelWidth)))
	return b.String()
}

// resample picks width samples spread evenly across points, first and last included.
func resample(points []domain.ChartPoint, width int) []float64 {
	out := make([]float64, width)
	n := len(points)
	if n == 0 {
		return out
	}
	for x := 0; x < width; x++ {
		idx := 0
		if width > 1 {
			idx = int(math.Round(float64(x) * float64(n-1) / float64(width-1)))
		}
		out[x] = points[idx].Value
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// area fills each column from the bottom up to its value, using eighth blocks
// for the partial top cell.
func area(values []float64, lo, hi float64, rows int) []string {
	span := hi - lo
	levels := make([]int, len(values))
	for i, v := range values {
		if span <= 0 {
			levels[i] = rows * 4
			continue
		}
		// Keep at least one eighth so the minimum stays visible.
		levels[i] = max(1, int(math.Round((v-lo)/span*float64(rows*8))))
	}

	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		floor := (rows - 1 - r) * 8
		var row strings.Builder
		for _, level := range levels {
			switch {
			case level >= floor+8:
				row.WriteRune(blocks[8])
			case level > floor:
				row.WriteRune(blocks[level-floor])
			default:
				row.WriteRune(blocks[0])
			}
		}
		lines[r] = row.String()
	}
	return lines
}

func timeAxis(points []domain.ChartPoint, width int) string {
	first := formatTime(points[0].Time)
	last := formatTime(points[len(points)-1].Time)
	gap := width - len(first) - len(last)
	if gap < 1 {
		return first + strings.Repeat(" ", max(0, width-len(first)))
	}
	return first + strings.Repeat(" ", gap) + last
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("Jan 02 15:04")
}

func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatVolume(v float64) string {
	units := []struct {
		div    float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if math.Abs(v) >= u.div {
			return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
		}
	}
	return fmt.Sprintf("%.0f", v)
}

func padLabel(label string) string {
	label = " " + label
	if len(label) > labelWidth {
		return label[:labelWidth]
	}
	return label + strings.Repeat(" ", labelWidth-len(label))
}
