package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"price-tracker/internal/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultAssetID  = "bitcoin"
	DefaultCurrency = "usd"

	// Free tier allows roughly 8 calls per minute.
	DefaultRequestsPerMin = 8
)

// Options configures a CoinGeckoProvider. Zero values take the defaults above.
type Options struct {
	BaseURL        string
	AssetID        string
	Currency       string
	RequestsPerMin int
	// Timeout of 0 leaves the transport default in place.
	Timeout time.Duration
	Logger  *log.Logger
}

// CoinGeckoProvider fetches the quote and market_chart series for one asset.
type CoinGeckoProvider struct {
	client   *http.Client
	baseURL  string
	assetID  string
	currency string
	tracer   trace.Tracer
	limiter  *RateLimiter
	logger   *log.Logger
}

func NewCoinGeckoProvider(tracer trace.Tracer, opts Options) *CoinGeckoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.AssetID == "" {
		opts.AssetID = DefaultAssetID
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.RequestsPerMin <= 0 {
		opts.RequestsPerMin = DefaultRequestsPerMin
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &CoinGeckoProvider{
		client:   &http.Client{Timeout: opts.Timeout},
		baseURL:  opts.BaseURL,
		assetID:  opts.AssetID,
		currency: opts.Currency,
		tracer:   tracer,
		limiter:  NewPerMinuteLimiter(opts.RequestsPerMin),
		logger:   opts.Logger.WithPrefix("coingecko"),
	}
}

func (p *CoinGeckoProvider) AssetID() string  { return p.assetID }
func (p *CoinGeckoProvider) Currency() string { return p.currency }

// FetchCurrentPrice returns the spot price and 24h change of the tracked asset.
func (p *CoinGeckoProvider) FetchCurrentPrice(ctx context.Context) (domain.PriceSummary, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-current-price")
	defer span.End()

	summary, err := p.fetchCurrentPrice(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "price fetch failed")
		p.logger.Warn("current price fetch failed", "asset", p.assetID, "err", err)
		return domain.PriceSummary{}, &domain.PriceFetchError{Err: err}
	}
	p.logger.Debug("fetched current price", "asset", p.assetID, "price", summary.CurrentPrice)
	return summary, nil
}

func (p *CoinGeckoProvider) fetchCurrentPrice(ctx context.Context) (domain.PriceSummary, error) {
	q := url.Values{}
	q.Set("ids", p.assetID)
	q.Set("vs_currencies", p.currency)
	q.Set("include_24hr_change", "true")

	body, err := p.doRequest(ctx, p.baseURL+"/simple/price?"+q.Encode())
	if err != nil {
		return domain.PriceSummary{}, fmt.Errorf("fetch price: %w", err)
	}

	// Response shape: {"bitcoin": {"usd": 63000, "usd_24h_change": 2.5}}
	// Values may be null.
	var raw map[string]map[string]*float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PriceSummary{}, fmt.Errorf("parse price: %w", err)
	}

	data, ok := raw[p.assetID]
	if !ok {
		return domain.PriceSummary{}, fmt.Errorf("asset %s missing from price response", p.assetID)
	}
	price := data[p.currency]
	if price == nil {
		return domain.PriceSummary{}, fmt.Errorf("%s price missing for %s", p.currency, p.assetID)
	}
	change := data[p.currency+"_24h_change"]
	if change == nil {
		return domain.PriceSummary{}, fmt.Errorf("%s 24h change missing for %s", p.currency, p.assetID)
	}

	summary := domain.NewPriceSummary(p.currency, *price, *change)
	if err := summary.Valid(); err != nil {
		return domain.PriceSummary{}, fmt.Errorf("parse price: %w", err)
	}
	return summary, nil
}

// FetchSeries fetches and normalizes the market_chart history for an interval.
func (p *CoinGeckoProvider) FetchSeries(ctx context.Context, iv domain.Interval) (domain.Series, error) {
	days, err := domain.DaysFor(iv)
	if err != nil {
		return domain.Series{}, err
	}

	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-series")
	defer span.End()
	span.SetAttributes(
		attribute.String("interval", iv.String()),
		attribute.Int("days", days),
	)

	series, err := p.fetchSeries(ctx, iv, days)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "series fetch failed")
		p.logger.Warn("series fetch failed", "interval", iv, "err", err)
		return domain.Series{}, &domain.SeriesFetchError{Interval: iv, Err: err}
	}

	span.SetAttributes(attribute.Int("points", series.Len()))
	p.logger.Debug("fetched series", "interval", iv, "points", series.Len())
	return series, nil
}

func (p *CoinGeckoProvider) fetchSeries(ctx context.Context, iv domain.Interval, days int) (domain.Series, error) {
	q := url.Values{}
	q.Set("vs_currency", p.currency)
	q.Set("days", strconv.Itoa(days))

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", p.baseURL, url.PathEscape(p.assetID), q.Encode())
	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		return domain.Series{}, fmt.Errorf("fetch market chart: %w", err)
	}

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Series{}, fmt.Errorf("parse market chart: %w", err)
	}

	return NormalizeMarketChart(iv, raw.Prices, raw.TotalVolumes)
}

// NormalizeMarketChart zips index-aligned price and volume rows into a series,
// flooring millisecond timestamps to whole seconds.
func NormalizeMarketChart(iv domain.Interval, prices, volumes [][]float64) (domain.Series, error) {
	if len(prices) != len(volumes) {
		return domain.Series{}, fmt.Errorf("%w: %d prices, %d volumes",
			domain.ErrSeriesLengthMismatch, len(prices), len(volumes))
	}

	points := make([]domain.PricePoint, len(prices))
	for i := range prices {
		if len(prices[i]) < 2 || len(volumes[i]) < 2 {
			return domain.Series{}, fmt.Errorf("malformed market chart row %d", i)
		}
		points[i] = domain.PricePoint{
			Timestamp: int64(math.Floor(prices[i][0] / 1000)),
			Price:     prices[i][1],
			Volume:    volumes[i][1],
		}
	}

	series := domain.Series{Interval: iv, Points: points}
	if err := series.Validate(); err != nil {
		return domain.Series{}, err
	}
	return series, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
