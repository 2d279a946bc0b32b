// Package alphavantage fetches daily closes, weekly adjusted series and company
// overviews from the Alpha Vantage query API.
//
// Every call issues exactly one GET and classifies the response into a Result
// instead of returning an error. There is no retry: a failed fetch leaves cached
// data alone until the next caller-initiated attempt.
package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/config"
)

// Client is the quote provider capability consumed by the refresh service.
type Client interface {
	DailyClose(ctx context.Context, symbol string) Result[DailyClose]
	WeeklySeries(ctx context.Context, symbol string) Result[[]SeriesPoint]
	Overview(ctx context.Context, symbol string) Result[Overview]
}

// APIClient is the HTTP implementation of Client.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewAPIClient creates a client for the configured endpoint. The configured
// timeout bounds the whole request; expiry is reported as OutcomeNetworkError.
func NewAPIClient(cfg config.AlphaVantage, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger.Named("alphavantage"),
	}
}

// DailyClose returns the first entry of the daily series in response order.
// The provider lists days newest-first, so this is the latest close.
func (c *APIClient) DailyClose(ctx context.Context, symbol string) Result[DailyClose] {
	body, failed, ok := c.query(ctx, FunctionDaily, symbol, url.Values{"outputsize": {"compact"}})
	if !ok {
		return Failed[DailyClose](failed.outcome, failed.cause())
	}

	raw, n, err := lookup(body, KeyDaily)
	if err != nil {
		return malformed[DailyClose](err)
	}
	if raw == nil {
		return rateLimited[DailyClose](n)
	}

	points, err := decodeSeries(raw, 1)
	if err != nil {
		return malformed[DailyClose](err)
	}
	if len(points) == 0 {
		return malformed[DailyClose](errors.New("daily series is empty"))
	}

	return success(DailyClose(points[0]))
}

// WeeklySeries returns every (date, close) pair in response order.
func (c *APIClient) WeeklySeries(ctx context.Context, symbol string) Result[[]SeriesPoint] {
	body, failed, ok := c.query(ctx, FunctionWeekly, symbol, nil)
	if !ok {
		return Failed[[]SeriesPoint](failed.outcome, failed.cause())
	}

	raw, n, err := lookup(body, KeyWeekly)
	if err != nil {
		return malformed[[]SeriesPoint](err)
	}
	if raw == nil {
		return rateLimited[[]SeriesPoint](n)
	}

	points, err := decodeSeries(raw, 0)
	if err != nil {
		return malformed[[]SeriesPoint](err)
	}

	return success(points)
}

// Overview returns the company fundamentals. Every field must be present; a
// response carrying AssetType but missing any of them is malformed.
func (c *APIClient) Overview(ctx context.Context, symbol string) Result[Overview] {
	body, failed, ok := c.query(ctx, FunctionOverview, symbol, nil)
	if !ok {
		return Failed[Overview](failed.outcome, failed.cause())
	}

	raw, n, err := lookup(body, KeyOverview)
	if err != nil {
		return malformed[Overview](err)
	}
	if raw == nil {
		return rateLimited[Overview](n)
	}

	var p overviewPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return malformed[Overview](fmt.Errorf("failed to decode overview: %w", err))
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"Name", p.Name},
		{"52WeekLow", p.FiftyTwoWeekLow},
		{"52WeekHigh", p.FiftyTwoWeekHigh},
		{"MarketCapitalization", p.MarketCapitalization},
		{"DividendPerShare", p.DividendPerShare},
		{"PERatio", p.PERatio},
		{"PEGRatio", p.PEGRatio},
		{"ProfitMargin", p.ProfitMargin},
		{"Beta", p.Beta},
		{"PriceToBookRatio", p.PriceToBookRatio},
	}
	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return malformed[Overview](fmt.Errorf("overview is missing %s", strings.Join(missing, ", ")))
	}

	return success(Overview{
		Name:                 *p.Name,
		FiftyTwoWeekLow:      *p.FiftyTwoWeekLow,
		FiftyTwoWeekHigh:     *p.FiftyTwoWeekHigh,
		MarketCapitalization: *p.MarketCapitalization,
		DividendPerShare:     *p.DividendPerShare,
		PERatio:              *p.PERatio,
		PEGRatio:             *p.PEGRatio,
		ProfitMargin:         *p.ProfitMargin,
		Beta:                 *p.Beta,
		PriceToBookRatio:     *p.PriceToBookRatio,
	})
}

// failure carries a transport or status classification out of query.
type failure struct {
	outcome Outcome
	status  int
	err     error
}

func (f failure) cause() error {
	if f.outcome == OutcomeHTTPError {
		return &HTTPError{StatusCode: f.status}
	}
	return f.err
}

// query performs the GET and returns the body of a 200 response.
func (c *APIClient) query(ctx context.Context, function, symbol string, extra url.Values) ([]byte, failure, bool) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, failure{outcome: OutcomeNetworkError, err: err}, false
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failure{outcome: OutcomeNetworkError, err: err}, false
	}
	defer resp.Body.Close()

	c.logger.Debug("quote request",
		zap.String("function", function),
		zap.String("symbol", symbol),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, failure{outcome: OutcomeHTTPError, status: resp.StatusCode}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure{outcome: OutcomeNetworkError, err: fmt.Errorf("failed to read response: %w", err)}, false
	}

	return body, failure{}, true
}

// lookup returns the raw value stored under key in the top-level object. A nil
// value with a nil error means the key is absent; the returned notice then
// holds whatever throttling message the provider sent.
func lookup(body []byte, key string) (json.RawMessage, notice, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, notice{}, fmt.Errorf("response is not a JSON object: %w", err)
	}

	raw, ok := top[key]
	if !ok {
		var n notice
		_ = json.Unmarshal(body, &n)
		return nil, n, nil
	}
	return raw, notice{}, nil
}

// decodeSeries walks a time-series object token by token so entries come back
// in the order the provider wrote them. A positive limit stops after that many
// entries.
func decodeSeries(raw json.RawMessage, limit int) ([]SeriesPoint, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("series is not an object")
	}

	var points []SeriesPoint
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read series key: %w", err)
		}
		key, _ := tok.(string)

		var entry map[string]json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %q: %w", key, err)
		}

		date, err := time.Parse(dateLayout, key)
		if err != nil {
			return nil, fmt.Errorf("invalid series date %q: %w", key, err)
		}

		var closePrice string
		rawClose, ok := entry[closeField]
		if !ok {
			return nil, fmt.Errorf("entry %s has no %q", key, closeField)
		}
		if err := json.Unmarshal(rawClose, &closePrice); err != nil {
			return nil, fmt.Errorf("entry %s has a non-string close: %w", key, err)
		}

		points = append(points, SeriesPoint{Date: date, Close: closePrice})
		if limit > 0 && len(points) == limit {
			break
		}
	}

	return points, nil
}
