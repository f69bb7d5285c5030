package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteProvider returns the live BRL price of one unit of code.
type QuoteProvider interface {
	Quote(ctx context.Context, code Code) (decimal.Decimal, error)
}

// AwesomeClient queries the AwesomeAPI "last quote" endpoint.
type AwesomeClient struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*AwesomeClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *AwesomeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewAwesomeClient(baseURL string, timeout time.Duration, opts ...Option) *AwesomeClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://economia.awesomeapi.com.br"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &AwesomeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type awesomeQuote struct {
	Bid string `json:"bid"`
}

// Quote fetches GET {base}/json/last/{CODE}-BRL and parses the "bid" field of
// the "{CODE}BRL" entry.
func (c *AwesomeClient) Quote(ctx context.Context, code Code) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/json/last/%s-%s", c.baseURL, code, BaseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create quote request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request quote api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return decimal.Zero, fmt.Errorf("read quote response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote http error: status=%d", resp.StatusCode)
	}

	var payload map[string]awesomeQuote
	if err := json.Unmarshal(data, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode quote response failed: %w", err)
	}

	quote, ok := payload[string(code)+string(BaseCurrency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("quote response has no %s%s entry", code, BaseCurrency)
	}
	bid, err := decimal.NewFromString(strings.TrimSpace(quote.Bid))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse bid %q failed: %w", quote.Bid, err)
	}
	return bid, nil
}
