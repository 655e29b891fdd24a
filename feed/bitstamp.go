package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// BitstampURL is the public Bitstamp HTTP API.
const BitstampURL = "https://www.bitstamp.net/api/v2"

// bitstampRPM is Bitstamp's documented per-minute request allowance.
const bitstampRPM = 60

// Bitstamp serves prices from the Bitstamp ticker endpoint.
type Bitstamp struct {
	client *resty.Client
}

// NewBitstamp creates a Bitstamp feed against the public API.
func NewBitstamp(timeout time.Duration) *Bitstamp {
	return NewBitstampURL(BitstampURL, timeout)
}

// NewBitstampURL creates a Bitstamp feed against a custom base URL.
func NewBitstampURL(baseURL string, timeout time.Duration) *Bitstamp {
	return &Bitstamp{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

type bitstampTicker struct {
	Last string `json:"last"`
}

func (b *Bitstamp) GetPrice(ctx context.Context, symbol string) (float64, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		Get("/ticker/" + strings.ToLower(symbol))
	if err != nil {
		return 0, fmt.Errorf("bitstamp ticker %s: %w", symbol, err)
	}
	if resp.StatusCode() == 404 {
		return 0, &UnknownSymbolError{Symbol: strings.ToUpper(symbol)}
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("cannot connect to Bitstamp API: %d", resp.StatusCode())
	}
	var t bitstampTicker
	if err := json.Unmarshal(resp.Body(), &t); err != nil {
		return 0, fmt.Errorf("bitstamp ticker %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(t.Last, 64)
	if err != nil {
		return 0, fmt.Errorf("bitstamp ticker %s: bad last price %q", symbol, t.Last)
	}
	return price, nil
}

func (b *Bitstamp) SymbolExists(ctx context.Context, symbol string) bool {
	resp, err := b.client.R().
		SetContext(ctx).
		Get("/ticker/" + strings.ToLower(symbol))
	return err == nil && resp.StatusCode() == 200
}

func (b *Bitstamp) Ping(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/ticker/btcusd")
	if err != nil {
		return fmt.Errorf("bitstamp ping: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("cannot connect to Bitstamp API: %d", resp.StatusCode())
	}
	return nil
}

func (b *Bitstamp) RequestsPerMinute() int { return bitstampRPM }
