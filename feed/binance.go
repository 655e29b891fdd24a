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

// BinanceURL is the public Binance HTTP API.
const BinanceURL = "https://api.binance.com"

// binanceRPM is Binance's documented request weight allowance per minute.
const binanceRPM = 1200

// Binance serves prices from the Binance ticker endpoint.
type Binance struct {
	client *resty.Client
}

// NewBinance creates a Binance feed against the public API.
func NewBinance(timeout time.Duration) *Binance {
	return NewBinanceURL(BinanceURL, timeout)
}

// NewBinanceURL creates a Binance feed against a custom base URL.
func NewBinanceURL(baseURL string, timeout time.Duration) *Binance {
	return &Binance{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (b *Binance) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/api/v3/ticker/price")
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: %w", symbol, err)
	}
	if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
		// Binance reports unknown symbols as a 4xx with a message body.
		var apiErr binanceError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Msg != "" {
			return 0, fmt.Errorf("%w: %s", &UnknownSymbolError{Symbol: symbol}, apiErr.Msg)
		}
		return 0, &UnknownSymbolError{Symbol: symbol}
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("cannot connect to Binance API: %d", resp.StatusCode())
	}
	var t binanceTicker
	if err := json.Unmarshal(resp.Body(), &t); err != nil {
		return 0, fmt.Errorf("binance ticker %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(t.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance ticker %s: bad price %q", symbol, t.Price)
	}
	return price, nil
}

func (b *Binance) SymbolExists(ctx context.Context, symbol string) bool {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", strings.ToUpper(symbol)).
		Get("/api/v3/ticker/price")
	return err == nil && resp.StatusCode() == 200
}

func (b *Binance) Ping(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/api/v3/ping")
	if err != nil {
		return fmt.Errorf("binance ping: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("cannot connect to Binance API: %d", resp.StatusCode())
	}
	return nil
}

func (b *Binance) RequestsPerMinute() int { return binanceRPM }
