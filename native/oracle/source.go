package oracle

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
)

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPPairSource reads pair data from an AMM gateway exposing the standard
// cumulative_prices and pool query endpoints.
type HTTPPairSource struct {
	client   HTTPDoer
	endpoint string
}

// NewHTTPPairSource constructs a pair source adapter. When the client is nil
// http.DefaultClient is used.
func NewHTTPPairSource(client HTTPDoer, endpoint string) *HTTPPairSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPairSource{client: client, endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/")}
}

// CumulativePrice returns the pair's cumulative price counter for the token
// at baseIndex.
func (s *HTTPPairSource) CumulativePrice(pairAddr string, baseIndex uint8) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pair source not configured")
	}
	if baseIndex > 1 {
		return nil, ErrInvalidBaseIndex
	}
	var payload struct {
		Price0CumulativeLast string `json:"price0_cumulative_last"`
		Price1CumulativeLast string `json:"price1_cumulative_last"`
	}
	target := fmt.Sprintf("%s/pair/%s/cumulative_prices", s.endpoint, url.PathEscape(pairAddr))
	if err := s.getJSON(target, &payload); err != nil {
		return nil, err
	}
	raw := payload.Price0CumulativeLast
	if baseIndex == 1 {
		raw = payload.Price1CumulativeLast
	}
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("pair source: invalid cumulative price %q", raw)
	}
	return value, nil
}

// Reserves returns both pool reserves in pair order.
func (s *HTTPPairSource) Reserves(pairAddr string) ([2]*big.Int, error) {
	var reserves [2]*big.Int
	if s == nil {
		return reserves, fmt.Errorf("pair source not configured")
	}
	var payload struct {
		Assets []struct {
			Amount string `json:"amount"`
		} `json:"assets"`
	}
	target := fmt.Sprintf("%s/pair/%s/pool", s.endpoint, url.PathEscape(pairAddr))
	if err := s.getJSON(target, &payload); err != nil {
		return reserves, err
	}
	if len(payload.Assets) != 2 {
		return reserves, fmt.Errorf("pair source: expected 2 assets, got %d", len(payload.Assets))
	}
	for i, asset := range payload.Assets {
		value, ok := new(big.Int).SetString(strings.TrimSpace(asset.Amount), 10)
		if !ok || value.Sign() < 0 {
			return reserves, fmt.Errorf("pair source: invalid reserve %q", asset.Amount)
		}
		reserves[i] = value
	}
	return reserves, nil
}

// TotalSupply returns the circulating supply of an external token.
func (s *HTTPPairSource) TotalSupply(token string) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pair source not configured")
	}
	var payload struct {
		TotalSupply string `json:"total_supply"`
	}
	target := fmt.Sprintf("%s/token/%s/supply", s.endpoint, url.PathEscape(token))
	if err := s.getJSON(target, &payload); err != nil {
		return nil, err
	}
	return parseAmount(payload.TotalSupply)
}

// TokenBalance returns the account's balance of an external token.
func (s *HTTPPairSource) TokenBalance(token, account string) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pair source not configured")
	}
	var payload struct {
		Balance string `json:"balance"`
	}
	target := fmt.Sprintf("%s/token/%s/balance/%s", s.endpoint, url.PathEscape(token), url.PathEscape(account))
	if err := s.getJSON(target, &payload); err != nil {
		return nil, err
	}
	return parseAmount(payload.Balance)
}

// BankBalance returns the account's native balance in the given denom.
func (s *HTTPPairSource) BankBalance(account, denom string) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pair source not configured")
	}
	var payload struct {
		Amount string `json:"amount"`
	}
	target := fmt.Sprintf("%s/bank/%s/%s", s.endpoint, url.PathEscape(account), url.PathEscape(denom))
	if err := s.getJSON(target, &payload); err != nil {
		return nil, err
	}
	return parseAmount(payload.Amount)
}

func parseAmount(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("pair source: invalid amount %q", raw)
	}
	return value, nil
}

func (s *HTTPPairSource) getJSON(target string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pair source: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pair source: decode: %w", err)
	}
	return nil
}
