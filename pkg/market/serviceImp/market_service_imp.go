package serviceImp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agrisentry/pkg/market/service"
)

const userAgent = "agrisentry/1.0"

type marketClient struct {
	priceURL string
	geoURL   string
	httpc    *http.Client
}

func NewMarketService(priceURL, geocoderURL string) service.MarketService {
	return &marketClient{
		priceURL: strings.TrimRight(priceURL, "/"),
		geoURL:   strings.TrimRight(geocoderURL, "/"),
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *marketClient) Prices(ctx context.Context, q service.PriceQuery) ([]service.MandiPrice, error) {
	v := url.Values{}
	if q.State != "" {
		v.Set("state", q.State)
	}
	if q.District != "" {
		v.Set("district", q.District)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	v.Set("limit", strconv.Itoa(limit))

	var out []service.MandiPrice
	if err := m.do(ctx, http.MethodGet, m.priceURL+"/mandi-prices?"+v.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("mandi prices: %w", err)
	}
	if out == nil {
		out = []service.MandiPrice{}
	}
	return out, nil
}

func (m *marketClient) Predict(ctx context.Context, req service.PredictionRequest) (*service.PredictionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out service.PredictionResponse
	if err := m.do(ctx, http.MethodPost, m.priceURL+"/predict-price", body, &out); err != nil {
		return nil, fmt.Errorf("predict price: %w", err)
	}
	return &out, nil
}

// Locate reverse-geocodes a point. District prefers the county name.
func (m *marketClient) Locate(ctx context.Context, lat, lon float64) (*service.Location, error) {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var out struct {
		Address struct {
			State    string `json:"state"`
			County   string `json:"county"`
			District string `json:"district"`
		} `json:"address"`
	}
	if err := m.do(ctx, http.MethodGet, m.geoURL+"/reverse?"+v.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	loc := &service.Location{State: out.Address.State, District: out.Address.County}
	if loc.District == "" {
		loc.District = out.Address.District
	}
	return loc, nil
}

func (m *marketClient) do(ctx context.Context, method, u string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return &service.UpstreamError{Status: resp.StatusCode, Detail: detailOf(raw, resp.Status)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// detailOf pulls FastAPI's {"detail": "..."} message, falling back to the
// HTTP status text.
func detailOf(raw []byte, status string) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &e) == nil {
		switch d := e.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
	}
	return status
}
