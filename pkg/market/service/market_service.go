package service

import (
	"context"
	"fmt"
)

type MandiPrice struct {
	ID          *int    `json:"id,omitempty"`
	State       string  `json:"state"`
	District    string  `json:"district"`
	Market      string  `json:"market"`
	Commodity   string  `json:"commodity"`
	Variety     string  `json:"variety"`
	Grade       string  `json:"grade"`
	ArrivalDate string  `json:"arrival_date"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	ModalPrice  float64 `json:"modal_price"`
}

type PriceQuery struct {
	State    string
	District string
	Limit    int // 0 means 100
}

type PredictionRequest struct {
	State     string `json:"state"`
	District  string `json:"district"`
	Market    string `json:"market"`
	Commodity string `json:"commodity"`
	Variety   string `json:"variety"`
	Grade     string `json:"grade,omitempty"`
	SoilType  string `json:"soilType,omitempty"`
}

type PredictionResult struct {
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
}

type PredictionResponse struct {
	Commodity   string             `json:"commodity"`
	Market      string             `json:"market"`
	Predictions []PredictionResult `json:"predictions"`
}

type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
}

// UpstreamError is a non-2xx answer from the price API or geocoder.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Detail)
}

type MarketService interface {
	Prices(ctx context.Context, q PriceQuery) ([]MandiPrice, error)
	Predict(ctx context.Context, req PredictionRequest) (*PredictionResponse, error)
	Locate(ctx context.Context, lat, lon float64) (*Location, error)
}
