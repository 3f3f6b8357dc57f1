package serviceImp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisentry/pkg/market/service"
)

func priceAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /mandi-prices", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") == "Nowhere" {
			w.Write([]byte(`[]`))
			return
		}
		assert.Equal(t, "Punjab", q.Get("state"))
		assert.Equal(t, "Ludhiana", q.Get("district"))
		assert.Equal(t, "100", q.Get("limit"))
		w.Write([]byte(`[{"id":7,"state":"Punjab","district":"Ludhiana","market":"Khanna","commodity":"Wheat","variety":"Dara","grade":"FAQ","arrival_date":"2024-07-01","min_price":2200,"max_price":2350,"modal_price":2275}]`))
	})
	mux.HandleFunc("POST /predict-price", func(w http.ResponseWriter, r *http.Request) {
		var req service.PredictionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Commodity == "Saffron" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"No pricing data found for commodity 'Saffron' in market 'Khanna'."}`))
			return
		}
		w.Write([]byte(`{"commodity":"Wheat","market":"Khanna","predictions":[{"date":"2024-07-02","predicted_price":2290.5}]}`))
	})
	mux.HandleFunc("GET /reverse", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if r.URL.Query().Get("lat") == "30.9" {
			w.Write([]byte(`{"address":{"state":"Punjab","county":"Ludhiana","district":"Ludhiana East"}}`))
			return
		}
		w.Write([]byte(`{"address":{"state":"Karnataka","district":"Mysuru"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPrices(t *testing.T) {
	srv := priceAPI(t)
	m := NewMarketService(srv.URL+"/", srv.URL)

	got, err := m.Prices(context.Background(), service.PriceQuery{State: "Punjab", District: "Ludhiana"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Khanna", got[0].Market)
	assert.Equal(t, 2275.0, got[0].ModalPrice)
	require.NotNil(t, got[0].ID)
	assert.Equal(t, 7, *got[0].ID)

	got, err = m.Prices(context.Background(), service.PriceQuery{State: "Nowhere", Limit: 5})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPredict(t *testing.T) {
	srv := priceAPI(t)
	m := NewMarketService(srv.URL, srv.URL)

	res, err := m.Predict(context.Background(), service.PredictionRequest{Market: "Khanna", Commodity: "Wheat"})
	require.NoError(t, err)
	require.Len(t, res.Predictions, 1)
	assert.Equal(t, 2290.5, res.Predictions[0].PredictedPrice)

	_, err = m.Predict(context.Background(), service.PredictionRequest{Market: "Khanna", Commodity: "Saffron"})
	var ue *service.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusNotFound, ue.Status)
	assert.Contains(t, ue.Detail, "No pricing data found")
}

func TestLocate(t *testing.T) {
	srv := priceAPI(t)
	m := NewMarketService(srv.URL, srv.URL)

	loc, err := m.Locate(context.Background(), 30.9, 75.85)
	require.NoError(t, err)
	assert.Equal(t, service.Location{State: "Punjab", District: "Ludhiana"}, *loc)

	loc, err = m.Locate(context.Background(), 12.3, 76.6)
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", loc.District)
}

func TestUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewMarketService(srv.URL, srv.URL).Prices(context.Background(), service.PriceQuery{})
	var ue *service.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "500 Internal Server Error", ue.Detail)
}

func TestDetailOf(t *testing.T) {
	assert.Equal(t, "Model not loaded.", detailOf([]byte(`{"detail":"Model not loaded."}`), "500"))
	assert.Equal(t, `[{"msg":"field required"}]`, detailOf([]byte(`{"detail":[{"msg":"field required"}]}`), "422"))
	assert.Equal(t, "502 Bad Gateway", detailOf([]byte(`<html>`), "502 Bad Gateway"))
}
