package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"agrisentry/pkg/market/controller"
	"agrisentry/pkg/market/service"
)

type MarketCtrl struct{ svc service.MarketService }

func New(svc service.MarketService) controller.MarketController { return &MarketCtrl{svc} }

func (h *MarketCtrl) Prices(c echo.Context) error {
	q := service.PriceQuery{State: c.QueryParam("state"), District: c.QueryParam("district")}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be 1-1000"})
		}
		q.Limit = n
	}
	prices, err := h.svc.Prices(c.Request().Context(), q)
	if err != nil {
		return upstreamJSON(c, err)
	}
	return c.JSON(http.StatusOK, prices)
}

func (h *MarketCtrl) Predict(c echo.Context) error {
	var req service.PredictionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if strings.TrimSpace(req.Commodity) == "" || strings.TrimSpace(req.Market) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "commodity and market are required"})
	}
	res, err := h.svc.Predict(c.Request().Context(), req)
	if err != nil {
		return upstreamJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MarketCtrl) Locate(c echo.Context) error {
	lat, err1 := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "lat and lon required"})
	}
	loc, err := h.svc.Locate(c.Request().Context(), lat, lon)
	if err != nil {
		return upstreamJSON(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// upstreamJSON passes the price API's client errors through and reports
// everything else as 502.
func upstreamJSON(c echo.Context, err error) error {
	var ue *service.UpstreamError
	if errors.As(err, &ue) {
		switch ue.Status {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return c.JSON(ue.Status, map[string]string{"error": ue.Detail})
		}
	}
	return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
}
