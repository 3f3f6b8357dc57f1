package controller

import "github.com/labstack/echo/v4"

type MarketController interface {
	Prices(c echo.Context) error
	Predict(c echo.Context) error
	Locate(c echo.Context) error
}
