package controller

import "github.com/labstack/echo/v4"

type FieldController interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	History(c echo.Context) error
	Clock(c echo.Context) error
}
