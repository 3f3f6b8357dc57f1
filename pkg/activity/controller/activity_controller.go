package controller

import "github.com/labstack/echo/v4"

type ActivityController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Patch(c echo.Context) error
	Delete(c echo.Context) error
	Export(c echo.Context) error
}
