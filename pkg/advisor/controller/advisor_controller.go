package controller

import "github.com/labstack/echo/v4"

type AdvisorController interface {
	Chat(c echo.Context) error
	Session(c echo.Context) error
	Diagnose(c echo.Context) error
}
