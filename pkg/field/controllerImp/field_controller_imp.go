package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agrisentry/pkg/field/controller"
	"agrisentry/pkg/field/service"
	"agrisentry/pkg/simulation"
)

type FieldCtrl struct{ svc service.FieldService }

func New(svc service.FieldService) controller.FieldController { return &FieldCtrl{svc} }

func (h *FieldCtrl) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.List())
}

func (h *FieldCtrl) Get(c echo.Context) error {
	v, err := h.svc.Get(c.Param("id"))
	if err != nil {
		var nf *simulation.NotFoundError
		if errors.As(err, &nf) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *FieldCtrl) History(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.History())
}

func (h *FieldCtrl) Clock(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Clock())
}
