package controllerImp

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"agrisentry/entities"
	"agrisentry/pkg/activity/controller"
	"agrisentry/pkg/activity/repository"
	"agrisentry/pkg/activity/service"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ActivityCtrl struct{ svc service.ActivityService }

func New(svc service.ActivityService) controller.ActivityController { return &ActivityCtrl{svc} }

type activityReq struct {
	FieldID        string   `json:"field_id"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	QuantityValue  *float64 `json:"quantity_value"`
	QuantityUnit   string   `json:"quantity_unit"`
	ActivityDate   string   `json:"activity_date"` // YYYY-MM-DD or RFC3339
	FeedbackRating *int     `json:"feedback_rating"`
}

type patchReq struct {
	service.ActivityPatch
	ActivityDate *string `json:"activity_date"`
}

func uidOf(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *ActivityCtrl) Create(c echo.Context) error {
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	a := &entities.Activity{
		UserID:         uidOf(c),
		FieldID:        req.FieldID,
		Type:           req.Type,
		Description:    req.Description,
		QuantityValue:  req.QuantityValue,
		QuantityUnit:   req.QuantityUnit,
		FeedbackRating: req.FeedbackRating,
	}
	if req.ActivityDate != "" {
		d, err := parseDate(req.ActivityDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "activity_date: use YYYY-MM-DD"})
		}
		a.ActivityDate = d
	}
	out, err := h.svc.Create(a)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func filterOf(c echo.Context) (repository.Filter, error) {
	var f repository.Filter
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	f.Type = strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	return f, nil
}

func (h *ActivityCtrl) List(c echo.Context) error {
	f, err := filterOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from/to: use YYYY-MM-DD"})
	}
	out, err := h.svc.List(uidOf(c), f)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActivityCtrl) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req patchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	p := req.ActivityPatch
	if req.ActivityDate != nil {
		d, err := parseDate(*req.ActivityDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "activity_date: use YYYY-MM-DD"})
		}
		p.ActivityDate = &d
	}
	out, err := h.svc.UpdatePartial(uint(id), uidOf(c), p)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActivityCtrl) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.Delete(uint(id), uidOf(c)); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ActivityCtrl) Export(c echo.Context) error {
	f, err := filterOf(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from/to: use YYYY-MM-DD"})
	}
	var buf bytes.Buffer
	if err := h.svc.ExportXLSX(uidOf(c), f, &buf); err != nil {
		return errorJSON(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="activities.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func errorJSON(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
