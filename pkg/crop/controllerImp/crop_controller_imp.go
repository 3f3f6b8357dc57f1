package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"agrisentry/entities"
	"agrisentry/pkg/crop/controller"
	"agrisentry/pkg/crop/service"
)

type CropCtrl struct{ svc service.CropService }

func New(svc service.CropService) controller.CropController { return &CropCtrl{svc} }

type createReq struct {
	Name         string  `json:"name"`
	CropType     string  `json:"crop_type"`
	FieldArea    float64 `json:"field_area"`
	PlantingDate string  `json:"planting_date"` // YYYY-MM-DD
	GrowthStage  string  `json:"growth_stage"`
	SimFieldID   string  `json:"sim_field_id"`
}

func uidOf(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func (h *CropCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	crop := &entities.Crop{
		UserID:      uidOf(c),
		Name:        req.Name,
		CropType:    req.CropType,
		FieldArea:   req.FieldArea,
		GrowthStage: req.GrowthStage,
		SimFieldID:  req.SimFieldID,
	}
	if req.PlantingDate != "" {
		d, err := time.Parse("2006-01-02", req.PlantingDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "planting_date: use YYYY-MM-DD"})
		}
		crop.PlantingDate = d
	}
	out, err := h.svc.Create(crop)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CropCtrl) List(c echo.Context) error {
	out, err := h.svc.List(uidOf(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	out, err := h.svc.Get(uint(id), uidOf(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.Delete(uint(id), uidOf(c)); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
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
