package controllerImp

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"agrisentry/pkg/advisor/controller"
	"agrisentry/pkg/advisor/service"
	"agrisentry/pkg/ai"
)

type AdvisorCtrl struct{ svc service.AdvisorService }

func New(svc service.AdvisorService) controller.AdvisorController { return &AdvisorCtrl{svc} }

func uidOf(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

type chatReq struct {
	SessionID string       `json:"session_id"`
	Messages  []ai.Message `json:"messages"`
}

func (h *AdvisorCtrl) Chat(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	reply, err := h.svc.Chat(c.Request().Context(), uidOf(c), req.SessionID, req.Messages)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *AdvisorCtrl) Session(c echo.Context) error {
	msgs, err := h.svc.Transcript(uidOf(c), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	if len(msgs) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, msgs)
}

// Diagnose takes a multipart upload in field "image" and an optional "note".
func (h *AdvisorCtrl) Diagnose(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "image file required"})
	}
	if fh.Size > service.MaxImageBytes {
		return errorJSON(c, service.ErrImageTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	out, err := h.svc.Diagnose(c.Request().Context(), data, fh.Header.Get("Content-Type"), c.FormValue("note"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"diagnosis": out})
}

func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyConversation),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrEmptyImage):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrImageTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
