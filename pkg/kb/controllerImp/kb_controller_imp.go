package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"agrisentry/pkg/kb/controller"
	"agrisentry/pkg/kb/fetcher"
	"agrisentry/pkg/kb/service"
)

type KBCtrl struct {
	s     service.KBService
	fetch *fetcher.Fetcher
}

func New(s service.KBService, f *fetcher.Fetcher) controller.KBController {
	return &KBCtrl{s: s, fetch: f}
}

type ingestReq struct {
	Title     string `json:"title"`
	Tags      string `json:"tags"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

func (h *KBCtrl) IngestText(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
	}
	doc, n, err := h.s.UpsertDocument(c.Request().Context(), service.DocumentInput{
		Title: req.Title, Tags: req.Tags, Text: req.Text, SourceURL: req.SourceURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrTextRequired) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) IngestURL(c echo.Context) error {
	var body struct {
		URL   string `json:"url"`
		Tags  string `json:"tags"`
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url required"})
	}
	if _, err := h.fetch.Allowed(body.URL); err != nil {
		if errors.Is(err, fetcher.ErrDomainNotAllowed) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	page, err := h.fetch.Fetch(c.Request().Context(), body.URL)
	if errors.Is(err, fetcher.ErrDomainNotAllowed) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "redirected off the allowed domains"})
	}
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	title := page.Title
	if body.Title != "" {
		title = body.Title
	}

	doc, n, err := h.s.UpsertDocument(c.Request().Context(), service.DocumentInput{
		Title: title, Tags: body.Tags, Text: page.Text, SourceURL: body.URL,
	})
	if err != nil {
		if errors.Is(err, service.ErrTextRequired) || errors.Is(err, service.ErrTitleRequired) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "page has no readable text"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q required"})
	}
	k := 6
	if v, err := strconv.Atoi(c.QueryParam("k")); err == nil && v > 0 && v <= 50 {
		k = v
	}
	hits, err := h.s.Search(c.Request().Context(), q, k)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if hits == nil {
		hits = []service.Hit{}
	}
	return c.JSON(http.StatusOK, hits)
}

func (h *KBCtrl) ListDocs(c echo.Context) error {
	docs, err := h.s.ListDocs()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, docs)
}
