package controllerImp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrisentry/database"
	"agrisentry/entities"
	"agrisentry/pkg/advisor/repositoryImp"
	"agrisentry/pkg/advisor/service"
	"agrisentry/pkg/advisor/serviceImp"
	"agrisentry/pkg/ai"
	"agrisentry/pkg/simulation"
)

type oneField struct{}

func (oneField) Snapshot() simulation.Snapshot {
	return simulation.Snapshot{Fields: map[string]simulation.FieldState{"corn-b": {FieldID: "corn-b", SoilMoisture: 45}}}
}
func (oneField) FieldIDs() []string     { return []string{"corn-b"} }
func (oneField) ReferenceField() string { return "corn-b" }

type failingAI struct{}

func (failingAI) Name() string { return "failing" }
func (failingAI) Chat(context.Context, string, []ai.Message) (string, error) {
	return "", errors.New("upstream 429")
}
func (failingAI) Diagnose(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("upstream 429")
}

func newServer(t *testing.T, client ai.Client) *echo.Echo {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	h := New(serviceImp.NewAdvisorService(serviceImp.Deps{
		Engine: oneField{},
		AI:     client,
		Chats:  repositoryImp.New(db),
	}))

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("uid", "u1")
			return next(c)
		}
	})
	e.POST("/advisor/chat", h.Chat)
	e.GET("/advisor/sessions/:id", h.Session)
	e.POST("/advisor/diagnose", h.Diagnose)
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(e *echo.Echo, field string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile(field, "leaf.jpg")
	fw.Write(data)
	mw.WriteField("note", "brown patches")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/advisor/diagnose", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatAndSession(t *testing.T) {
	e := newServer(t, ai.NewMock())

	rec := postJSON(e, "/advisor/chat", `{"messages":[{"role":"user","content":"do I need to water?"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply service.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Contains(t, reply.Message, "**Advice (mock)**")
	assert.Contains(t, reply.Message, "Irrigate fields marked IMMEDIATE")

	req := httptest.NewRequest(http.MethodGet, "/advisor/sessions/"+reply.SessionID, nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []entities.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "do I need to water?", msgs[0].Content)

	req = httptest.NewRequest(http.MethodGet, "/advisor/sessions/missing", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(e, "/advisor/chat", `{"messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatUpstreamError(t *testing.T) {
	e := newServer(t, failingAI{})
	rec := postJSON(e, "/advisor/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream 429")

	rec = upload(e, "image", []byte{0xFF, 0xD8, 0xFF, 0xE0})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDiagnoseUpload(t *testing.T) {
	e := newServer(t, ai.NewMock())

	rec := upload(e, "image", []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "image/jpeg image of 7 bytes")

	rec = upload(e, "photo", []byte{1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(e, "image", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
