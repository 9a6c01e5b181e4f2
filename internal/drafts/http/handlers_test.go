package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamspace-builders/site-backend/internal/drafts"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) Generate(context.Context, drafts.Input) (string, error) {
	g.calls++
	return g.text, g.err
}

func setup(gen drafts.Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(drafts.NewService(gen)).Register(r.Group("/api/v1/admin/drafts"))
	return r
}

func form(t *testing.T, notes string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("constructionData", notes))
	if image != nil {
		fw, err := mw.CreateFormFile("image", "site.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(r http.Handler, body *bytes.Buffer, ct string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/drafts", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestGenerateDraft(t *testing.T) {
	gen := &stubGenerator{text: "A modern steel tower."}
	body, ct := form(t, "steel frame, glass facade", png)

	w := post(setup(gen), body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true,"description":"A modern steel tower."}`, w.Body.String())
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateDraft_MissingImage(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	body, ct := form(t, "steel frame, glass facade", nil)

	w := post(setup(gen), body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload an image of the project.")
	assert.Zero(t, gen.calls)
}

func TestGenerateDraft_UpstreamErrorVerbatim(t *testing.T) {
	gen := &stubGenerator{err: &drafts.UpstreamError{Status: 500, Message: "internal model error"}}
	body, ct := form(t, "steel frame, glass facade", png)

	w := post(setup(gen), body, ct)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"internal model error"}`, w.Body.String())
}
