package analyze

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/integration/llm"
	"github.com/futig/blueprint-backend/internal/pkg/validator"
	"github.com/futig/blueprint-backend/internal/usecase/plan"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// upstream is a fake completion API recording what it receives
type upstream struct {
	server   *httptest.Server
	requests []entity.CompletionRequest
	status   int
	body     string
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	u := &upstream{status: status, body: body}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req entity.CompletionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		u.requests = append(u.requests, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.status)
		io.WriteString(w, u.body)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func newRouter(u *upstream, apiKey string) http.Handler {
	llmCfg := config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: u.server.URL},
		MessagesEndpoint: "/v1/messages",
		APIVersion:       "2023-06-01",
		Model:            "claude-3-5-haiku-20241022",
		MaxTokens:        8192,
	}
	connector := llm.NewConnector(llmCfg, apiKey, zap.NewNop())
	uc := plan.NewUsecase(plan.Config{
		APIKey:    apiKey,
		Model:     llmCfg.Model,
		MaxTokens: llmCfg.MaxTokens,
	}, connector, zap.NewNop())
	v := validator.NewFileValidator(config.FileUploadConfig{MaxImageSize: 1 << 20, MaxUploadSize: 2 << 20})

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, v))
	return r
}

const okBody = `{"type":"message","content":[{"type":"text","text":"### Foundation\n  Pour footings  \n"}]}`

func doJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-house", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doMultipart(t *testing.T, h http.Handler, text string, image []byte, imageType string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	if image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="house.jpg"`)
		if imageType != "" {
			header.Set("Content-Type", imageType)
		}
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-house", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHouse_NeitherImageNorText(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)
	h := newRouter(u, "key")

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"empty multipart":   doMultipart(t, h, "", nil, ""),
		"empty json prompt": doJSON(t, h, `{}`),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Please provide an image, text, or both"}`, rec.Body.String())
		})
	}
	assert.Empty(t, u.requests)
}

func TestAnalyzeHouse_TextOnlySendsSingleTextPart(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)

	rec := doJSON(t, newRouter(u, "key"), `{"prompt":"a garden shed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, u.requests, 1)
	content := u.requests[0].Messages[0].Content
	require.Len(t, content, 1)
	assert.Equal(t, entity.ContentTypeText, content[0].Type)
	assert.True(t, strings.HasPrefix(content[0].Text, "The user wants to build: a garden shed. "))
}

func TestAnalyzeHouse_ImagePartCarriesDeclaredType(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)
	image := []byte("GIF89a fake image bytes")

	rec := doMultipart(t, newRouter(u, "key"), "", image, "image/webp")

	require.Equal(t, http.StatusOK, rec.Code)
	content := u.requests[0].Messages[0].Content
	require.Len(t, content, 2)
	assert.Equal(t, entity.ContentTypeImage, content[0].Type)
	assert.Equal(t, "base64", content[0].Source.Type)
	assert.Equal(t, "image/webp", content[0].Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), content[0].Source.Data)
	assert.Equal(t, entity.ContentTypeText, content[1].Type)
}

func TestAnalyzeHouse_RejectsNonImageUpload(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)

	rec := doMultipart(t, newRouter(u, "key"), "a shed", []byte("hello"), "text/plain")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, u.requests)
}

func TestAnalyzeHouse_MissingCredentialIndependentOfInput(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)
	h := newRouter(u, "")

	recs := []*httptest.ResponseRecorder{
		doJSON(t, h, `{"prompt":"a bridge"}`),
		doJSON(t, h, `{}`),
		doJSON(t, h, `not json`),
		doMultipart(t, h, "", []byte{0xff, 0xd8, 0xff}, "image/jpeg"),
	}
	for _, rec := range recs {
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"API key not configured"}`, rec.Body.String())
	}
	assert.Empty(t, u.requests)
}

func TestAnalyzeHouse_UpstreamFailurePassedThrough(t *testing.T) {
	u := newUpstream(t, 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)

	rec := doJSON(t, newRouter(u, "key"), `{"prompt":"a house"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Overloaded","details":"HTTP 529"}`, rec.Body.String())
	assert.Len(t, u.requests, 1)
}

func TestAnalyzeHouse_ReturnsTextUnchanged(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)

	rec := doJSON(t, newRouter(u, "key"), `{"prompt":"BLUEPRINT REQUEST: draw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp entity.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "### Foundation\n  Pour footings  \n", resp.Steps)
	assert.Equal(t, "BLUEPRINT REQUEST: draw", u.requests[0].Messages[0].Content[0].Text)
}

func TestAnalyzeHouse_MalformedJSON(t *testing.T) {
	u := newUpstream(t, http.StatusOK, okBody)

	rec := doJSON(t, newRouter(u, "key"), `{"prompt":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
