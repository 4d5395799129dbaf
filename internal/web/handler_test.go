package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/workspace"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

type MockNoteGenerator struct {
	mock.Mock
}

func (m *MockNoteGenerator) Generate(ctx context.Context, transcript string) (*types.SOAPNote, error) {
	args := m.Called(ctx, transcript)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SOAPNote), args.Error(1)
}

// browser keeps the session cookie between requests
type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

// newBrowser returns a browser that has already loaded the page once
func newBrowser(t *testing.T, gen *MockNoteGenerator) (*browser, *workspace.Store) {
	t.Helper()
	b, store := newCookielessBrowser(t, gen)
	require.Equal(t, http.StatusOK, b.get("/").Code)
	return b, store
}

func newCookielessBrowser(t *testing.T, gen *MockNoteGenerator) (*browser, *workspace.Store) {
	t.Helper()
	store := workspace.NewStore(func() *workspace.App { return workspace.New(gen, nil) }, time.Hour, nil)
	r := mux.NewRouter()
	NewHandler(store, logger.Discard()).Register(r)
	return &browser{t: t, handler: r}, store
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			b.cookie = c
		}
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func TestPage_NewSessionShowsExample(t *testing.T) {
	b, store := newCookielessBrowser(t, new(MockNoteGenerator))

	w := b.get("/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Consultation Input")
	assert.Contains(t, w.Body.String(), "S: Subjective")
	require.NotNil(t, b.cookie)
	assert.True(t, b.cookie.HttpOnly)

	b.get("/")
	assert.Equal(t, 1, store.Len())
}

func TestRoutes_RequireSession(t *testing.T) {
	gen := new(MockNoteGenerator)
	b, store := newCookielessBrowser(t, gen)

	for i := 0; i < 5; i++ {
		w := b.post("/transcript", url.Values{"transcript": {"cough"}, "action": {"generate"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}
	assert.Equal(t, http.StatusSeeOther, b.post("/record", nil).Code)
	assert.Equal(t, http.StatusSeeOther, b.get("/view/json").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/copy").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/export.pdf").Code)

	b.cookie = &http.Cookie{Name: CookieName, Value: "forged-session"}
	assert.Equal(t, http.StatusSeeOther, b.post("/transcript", url.Values{"action": {"generate"}}).Code)
	assert.Equal(t, http.StatusNotFound, b.get("/copy").Code)

	assert.Equal(t, 0, store.Len())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPage_UnknownCookieStartsNewSession(t *testing.T) {
	b, store := newCookielessBrowser(t, new(MockNoteGenerator))
	b.cookie = &http.Cookie{Name: CookieName, Value: "expired-session"}

	require.Equal(t, http.StatusOK, b.get("/").Code)

	assert.NotEqual(t, "expired-session", b.cookie.Value)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, http.StatusOK, b.get("/copy").Code)
}

func TestTranscript_Generate(t *testing.T) {
	gen := new(MockNoteGenerator)
	note := types.ExampleNote()
	note.Assessment.PrimaryDiagnosis = "Migraine without aura"
	gen.On("Generate", mock.Anything, "throbbing headache for two days").Return(note, nil)
	b, _ := newBrowser(t, gen)

	w := b.post("/transcript", url.Values{
		"transcript": {"throbbing headache for two days"},
		"action":     {"generate"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	page := b.get("/").Body.String()
	assert.Contains(t, page, "Migraine without aura")
	assert.Contains(t, page, "throbbing headache for two days")
	gen.AssertExpectations(t)
}

func TestTranscript_GenerateBlank(t *testing.T) {
	gen := new(MockNoteGenerator)
	b, _ := newBrowser(t, gen)

	b.post("/transcript", url.Values{"transcript": {"   "}, "action": {"generate"}})

	page := b.get("/").Body.String()
	assert.Contains(t, page, "Please enter a transcript or record a conversation.")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestTranscript_GenerateFailure(t *testing.T) {
	gen := new(MockNoteGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, types.NewNetworkError(assert.AnError))
	b, _ := newBrowser(t, gen)

	b.post("/transcript", url.Values{"transcript": {"cough"}, "action": {"generate"}})

	page := b.get("/").Body.String()
	assert.Contains(t, page, "Failed to generate SOAP note. Please check your connection and try again.")
	assert.NotContains(t, page, assert.AnError.Error())
}

func TestTranscript_ClearAndExample(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	b.post("/transcript", url.Values{"action": {"clear"}})
	page := b.get("/").Body.String()
	assert.Contains(t, page, "No SOAP note generated yet.")

	b.post("/transcript", url.Values{"action": {"example"}})
	page = b.get("/").Body.String()
	assert.Contains(t, page, "J06.9")
}

func TestTranscript_UnknownAction(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	w := b.post("/transcript", url.Values{"action": {"delete"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecord_UnsupportedShowsNotice(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	w := b.post("/record", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	page := b.get("/").Body.String()
	assert.Contains(t, page, types.MsgSpeechUnsupported)
}

func TestViewToggle(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	w := b.get("/view/json")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, b.get("/").Body.String(), `<pre class="raw-json">`)

	b.get("/view/formatted")
	assert.NotContains(t, b.get("/").Body.String(), `<pre class="raw-json">`)

	assert.Equal(t, http.StatusNotFound, b.get("/view/xml").Code)
}

func TestCopy(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	w := b.get("/copy")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	raw, err := render.RawJSON(types.ExampleNote())
	require.NoError(t, err)
	assert.Equal(t, raw, w.Body.String())

	b.post("/transcript", url.Values{"action": {"clear"}})
	assert.Equal(t, http.StatusNotFound, b.get("/copy").Code)
}

func TestExportPDF(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	w := b.get("/export.pdf")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="soap-note.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestAssets(t *testing.T) {
	b, _ := newBrowser(t, new(MockNoteGenerator))

	css := b.get("/assets/app.css")
	assert.Equal(t, http.StatusOK, css.Code)
	assert.Equal(t, "text/css; charset=utf-8", css.Header().Get("Content-Type"))

	js := b.get("/assets/app.js")
	assert.Equal(t, http.StatusOK, js.Code)
	assert.Contains(t, js.Body.String(), "navigator.clipboard")
}

func TestErrorBoundary(t *testing.T) {
	h := NewHandler(nil, logger.Discard())
	handler := h.errorBoundary(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("assignment to entry in nil map")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Application Error")
	assert.Contains(t, w.Body.String(), "assignment to entry in nil map")
}
