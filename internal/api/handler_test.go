package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RichardoC/humaniza/internal/db"
	"github.com/RichardoC/humaniza/internal/history"
	"github.com/RichardoC/humaniza/internal/llm"
	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/remote"
)

type fakeGenerator struct {
	err      error
	calls    []string
	lastMode models.Mode
	lastMIME string
}

func (f *fakeGenerator) Humanize(_ context.Context, text string, mode models.Mode) (*models.Generation, error) {
	f.calls = append(f.calls, "humanize")
	f.lastMode = mode
	if f.err != nil {
		return nil, f.err
	}
	return &models.Generation{Text: "humanizado: " + text}, nil
}

func (f *fakeGenerator) Search(_ context.Context, query string) (*models.Generation, error) {
	f.calls = append(f.calls, "search")
	if f.err != nil {
		return nil, f.err
	}
	return &models.Generation{
		Text:    "resposta: " + query,
		Sources: []models.Source{{URI: "https://example.org", Title: "Exemplo"}},
	}, nil
}

func (f *fakeGenerator) Detect(_ context.Context, text string) (*models.Detection, error) {
	f.calls = append(f.calls, "detect")
	if f.err != nil {
		return nil, f.err
	}
	return &models.Detection{Score: 75, Label: models.LabelAI, Reasoning: "padrão"}, nil
}

func (f *fakeGenerator) ExtractText(_ context.Context, image []byte, mimeType string) (string, error) {
	f.calls = append(f.calls, "ocr")
	f.lastMIME = mimeType
	if f.err != nil {
		return "", f.err
	}
	return "texto da imagem", nil
}

type fakeAuth struct {
	users   map[string]models.User
	err     error
	userErr error
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &models.Session{AccessToken: "tok-" + email, User: models.User{ID: "u-" + email, Email: email}}, nil
}

func (a *fakeAuth) SignUp(_ context.Context, email, password, name string) (*models.Session, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &models.Session{User: models.User{ID: "new", Email: email, Name: name}}, nil
}

func (a *fakeAuth) User(_ context.Context, token string) (*models.User, error) {
	if a.userErr != nil {
		return nil, a.userErr
	}
	u, ok := a.users[token]
	if !ok {
		return nil, &remote.APIError{Status: http.StatusUnauthorized, Message: "invalid JWT"}
	}
	return &u, nil
}

func (a *fakeAuth) AuthorizeURL(provider, redirectTo string) string {
	return "https://auth.example/authorize?provider=" + provider + "&redirect_to=" + redirectTo
}

type testServer struct {
	handler http.Handler
	gen     *fakeGenerator
	local   *db.Database
	logs    *observer.ObservedLogs
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	local, err := db.New(db.DriverPureGo, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	gen := &fakeGenerator{}
	h := NewHandler(history.New(local, logger), gen, logger, opts...)
	h.now = func() time.Time { return time.UnixMilli(1760434200000) }
	return &testServer{handler: h.Routes(), gen: gen, local: local, logs: logs}
}

func (s *testServer) do(t *testing.T, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func owner(id string) http.Header {
	return http.Header{OwnerHeader: {id}}
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) ([]byte, http.Header) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), http.Header{"Content-Type": {mw.FormDataContentType()}}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 4))))
	return buf.Bytes()
}

func TestGetModes(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/modes", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var modes []models.ModeInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&modes))
	assert.Equal(t, models.Modes, modes)

	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPost, "/api/modes", nil, nil).Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/modes", nil, nil)
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := s.logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])

	given := uuid.NewString()
	rec = s.do(t, http.MethodGet, "/api/modes", nil, http.Header{RequestIDHeader: {given}})
	assert.Equal(t, given, rec.Header().Get(RequestIDHeader))
}

func TestHumanize_SavesForOwner(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto", Mode: "academic"}, owner("u1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp HumanizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "humanizado: texto", resp.Text)
	assert.NotNil(t, resp.Sources)
	require.NotNil(t, resp.Record)
	assert.NotZero(t, resp.Record.LocalID)
	assert.Equal(t, models.ModeAcademic, resp.Record.Mode)
	assert.Equal(t, models.ModeAcademic, s.gen.lastMode)

	n, err := s.local.CountRecords(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHumanize_AnonymousNotSaved(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HumanizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Record)
	assert.Equal(t, models.DefaultMode, s.gen.lastMode)
}

func TestHumanize_SearchModeNotSaved(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "quem?", Mode: "SEARCH"}, owner("u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HumanizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "resposta: quem?", resp.Text)
	assert.Len(t, resp.Sources, 1)
	assert.Nil(t, resp.Record)
	assert.Equal(t, []string{"search"}, s.gen.calls)

	n, err := s.local.CountRecords(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHumanize_BadInput(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "  "}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "x", Mode: "POETRY"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/humanize", []byte("{"), nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodGet, "/api/humanize", nil, nil).Code)
	assert.Empty(t, s.gen.calls)
}

func TestHumanize_GenerationFailure(t *testing.T) {
	s := newTestServer(t)
	s.gen.err = errors.New("quota exceeded")
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, owner("u1"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), msgGenerationFailed)
	assert.Equal(t, 1, s.logs.FilterMessage("Failed to generate text").Len())

	n, err := s.local.CountRecords(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is saved when generation fails")
}

func TestHumanize_EmptyInputFromBackend(t *testing.T) {
	s := newTestServer(t)
	s.gen.err = llm.ErrEmptyInput
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHumanize_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, WithMaxUpload(16))
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: strings.Repeat("a", 64)}, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDetect(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/detect", TextRequest{Text: "algum texto"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.Detection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, models.Detection{Score: 75, Label: models.LabelAI, Reasoning: "padrão"}, d)

	s.gen.err = errors.New("boom")
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/api/detect", TextRequest{Text: "x"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/detect", TextRequest{}, nil).Code)
}

func TestExtractImage_Multipart(t *testing.T) {
	s := newTestServer(t)
	body, hdr := multipartBody(t, "foto.png", "application/octet-stream", pngBytes(t))
	rec := s.do(t, http.MethodPost, "/api/extract/image", body, hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TextResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "texto da imagem", resp.Text)
	assert.Equal(t, "image/png", s.gen.lastMIME, "sniffed when the part type is not an image")
}

func TestExtractImage_DataURL(t *testing.T) {
	s := newTestServer(t)
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	rec := s.do(t, http.MethodPost, "/api/extract/image", imageRequest{DataURL: url}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", s.gen.lastMIME)

	rec = s.do(t, http.MethodPost, "/api/extract/image", imageRequest{DataURL: "data:text/plain;base64,eA=="}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseDataURL(t *testing.T) {
	data, mimeType, err := parseDataURL("data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
	assert.Equal(t, "image/png", mimeType)

	for _, bad := range []string{"", "image/png;base64,aGk=", "data:image/png,aGk=", "data:image/png;base64", "data:image/png;base64,!!"} {
		_, _, err := parseDataURL(bad)
		assert.ErrorIs(t, err, errBadDataURL, bad)
	}
}

func TestExtractDocument(t *testing.T) {
	s := newTestServer(t)
	body, hdr := multipartBody(t, "notas.txt", "text/plain", []byte("linha um\nlinha dois\n"))
	rec := s.do(t, http.MethodPost, "/api/extract/document", body, hdr)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TextResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "linha um\nlinha dois", resp.Text)

	body, hdr = multipartBody(t, "planilha.xlsx", "application/octet-stream", []byte("x"))
	assert.Equal(t, http.StatusUnsupportedMediaType, s.do(t, http.MethodPost, "/api/extract/document", body, hdr).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/extract/document", []byte("{}"), nil).Code)
}

func TestConvertPDF(t *testing.T) {
	s := newTestServer(t)
	body, hdr := multipartBody(t, "foto.png", "image/png", pngBytes(t))
	rec := s.do(t, http.MethodPost, "/api/convert/pdf", body, hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="humaniza-documento-1760434200000.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	body, hdr = multipartBody(t, "nota.txt", "text/plain", []byte("not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, s.do(t, http.MethodPost, "/api/convert/pdf", body, hdr).Code)
}

func TestHistory_RequiresOwner(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/history", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/api/history", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/api/history/item?id=1", nil, nil).Code)
}

func TestHistory_ListDeleteClear(t *testing.T) {
	s := newTestServer(t)
	for _, text := range []string{"um", "dois", "três"} {
		rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: text, Mode: "SIMPLE"}, owner("u1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "outro"}, owner("u2"))

	list := func(id string) []models.HistoryRecord {
		rec := s.do(t, http.MethodGet, "/api/history", nil, owner(id))
		require.Equal(t, http.StatusOK, rec.Code)
		var records []models.HistoryRecord
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
		return records
	}

	records := list("u1")
	require.Len(t, records, 3)
	assert.Equal(t, "três", records[0].SourceText)

	rec := s.do(t, http.MethodDelete, "/api/history/item?id="+itoa(records[0].LocalID), nil, owner("u1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, list("u1"), 2)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/history/item", nil, owner("u1")).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/history/item?id=abc", nil, owner("u1")).Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/history", nil, owner("u1")).Code)
	assert.Empty(t, list("u1"))
	assert.Len(t, list("u2"), 1)
}

func TestHistory_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/history", nil, owner("nobody"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func authServer(t *testing.T) *testServer {
	return newTestServer(t, WithAuth(&fakeAuth{users: map[string]models.User{
		"good-token": {ID: "user-1", Email: "ana@example.org"},
	}}))
}

func bearer(tok string) http.Header {
	return http.Header{"Authorization": {"Bearer " + tok}}
}

func TestAuth_BearerOwner(t *testing.T) {
	s := authServer(t)
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, bearer("good-token"))
	require.Equal(t, http.StatusOK, rec.Code)

	n, err := s.local.CountRecords(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The owner header is ignored once auth is configured.
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/history", nil, owner("user-1")).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/history", nil, bearer("good-token")).Code)
}

func TestAuth_InvalidTokenRejected(t *testing.T) {
	s := authServer(t)
	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, bearer("expired"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, s.gen.calls)
}

func TestAuth_DeleteOtherOwnersItem(t *testing.T) {
	s := newTestServer(t, WithAuth(&fakeAuth{users: map[string]models.User{
		"tok-a": {ID: "alice"},
		"tok-b": {ID: "bob"},
	}}))

	rec := s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto do bob"}, bearer("tok-b"))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HumanizeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Record)

	rec = s.do(t, http.MethodDelete, "/api/history/item?id="+itoa(resp.Record.LocalID), nil, bearer("tok-a"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	n, err := s.local.CountRecords(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "another owner's record survives")

	rec = s.do(t, http.MethodDelete, "/api/history/item?id="+itoa(resp.Record.LocalID), nil, bearer("tok-b"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	n, err = s.local.CountRecords(context.Background(), "bob")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAuth_ServiceOutageIsNotAnExpiredSession(t *testing.T) {
	s := newTestServer(t, WithAuth(&fakeAuth{userErr: &remote.APIError{Status: http.StatusServiceUnavailable, Message: "upstream down"}}))
	rec := s.do(t, http.MethodGet, "/api/history", nil, bearer("any"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), msgInvalidSession)

	s = newTestServer(t, WithAuth(&fakeAuth{userErr: errors.New("dial tcp: connection refused")}))
	rec = s.do(t, http.MethodPost, "/api/humanize", HumanizeRequest{Text: "texto"}, bearer("any"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, s.gen.calls)
	assert.Equal(t, 1, s.logs.FilterMessage("Failed to verify bearer token").Len())
}

func TestAuth_SignInSignUpSession(t *testing.T) {
	s := authServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signin", CredentialsRequest{Email: "ana@example.org", Password: "pw"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, "tok-ana@example.org", session.AccessToken)

	rec = s.do(t, http.MethodPost, "/api/auth/signup", CredentialsRequest{Email: "bia@example.org", Password: "pw", Name: "Bia"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/auth/signin", CredentialsRequest{Email: "x"}, nil).Code)

	rec = s.do(t, http.MethodGet, "/api/auth/session", nil, bearer("good-token"))
	require.Equal(t, http.StatusOK, rec.Code)
	var sr SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sr))
	assert.Equal(t, "user-1", sr.User.ID)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/session", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/session", nil, bearer("bad")).Code)
}

func TestAuth_ProviderErrors(t *testing.T) {
	s := newTestServer(t, WithAuth(&fakeAuth{err: &remote.APIError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}}))
	rec := s.do(t, http.MethodPost, "/api/auth/signin", CredentialsRequest{Email: "a@b.c", Password: "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid login credentials")

	s = newTestServer(t, WithAuth(&fakeAuth{err: errors.New("dial tcp: refused")}))
	rec = s.do(t, http.MethodPost, "/api/auth/signin", CredentialsRequest{Email: "a@b.c", Password: "x"}, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAuth_OAuthRedirect(t *testing.T) {
	s := authServer(t)
	rec := s.do(t, http.MethodGet, "/api/auth/oauth?redirect_to=http://localhost:3000", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://auth.example/authorize?provider=google&redirect_to=http://localhost:3000", rec.Header().Get("Location"))
}

func TestAuth_NotConfigured(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, "/api/auth/signin", CredentialsRequest{Email: "a", Password: "b"}, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/api/auth/oauth", nil, nil).Code)
}
