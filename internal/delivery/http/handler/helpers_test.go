package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devhub/internal/delivery/http/handler"
	"devhub/internal/delivery/http/middleware"
	"devhub/internal/delivery/http/routes"
	"devhub/internal/infrastructure/storage/local"
	"devhub/internal/pkg/jwt"
	"devhub/internal/repository/memrepo"
	ucauth "devhub/internal/usecase/auth"
	ucprofile "devhub/internal/usecase/profile"
	ucproject "devhub/internal/usecase/project"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app      *fiber.App
	store    *memrepo.Store
	pictures *local.Storage
	tokens   jwt.Service
}

// discardNow deletes files synchronously.
type discardNow struct{ store *local.Storage }

func (d discardNow) Discard(name string) { _ = d.store.Delete(context.Background(), name) }

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memrepo.New()
	tokens := jwt.NewHMACService("test-secret", time.Hour, "devhub-test")
	pics, err := local.New(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	profiles := ucprofile.NewService(ucprofile.Deps{
		Profiles:  store.Profiles(),
		Projects:  store.Projects(),
		Pictures:  pics,
		Discarder: discardNow{store: pics},
	}, ucprofile.PictureLimits{})
	projects := ucproject.NewService(store.Projects(), nil, nil, nil)
	auth := ucauth.NewService(store.Users(), tokens, profiles, nil)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	(&routes.Registry{
		Health:      handler.NewHealthHandler(pingOK{}, pingOK{}),
		Auth:        handler.NewAuthHandler(auth),
		Profile:     handler.NewProfileHandler(profiles),
		Project:     handler.NewProjectHandler(projects),
		Picture:     handler.NewPictureHandler(profiles),
		RequireAuth: middleware.NewAuthMiddleware(tokens).Middleware(),
		AuthLimit:   middleware.NewRateLimiter(0, 0).Middleware(),
	}).Register(app)

	return &testServer{app: app, store: store, pictures: pics, tokens: tokens}
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, semanticResponse) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, semanticResponse) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	var out semanticResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *testServer) register(t *testing.T, name, email string) session {
	t.Helper()

	status, res := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)

	var sess session
	require.NoError(t, json.Unmarshal(res.Data, &sess))
	return sess
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func multipartPicture(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, "\x89PNG\r\n\x1a\n")
	return b
}
