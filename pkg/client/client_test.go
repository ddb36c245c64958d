package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "message": message, "data": data})
}

const pngData = "\x89PNG\r\n\x1a\nDATA"

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "taken@x.io" {
			writeEnvelope(w, http.StatusConflict, "Email already registered", nil)
			return
		}
		writeEnvelope(w, http.StatusCreated, "User registered", map[string]any{
			"token": "tok-1",
			"user":  map[string]string{"id": "u-1", "name": body["name"], "email": body["email"]},
		})
	})
	mux.HandleFunc("GET /api/v1/developers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "go", r.URL.Query().Get("skill"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		writeEnvelope(w, http.StatusOK, "ok", []map[string]any{{"id": "p-1", "name": "Ana", "skills": []string{"Go"}}})
	})
	mux.HandleFunc("PUT /api/v1/developer/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Profile saved", map[string]any{"developer_id": "p-1", "created": false})
	})
	mux.HandleFunc("DELETE /api/v1/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "Project not found", nil)
	})
	mux.HandleFunc("POST /api/v1/upload-profile-picture", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "u-1", r.FormValue("userId"))
		f, fh, err := r.FormFile("profilePicture")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		require.Equal(t, pngData, string(b))
		require.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{
			"profile_picture":     "profile-1.png",
			"profile_picture_url": "http://x/uploads/profiles/profile-1.png",
			"developer_id":        "p-1",
			"original":            fh.Filename,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RegisterPersistsSession(t *testing.T) {
	srv := newFakeServer(t)
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session.json"))

	c, err := New(srv.URL, WithSessionStore(store))
	require.NoError(t, err)
	require.False(t, c.Session().Valid())

	sess, err := c.Register(context.Background(), "Ana", "ana@x.io", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
	require.Equal(t, "u-1", sess.User.ID)

	// a new client picks the session up from disk
	again, err := New(srv.URL, WithSessionStore(store))
	require.NoError(t, err)
	require.Equal(t, sess.Token, again.Session().Token)

	require.NoError(t, again.Logout())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestClient_APIErrors(t *testing.T) {
	srv := newFakeServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Register(context.Background(), "Ana", "taken@x.io", "secret")
	require.Equal(t, http.StatusConflict, StatusCode(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Email already registered", apiErr.Message)

	_, err = c.SaveProfile(context.Background(), ProfileInput{Name: "Ana"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_AuthenticatedCalls(t *testing.T) {
	srv := newFakeServer(t)
	store := &MemorySessionStore{}
	require.NoError(t, store.Save(Session{Token: "tok-1", User: User{ID: "u-1"}}))

	c, err := New(srv.URL, WithSessionStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := c.SaveProfile(ctx, ProfileInput{Name: "Ana", Skills: []string{"Go"}})
	require.NoError(t, err)
	require.Equal(t, "p-1", res.DeveloperID)
	require.False(t, res.Created)

	devs, err := c.Developers(ctx, ListOptions{Skill: "go", Limit: 5})
	require.NoError(t, err)
	require.Len(t, devs, 1)
	require.Equal(t, []string{"Go"}, devs[0].Skills)

	err = c.DeleteProject(ctx, "missing")
	require.Equal(t, http.StatusNotFound, StatusCode(err))

	pic, err := c.UploadPicture(ctx, "me.png", strings.NewReader(pngData))
	require.NoError(t, err)
	require.Equal(t, "profile-1.png", pic.ProfilePicture)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)
}

func TestClient_Subscribe(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ws/events", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"profile.updated","user_id":"u-1","timestamp":"2026-01-01T00:00:00Z"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"project.deleted","user_id":"u-1","project_id":"p-9"}`))
		// hold the connection until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := c.Subscribe(ctx)
	require.NoError(t, err)

	first := <-events
	require.Equal(t, EventProfileUpdated, first.Type)
	require.Equal(t, "u-1", first.UserID)

	second := <-events
	require.Equal(t, EventProjectDeleted, second.Type)
	require.Equal(t, "p-9", second.ProjectID)

	cancel()
	for range events {
	}
}
