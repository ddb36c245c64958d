package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type projectView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Technologies []string `json:"technologies"`
	DemoURL      string   `json:"demo_url"`
}

func TestProjects_RequireProfile(t *testing.T) {
	s := newTestServer(t)
	sess := s.register(t, "Ana", "ana@x.io")
	status, _ := s.do(t, http.MethodDelete, "/api/v1/developer/profile", sess.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/projects", sess.Token, map[string]any{
		"name": "Shop", "description": "d",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, 0, s.store.ProjectCount())
}

func TestProjects_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	sess := s.register(t, "Ana", "ana@x.io")

	status, res := s.do(t, http.MethodPost, "/api/v1/projects", sess.Token, map[string]any{
		"name":         "Shop",
		"description":  "Online shop",
		"technologies": []string{"a", "b"},
		"demo":         "https://shop.example.com",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	id := decode[struct {
		ProjectID string `json:"project_id"`
	}](t, res.Data).ProjectID
	require.NotEmpty(t, id)

	status, res = s.do(t, http.MethodGet, "/api/v1/projects/my-projects", sess.Token, nil)
	require.Equal(t, http.StatusOK, status)
	mine := decode[[]projectView](t, res.Data)
	require.Len(t, mine, 1)
	require.Equal(t, []string{"a", "b"}, mine[0].Technologies)
	require.Equal(t, "https://shop.example.com", mine[0].DemoURL)

	status, _ = s.do(t, http.MethodPut, "/api/v1/projects/"+id, sess.Token, map[string]any{"name": "", "description": "d"})
	require.Equal(t, http.StatusBadRequest, status)

	status, res = s.do(t, http.MethodPut, "/api/v1/projects/"+id, sess.Token, map[string]any{
		"name": "Shop v2", "description": "d", "technologies": []string{"Go"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Shop v2", decode[projectView](t, res.Data).Name)

	_, res = s.do(t, http.MethodGet, "/api/v1/developer/"+sess.User.ID, "", nil)
	dev := decode[developerView](t, res.Data)
	require.Len(t, dev.Projects, 1)
	require.Equal(t, []string{"Go"}, dev.Projects[0].Technologies)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/projects/"+id, sess.Token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/projects/"+id, sess.Token, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/projects/not-a-uuid", sess.Token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestProjects_OtherUsersAreNotFound(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "Ana", "ana@x.io")
	budi := s.register(t, "Budi", "budi@x.io")

	_, res := s.do(t, http.MethodPost, "/api/v1/projects", ana.Token, map[string]any{"name": "p", "description": "d"})
	id := decode[struct {
		ProjectID string `json:"project_id"`
	}](t, res.Data).ProjectID

	status, _ := s.do(t, http.MethodPut, "/api/v1/projects/"+id, budi.Token, map[string]any{"name": "x", "description": "y"})
	require.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/projects/"+id, budi.Token, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, 1, s.store.ProjectCount())
}
