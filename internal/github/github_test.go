package github

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devlink/internal/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListRepos(t *testing.T) {
	var gotPath, gotQuery, gotAgent, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 1, "name": "first", "html_url": "https://github.com/octo/first", "stargazers_count": 3, "created_at": "2015-01-01T00:00:00Z"},
			{"id": 2, "name": "second", "description": "more", "forks_count": 1, "created_at": "2016-01-01T00:00:00Z"}
		]`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL}, testLogger())
	repos, err := client.ListRepos(context.Background(), "octo")
	require.NoError(t, err)

	assert.Equal(t, "/users/octo/repos", gotPath)
	assert.Equal(t, "direction=asc&per_page=5&sort=created", gotQuery)
	assert.Equal(t, "devlink", gotAgent)
	assert.Empty(t, gotAuth, "no token configured")

	require.Len(t, repos, 2)
	assert.Equal(t, "first", repos[0].Name)
	assert.Equal(t, 3, repos[0].StargazersCount)
	assert.Equal(t, "more", repos[1].Description)
	assert.Equal(t, 2016, repos[1].CreatedAt.Year())
}

func TestListRepos_SendsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Token: "secret-token"}, testLogger())
	repos, err := client.ListRepos(context.Background(), "octo")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Empty(t, repos)
}

func TestListRepos_NonSuccessIsNotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				io.WriteString(w, `{"message":"Not Found"}`)
			}))
			t.Cleanup(srv.Close)

			client := NewClient(Config{BaseURL: srv.URL}, testLogger())
			_, err := client.ListRepos(context.Background(), "ghost")

			require.ErrorIs(t, err, apperror.ErrNotFound)
			assert.Equal(t, "No Github profile found", err.Error())
		})
	}
}

func TestListRepos_EscapesUsername(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL}, testLogger())
	_, err := client.ListRepos(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/users/a%2Fb/repos", gotPath)
}
