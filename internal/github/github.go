// Package github lists a GitHub user's public repositories for profile pages.
// Requests are authenticated with a static oauth2 token when one is
// configured, which raises GitHub's rate limit; anonymous calls work too.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/devlink/internal/apperror"
)

const (
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "devlink"
	reposPerPage   = 5
)

// Repo is the subset of GitHub's repository object the profile page shows.
type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
		httpClient.Timeout = timeout
	}

	return &Client{baseURL: baseURL, http: httpClient, logger: logger}
}

// ListRepos returns the user's five oldest repositories. Any non-2xx answer
// from GitHub, including an unknown user, is reported as not found.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(reposPerPage))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: listing repos for %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		c.logger.Info("github lookup failed",
			slog.String("username", username),
			slog.Int("status", resp.StatusCode),
		)
		return nil, apperror.NotFoundMessage("No Github profile found")
	}

	repos := []Repo{}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding repos for %s: %w", username, err)
	}
	return repos, nil
}
