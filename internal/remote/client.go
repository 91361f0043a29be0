// Package remote is the HTTP client for the project listing and archive
// download service.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/constants"
	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/metrics"
	"github.com/jeanhaley32/projecthub/internal/project"
)

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
	Logger    *zap.Logger
}

// Client talks to the project service. It never retries; retry is always
// a user-initiated repeat.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultAPIBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = constants.DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Named("remote")
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		log: cfg.Logger,
	}
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.SkipBrowserWarningHeader, "true")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return req, nil
}

// ListProjects fetches the project listing.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	listURL := c.baseURL + constants.ProjectsPath
	req, err := c.newRequest(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &project.ConnectivityError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("project listing returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", listURL))
		return []project.Project{}, nil
	}

	var projects []project.Project
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, fmt.Errorf("failed to decode project listing: %w", err)
	}
	if projects == nil {
		projects = []project.Project{}
	}

	c.log.Debug("listed projects", zap.Int("count", len(projects)))
	return projects, nil
}

// DownloadURL returns the archive download URL for a project file.
func (c *Client) DownloadURL(id, file string) string {
	return fmt.Sprintf("%s/projects/%s/download/%s", c.baseURL, url.PathEscape(id), url.PathEscape(file))
}

// Download fetches the raw archive bytes.
func (c *Client) Download(ctx context.Context, id, file string) ([]byte, error) {
	downloadURL := c.DownloadURL(id, file)
	req, err := c.newRequest(ctx, downloadURL)
	if err != nil {
		return nil, &project.ArchiveFetchError{ProjectID: id, File: file, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &project.ArchiveFetchError{ProjectID: id, File: file, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &project.ArchiveFetchError{
			ProjectID: id,
			File:      file,
			Status:    resp.StatusCode,
			Err:       fmt.Errorf("server returned %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &project.ArchiveFetchError{ProjectID: id, File: file, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	metrics.RecordDownload(len(data))
	c.log.Debug("downloaded archive",
		zap.String("project", id),
		zap.String("file", file),
		zap.Int("bytes", len(data)))
	return data, nil
}
