// Package tracker is a small client of the GitHub REST issues API, listing
// every issue and milestone of a single repository.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL     = "https://api.github.com"
	DefaultRepository = "shadps4-emu/shadps4-game-compatibility"
	DefaultTimeout    = 30 * time.Second

	// PageSize is the number of items requested per page. A page with fewer
	// items is the last one.
	PageSize = 100

	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 10
	mediaTypeJSON              = "application/vnd.github.v3+json"
	apiPathIssues              = "/repos/%s/issues"
	apiPathMilestones          = "/repos/%s/milestones"
)

// Config holds the client settings.
type Config struct {
	// APIURL is the API base URL, DefaultAPIURL when empty.
	APIURL string
	// Repository in the form owner/name.
	Repository string
	UserAgent  string
	// Timeout bounds each request, DefaultTimeout when zero.
	Timeout time.Duration
}

// Client lists issues of a repository. Requests are sent one at a time.
type Client struct {
	client     *http.Client
	baseURL    *url.URL
	repository string
	userAgent  string
}

// NewClient creates a client setting the http attributes to reuse the
// connection across pages.
func NewClient(cfg Config) (*Client, error) {
	if err := validateRepository(cfg.Repository); err != nil {
		return nil, err
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	baseURL, err := url.Parse(strings.TrimSuffix(apiURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "malformed API URL %q", apiURL)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("malformed API URL %q", apiURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "compat-todo"
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = defaultMaxIdleConns
	t.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost

	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: t,
		},
		baseURL:    baseURL,
		repository: cfg.Repository,
		userAgent:  userAgent,
	}, nil
}

// Repository returns the owner/name the client reads from.
func (c *Client) Repository() string {
	return c.repository
}

// CloseIdleConnections closes the connections kept by the transport.
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// ListIssues requests every page of issues until a page shorter than
// PageSize is returned.
func (c *Client) ListIssues(ctx context.Context) ([]Issue, error) {
	issues, err := listAll[Issue](ctx, c, fmt.Sprintf(apiPathIssues, c.repository), "issues")
	if err != nil {
		return nil, err
	}
	log.Infof("Fetched all issues, total: %d", len(issues))
	return issues, nil
}

// ListMilestones requests every page of milestones.
func (c *Client) ListMilestones(ctx context.Context) ([]Milestone, error) {
	return listAll[Milestone](ctx, c, fmt.Sprintf(apiPathMilestones, c.repository), "milestones")
}

func listAll[T any](ctx context.Context, c *Client, path, kind string) ([]T, error) {
	all := []T{}
	for page := 1; ; page++ {
		items := []T{}
		if err := c.getPage(ctx, path, page, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		log.Infof("Fetched %s page %d, total so far: %d", kind, page, len(all))
		if len(items) < PageSize {
			return all, nil
		}
	}
}

// getPage requests a single page and decodes the JSON array into out.
func (c *Client) getPage(ctx context.Context, path string, page int, out interface{}) error {
	u := *c.baseURL
	u.Path = u.Path + path
	params := url.Values{}
	params.Add("per_page", strconv.Itoa(PageSize))
	params.Add("page", strconv.Itoa(page))
	u.RawQuery = params.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "couldn't create the request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", mediaTypeJSON)

	log.Debugf("GET %s", target)
	res, err := c.client.Do(req)
	if err != nil {
		return &TransportError{URL: target, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &HTTPStatusError{URL: target, StatusCode: res.StatusCode, Status: res.Status}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return &TransportError{URL: target, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Source: target, Err: err}
	}
	return nil
}

func validateRepository(repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository %q, expected owner/name", repo)
	}
	return nil
}
