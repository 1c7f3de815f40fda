package finnhub

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is Finnhub's REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// ErrInvalidBaseURL is returned by NewFinnhubAPIClient for a base URL that is
// not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("finnhub: invalid base URL")

// HTTPClient is the transport the client sends requests through.
//
//go:generate mockgen -package=finnhub_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FinnhubAPIClient talks to the Finnhub REST API. Every request carries the
// API token as the token query parameter.
type FinnhubAPIClient struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
	query      url.Values
}

// FinnhubAPIClientOption configures the client, or a single call when passed
// to a request method.
type FinnhubAPIClientOption func(*FinnhubAPIClient)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(baseURL string) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient HTTPClient) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader adds headers to every request.
func WithHeader(header http.Header) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewFinnhubAPIClient builds a client for token. An empty token sends
// unauthenticated requests, which Finnhub answers with 401.
func NewFinnhubAPIClient(token string, options ...FinnhubAPIClientOption) (*FinnhubAPIClient, error) {
	c := &FinnhubAPIClient{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if token = strings.TrimSpace(token); token != "" {
		c.query.Set("token", token)
	}
	for _, option := range options {
		option(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)
	}
	return c, nil
}
