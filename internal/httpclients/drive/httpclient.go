package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/config"
)

const defaultRetryWaitMax = time.Second * 5

// The link formats users paste: a full Sheets URL, a bare Drive file URL, or
// an id= query parameter.
var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9-_]+)`),
}

func ExtractFileID(link string) (string, error) {
	for _, pattern := range fileIDPatterns {
		if m := pattern.FindStringSubmatch(link); m != nil {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("%w: no file id in %q", entity.ErrInvalidLink, link)
}

// Client resolves spreadsheet titles through the Drive v3 files endpoint.
// The lookup is a read, so transport failures are retried.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg config.Drive) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = time.Second
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = cfg.Timeout

	retryClient.Logger = nil

	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		return false, nil
	}

	return &Client{
		client:  retryClient.StandardClient(),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) FileID(link string) (string, error) {
	return ExtractFileID(link)
}

type fileMetadataResponse struct {
	Name string `json:"name"`
}

func (c *Client) ResolveTitle(ctx context.Context, link string) (string, error) {
	fileID, err := ExtractFileID(link)
	if err != nil {
		return "", err
	}

	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing API key", entity.ErrResolutionUnavailable)
	}

	u := fmt.Sprintf("%s/files/%s?fields=name&key=%s", c.baseURL, url.PathEscape(fileID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %s", entity.ErrResolutionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected code %d", entity.ErrResolutionUnavailable, resp.StatusCode)
	}

	var data fileMetadataResponse

	err = json.NewDecoder(resp.Body).Decode(&data)
	if err != nil {
		return "", fmt.Errorf("%w: decode response: %s", entity.ErrResolutionUnavailable, err)
	}

	return data.Name, nil
}
