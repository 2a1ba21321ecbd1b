package catapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	platformerrors "catgallery-server-go/internal/platform/errors"
	"catgallery-server-go/internal/platform/logging"
	"catgallery-server-go/internal/platform/observability"
)

const (
	DefaultBaseURL    = "https://api.thecatapi.com"
	DefaultSearchPath = "/v1/images/search"

	// GallerySize is the number of images requested for a gallery.
	GallerySize = 6
)

// Options configures a Client. Zero values fall back to the public API.
type Options struct {
	BaseURL    string
	SearchPath string
	APIKey     string
	UserAgent  string
	// Timeout bounds a whole request; zero leaves the HTTP client default (none).
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *logging.Logger
}

// Client calls the image search endpoint. It never retries.
type Client struct {
	http       *resty.Client
	searchPath string
	logger     *logging.Logger
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.SearchPath == "" {
		opts.SearchPath = DefaultSearchPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.APIKey != "" {
		rc.SetHeader("x-api-key", opts.APIKey)
	}

	return &Client{
		http:       rc,
		searchPath: opts.SearchPath,
		logger:     logger,
	}
}

// FetchRaw returns the search response body untouched. limit <= 0 omits the
// limit parameter and lets the API pick its default (one image).
//
// Transport errors, non-2xx statuses and bodies that are not JSON all come
// back as a KindUpstream error.
func (c *Client) FetchRaw(ctx context.Context, limit int) (body []byte, err error) {
	ctx, end := observability.StartSpan(ctx, "catapi", "search")
	defer func() { end(err) }()

	req := c.http.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	start := time.Now()
	resp, err := req.Get(c.searchPath)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindUpstream, "catapi.search", "request failed", err)
	}

	c.logger.DebugTag("Upstream", "GET %s limit=%d -> %d (%s)", c.searchPath, limit, resp.StatusCode(), time.Since(start))

	if !resp.IsSuccess() {
		return nil, platformerrors.New(platformerrors.KindUpstream, "catapi.search",
			fmt.Sprintf("unexpected status %s", resp.Status()))
	}

	body = resp.Body()
	if !sonic.Valid(body) {
		return nil, platformerrors.New(platformerrors.KindUpstream, "catapi.search", "response is not valid JSON")
	}
	return body, nil
}

// Search fetches and decodes up to limit images.
func (c *Client) Search(ctx context.Context, limit int) ([]Image, error) {
	body, err := c.FetchRaw(ctx, limit)
	if err != nil {
		return nil, err
	}

	var images []Image
	if err := sonic.Unmarshal(body, &images); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindUpstream, "catapi.decode", "response is not an image list", err)
	}
	return images, nil
}
