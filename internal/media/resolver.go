// Package media picks, fetches and types a component image.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"partsmcp/internal/metrics"
	"partsmcp/internal/model"
)

const defaultUserAgent = "partsmcp"

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP. A zero timeout means none.
type HTTPFetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Resolver turns a component's image set into an inline image.
type Resolver struct {
	fetcher Fetcher
}

func NewResolver(f Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// SelectImage picks the entry at index len/2: the medium quality image in
// the usual small/medium/large ordering.
func SelectImage(images []model.Image) (model.Image, error) {
	if len(images) == 0 {
		return model.Image{}, errors.New("no images recorded")
	}
	return images[len(images)/2], nil
}

// MIMESubtype derives the image subtype from the URL path extension.
// "jpg" becomes "jpeg"; other extensions pass through lowercased.
func MIMESubtype(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "" {
		return "", fmt.Errorf("no file extension in %q", u.Path)
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext, nil
}

// Resolve selects one image, fetches it and returns it base64 encoded. Every
// failure is a *model.MediaFetchError.
func (r *Resolver) Resolve(ctx context.Context, images []model.Image) (model.ImageBlock, error) {
	img, err := SelectImage(images)
	if err != nil {
		metrics.RecordMediaFetch(metrics.OutcomeFailed, 0)
		return model.ImageBlock{}, &model.MediaFetchError{Stage: "select image", Err: err}
	}
	subtype, err := MIMESubtype(img.URL)
	if err != nil {
		metrics.RecordMediaFetch(metrics.OutcomeFailed, 0)
		return model.ImageBlock{}, &model.MediaFetchError{Stage: "parse url", URL: img.URL, Err: err}
	}
	if r.fetcher == nil {
		metrics.RecordMediaFetch(metrics.OutcomeFailed, 0)
		return model.ImageBlock{}, &model.MediaFetchError{Stage: "fetch", URL: img.URL, Err: errors.New("no fetcher configured")}
	}
	data, err := r.fetcher.Fetch(ctx, img.URL)
	if err != nil {
		metrics.RecordMediaFetch(metrics.OutcomeFailed, 0)
		return model.ImageBlock{}, &model.MediaFetchError{Stage: "fetch", URL: img.URL, Err: err}
	}

	metrics.RecordMediaFetch(metrics.OutcomeOK, len(data))
	return model.ImageBlock{
		MIMEType: "image/" + subtype,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

var _ model.ImageResolver = (*Resolver)(nil)
