// Package render fetches rendered diagrams from the PlantUML server.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// DefaultFileName is the name used when exporting without an explicit path.
const DefaultFileName = "uml.svg"

// maxImageBytes bounds the size of a fetched image.
const maxImageBytes = 16 << 20

// ErrImageTooLarge is returned when an image exceeds maxImageBytes.
var ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", maxImageBytes)

// Image is a rendered diagram.
type Image struct {
	Data        []byte
	ContentType string
}

// FetchError is returned when the server answers with a non-2xx status.
type FetchError struct {
	URL    string
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("render server returned %d for %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("render server returned %d for %s", e.Status, e.URL)
}

// Fetcher downloads images from the rendering server.
type Fetcher struct {
	client *http.Client
	log    *logger.Logger
}

// NewFetcher creates a fetcher. A nil client uses a client with a 30s timeout.
func NewFetcher(client *http.Client, log *logger.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, log: log}
}

// Fetch performs a single GET for url. There is no retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{URL: url, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetching %s: %w", url, ErrImageTooLarge)
	}

	f.log.WithFields(map[string]any{"url": url, "bytes": len(data)}).Debug("fetched diagram image")
	return &Image{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Download fetches url and writes the image to path. An empty path writes
// DefaultFileName in the working directory. It returns the written path.
func (f *Fetcher) Download(ctx context.Context, url, path string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	img, err := f.Fetch(ctx, url)
	if err != nil {
		f.log.Error(err, "export failed")
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Probe fetches url and reports the result to the viewer, the way a browser
// reports an img element's load or error event.
func (f *Fetcher) Probe(ctx context.Context, url string, v *viewer.Controller) viewer.State {
	if _, err := f.Fetch(ctx, url); err != nil {
		return v.ImageFailed(url, err)
	}
	return v.ImageLoaded(url)
}
