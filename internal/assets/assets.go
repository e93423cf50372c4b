// Package assets resolves site asset references such as "/images/slide_1.png"
// against a local directory or a remote site.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an asset does not exist.
var ErrNotFound = errors.New("asset not found")

// Source opens assets by their site reference.
type Source interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Clean normalizes a reference to a rooted, slash-separated path and rejects
// references escaping the asset root.
func Clean(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty asset reference")
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	cleaned := path.Clean(ref)
	if strings.Contains(ref, "..") {
		return "", fmt.Errorf("asset reference %q escapes the asset root", ref)
	}
	return cleaned, nil
}

// DirSource reads assets from a directory laid out like the site root.
type DirSource struct {
	Root string
}

func (d DirSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := Clean(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(cleaned)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", cleaned, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// HTTPSource fetches assets from a running site.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (h HTTPSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	cleaned, err := Clean(ref)
	if err != nil {
		return nil, err
	}
	u, err := url.JoinPath(h.BaseURL, cleaned)
	if err != nil {
		return nil, fmt.Errorf("build asset url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cleaned, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", cleaned, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", cleaned, resp.StatusCode)
	}
	return resp.Body, nil
}
