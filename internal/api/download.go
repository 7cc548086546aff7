package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// DownloadTrack streams the resource at rawURL into destDir and returns the
// final file path. The body is written to a staging file first; any prior
// file at the destination is removed before the staged file is moved into
// place. No decoding is performed. Fetch and move failures both surface as
// [ErrNetwork].
func (c *Client) DownloadTrack(ctx context.Context, rawURL, destDir string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid download URL: %v", ErrNetwork, err)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("%w: download URL has no file name", ErrNetwork)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: download returned status %d", ErrNetwork, resp.StatusCode)
	}

	// Stage in the destination directory so the final move stays on one filesystem.
	staging, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	stagingPath := staging.Name()

	if _, err := io.Copy(staging, resp.Body); err != nil {
		staging.Close()
		os.Remove(stagingPath)
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := staging.Close(); err != nil {
		os.Remove(stagingPath)
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	dest := filepath.Join(destDir, name)
	os.Remove(dest)
	if err := os.Rename(stagingPath, dest); err != nil {
		os.Remove(stagingPath)
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	c.logger.Info("downloaded track", "url", rawURL, "dest", dest)
	return dest, nil
}
