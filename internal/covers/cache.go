package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCover is returned when a book has no cover image.
var ErrNoCover = errors.New("no cover available")

// Cache keeps cover images on local disk, one file per work and URL.
type Cache struct {
	cacheDir   string
	origin     *url.URL
	httpClient *http.Client
	userAgent  string
}

// NewCache creates a new cover cache at the specified directory. Only URLs on
// the scheme and host of coversBaseURL are ever downloaded. httpClient is
// normally the shared catalog client so cover downloads count against the same
// rate limit as API calls.
func NewCache(cacheDir, coversBaseURL string, httpClient *http.Client, userAgent string) (*Cache, error) {
	origin, err := url.Parse(coversBaseURL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid covers base URL %q", coversBaseURL)
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Cache{
		cacheDir:   cacheDir,
		origin:     origin,
		httpClient: httpClient,
		userAgent:  userAgent,
	}, nil
}

// GetCover returns the path of the cached cover for a work, downloading it on
// first use. URLs outside the covers host are reported as ErrNoCover.
func (c *Cache) GetCover(ctx context.Context, workID, coverURL string) (string, error) {
	if !HasCover(coverURL) || !c.onOrigin(coverURL) {
		return "", ErrNoCover
	}
	if workID == "" || strings.ContainsAny(workID, `/\`) || strings.Contains(workID, "..") {
		return "", fmt.Errorf("invalid work id %q", workID)
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(workID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// HasCover reports whether coverURL can point at an image. Search results
// without any cover key carry a URL ending in "null-L.jpg".
func HasCover(coverURL string) bool {
	return coverURL != "" && !strings.HasSuffix(coverURL, "/null-L.jpg")
}

func (c *Cache) onOrigin(coverURL string) bool {
	u, err := url.Parse(coverURL)
	if err != nil || u.User != nil {
		return false
	}
	return u.Scheme == c.origin.Scheme && u.Host == c.origin.Host
}

// InvalidateCover removes every cached cover for a work.
func (c *Cache) InvalidateCover(workID string) error {
	pattern := filepath.Join(escapeGlob(c.cacheDir), fmt.Sprintf("cover_%s_*", escapeGlob(workID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// escapeGlob quotes pattern metacharacters so s only matches itself.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// coverFilename generates a unique filename based on work ID and URL hash.
func (c *Cache) coverFilename(workID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.jpg", workID, hash[:8])
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoCover
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}

	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
