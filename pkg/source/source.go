// Package source acquires a source image, either by downloading it from an
// http(s) URL or by reading a local file, and decodes it.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/chai2010/webp"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/socialfit/pkg/types"
)

// Config holds configuration for source acquisition
type Config struct {
	// Timeout bounds a whole download, including reading the body.
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string

	// AllowedHosts restricts downloads to matching hostnames. Entries may use
	// wildcards ("*.example.com"). Empty allows every host.
	AllowedHosts []string

	// CacheMaxCost enables an in-memory cache of downloaded bytes when
	// positive. Cost is measured in bytes.
	CacheMaxCost int64
	CacheTTL     time.Duration
}

// DefaultConfig returns a 30 second timeout, a 50 MiB body cap and no cache
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		MaxBytes:  50 << 20,
		UserAgent: "socialfit/1.0 (+https://github.com/menta2k/socialfit)",
		CacheTTL:  30 * time.Minute,
	}
}

// Loader fetches and decodes source images
type Loader struct {
	client *http.Client
	config Config
	cache  *ristretto.Cache[string, []byte]
	logger *zap.Logger
}

// New creates a Loader with default configuration and no logging
func New() *Loader {
	config := DefaultConfig()
	return &Loader{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: zap.NewNop(),
	}
}

// NewWithConfig creates a Loader with custom configuration. A nil logger
// disables logging.
func NewWithConfig(config Config, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = def.MaxBytes
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}

	l := &Loader{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: logger,
	}

	if config.CacheMaxCost > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: 1e4,
			MaxCost:     config.CacheMaxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create source cache: %w", err)
		}
		l.cache = cache
	}

	return l, nil
}

// Close releases the download cache, if any
func (l *Loader) Close() {
	if l.cache != nil {
		l.cache.Close()
	}
}

// IsRemote reports whether src names an http or https URL
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Load loads an image from either a URL or a file path
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	if IsRemote(src) {
		return l.LoadURL(ctx, src)
	}
	return l.LoadFile(src)
}

// LoadURL downloads and decodes an image. Download failures are SourceFetch
// errors; undecodable payloads are SourceLoad errors.
func (l *Loader) LoadURL(ctx context.Context, imageURL string) (image.Image, error) {
	data, err := l.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, types.NewError(types.SourceLoad, "decode", imageURL, err)
	}
	return img, nil
}

// LoadFile reads and decodes an image from disk
func (l *Loader) LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.SourceLoad, "read", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, types.NewError(types.SourceLoad, "decode", path, err)
	}
	l.logger.Debug("loaded local image", zap.String("path", path), zap.Int("bytes", len(data)))
	return img, nil
}

// Fetch downloads the raw bytes behind imageURL
func (l *Loader) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, types.NewError(types.SourceFetch, "fetch", "invalid URL", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, types.Errorf(types.SourceFetch, "fetch",
			"unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}
	if !l.hostAllowed(parsedURL.Hostname()) {
		return nil, types.Errorf(types.SourceFetch, "fetch", "host %q is not allowed", parsedURL.Hostname())
	}

	if l.cache != nil {
		if data, ok := l.cache.Get(imageURL); ok {
			l.logger.Debug("source served from cache", zap.String("url", imageURL), zap.Int("bytes", len(data)))
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, types.NewError(types.SourceFetch, "fetch", "failed to create request", err)
	}
	req.Header.Set("User-Agent", l.config.UserAgent)

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.SourceFetch, "fetch", "failed to download image", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			l.logger.Warn("failed to close response body", zap.Error(closeErr), zap.String("url", imageURL))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.Errorf(types.SourceFetch, "fetch", "failed to download image: HTTP %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		l.logger.Warn("remote content type is not an image, decoding anyway",
			zap.String("url", imageURL), zap.String("content_type", contentType))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.config.MaxBytes+1))
	if err != nil {
		return nil, types.NewError(types.SourceFetch, "fetch", "failed to read image data", err)
	}
	if int64(len(data)) > l.config.MaxBytes {
		return nil, types.Errorf(types.SourceFetch, "fetch", "image exceeds %d bytes", l.config.MaxBytes)
	}

	l.logger.Debug("downloaded source image",
		zap.String("url", imageURL),
		zap.String("host", parsedURL.Hostname()),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if l.cache != nil {
		l.cache.SetWithTTL(imageURL, data, int64(len(data)), l.config.CacheTTL)
		l.cache.Wait()
	}

	return data, nil
}

func (l *Loader) hostAllowed(hostname string) bool {
	if len(l.config.AllowedHosts) == 0 {
		return true
	}
	for _, pattern := range l.config.AllowedHosts {
		if pattern == hostname {
			return true
		}
		if strings.Contains(pattern, "*") && wildcard.Match(pattern, hostname) {
			return true
		}
	}
	return false
}

// ErrUnknownFormat is returned when no registered decoder accepts the data
var ErrUnknownFormat = errors.New("image: unknown or unsupported format")

// Decode decodes image bytes in any registered format, applying EXIF
// orientation. WebP gets a second attempt through libwebp.
func Decode(data []byte) (image.Image, error) {
	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, ErrUnknownFormat
}
