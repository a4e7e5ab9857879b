package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxBodySize caps a dataset document. The site's files are a few hundred KB.
const maxBodySize = 16 << 20

// Fetcher retrieves the raw bytes behind a URL. Implementations return
// *NetworkError or *FetchError; JSON validation is the Loader's job.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBody:   maxBodySize,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// One byte past the limit tells an oversized body from one that fits exactly.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &SizeError{URL: rawURL, Limit: f.maxBody}
	}
	return body, nil
}

// FileFetcher reads documents from a local site checkout. Accepts file://
// URLs and plain paths.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	p := localPath(rawURL)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FetchError{URL: rawURL, StatusCode: http.StatusNotFound}
		}
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return data, nil
}

// MultiFetcher dispatches on the URL scheme: http(s) goes to HTTP, anything
// else is treated as a local file.
type MultiFetcher struct {
	HTTP Fetcher
	File Fetcher
}

func (m MultiFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if IsRemote(rawURL) {
		return m.HTTP.Fetch(ctx, rawURL)
	}
	return m.File.Fetch(ctx, rawURL)
}

// IsRemote reports whether rawURL uses http or https.
func IsRemote(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Resolve joins a base (URL, file:// URL or directory) with a dataset name
// such as "data/notes.json".
func Resolve(base, name string) string {
	if IsRemote(base) {
		u, err := url.Parse(base)
		if err != nil {
			return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
		}
		u.Path = path.Join("/", u.Path, name)
		return u.String()
	}
	return filepath.Join(localPath(base), filepath.FromSlash(name))
}

// LocalDir returns the filesystem directory for a non-remote base, or "" for
// http(s) bases.
func LocalDir(base string) string {
	if IsRemote(base) {
		return ""
	}
	return localPath(base)
}

func localPath(rawURL string) string {
	if strings.HasPrefix(rawURL, "file://") {
		if u, err := url.Parse(rawURL); err == nil {
			return filepath.FromSlash(u.Path)
		}
		return strings.TrimPrefix(rawURL, "file://")
	}
	return rawURL
}
