// Package browser opens pages of the site in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
)

// Open launches the system browser on rawURL. Only http and https URLs are
// accepted.
func Open(rawURL string) error {
	name, args, err := command(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, rawURL string) (string, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "windows":
		// rundll32 avoids cmd /c start and its shell parsing
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "xdg-open", []string{rawURL}, nil
	}
}

// PageURL is the address of a record on the site: the page for its kind
// ("notes" or "programs") with the record id as fragment. An empty id gives
// the page itself.
func PageURL(base, page, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("site pages need an http(s) base, got %q", base)
	}
	u.Path = path.Join("/", u.Path, page+".html")
	u.Fragment = id
	return u.String(), nil
}
