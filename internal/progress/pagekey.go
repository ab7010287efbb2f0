package progress

import (
	"fmt"
	"net/url"
	"strings"
)

// PageKey partitions the progress document. It is the page path exactly as
// the host reports it; "/guides/one" and "/guides/one/" are different keys.
type PageKey string

func (k PageKey) String() string {
	return string(k)
}

func (k PageKey) Validate() error {
	if strings.TrimSpace(string(k)) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPageKey)
	}
	if !strings.HasPrefix(string(k), "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPageKey, string(k))
	}
	return nil
}

// PageKeyFromLocation derives the key for a page from its location, either a
// full URL or a bare path. Query and fragment are dropped; the path keeps its
// escaping and trailing slash.
func PageKeyFromLocation(raw string) (PageKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty location", ErrInvalidPageKey)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPageKey, err)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	key := PageKey(path)
	if err := key.Validate(); err != nil {
		return "", err
	}
	return key, nil
}
