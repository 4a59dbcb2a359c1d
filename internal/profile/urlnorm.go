package profile

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sells-group/company-profiler/internal/apperr"
)

// NormalizeURL canonicalizes a user-entered URL into the stable cache key.
// Input without an explicit scheme gets https:// prepended. The fragment and
// query string are both cleared: query parameters are not part of a company's
// identity. An empty path becomes "/" so "example.com" and "example.com/"
// share one key. Scheme and trailing-path differences beyond that are
// preserved as-is.
func NormalizeURL(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "", apperr.InvalidInput(fmt.Sprintf("Invalid URL supplied: %s", input))
	}

	u.Fragment = ""
	u.RawQuery = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}
