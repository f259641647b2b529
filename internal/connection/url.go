package connection

import (
	"net/url"
	"strings"
)

// TokenURL builds the socket address for a token: <base>/<token>/.
func TokenURL(base, token string) string {
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(token) + "/"
}
