package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// Credentials points at a service account key, either inline JSON or a file.
type Credentials struct {
	JSON string
	File string
}

func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.JSON) == "" && strings.TrimSpace(c.File) == ""
}

// ClientOptions returns the auth options for Google API clients. With no
// credentials configured the client falls back to application default
// credentials.
func (c Credentials) ClientOptions(scopes ...string) []option.ClientOption {
	var opts []option.ClientOption
	switch js := strings.TrimSpace(c.JSON); {
	case js != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(js)))
	case strings.HasPrefix(strings.TrimSpace(c.File), "{"):
		// GOOGLE_APPLICATION_CREDENTIALS sometimes carries the key itself.
		opts = append(opts, option.WithCredentialsJSON([]byte(strings.TrimSpace(c.File))))
	case strings.TrimSpace(c.File) != "":
		opts = append(opts, option.WithCredentialsFile(strings.TrimSpace(c.File)))
	}
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}
	return opts
}
