package log

import (
	"net/url"
	"regexp"
	"strings"
)

// sensitiveQueryParams are query parameter names, lower-cased, whose values
// are credentials. Pre-signed object storage URLs carry their signature in
// the query string.
var sensitiveQueryParams = map[string]bool{
	"x-amz-signature":      true,
	"x-amz-credential":     true,
	"x-amz-security-token": true,
	"x-goog-signature":     true,
	"x-goog-credential":    true,
	"signature":            true,
	"sig":                  true,
	"token":                true,
	"access_token":         true,
	"key":                  true,
	"api_key":              true,
	"apikey":               true,
	"auth":                 true,
	"password":             true,
	"secret":               true,
}

// urlPattern finds http(s) URLs inside free text. A URL ends at whitespace
// or a quote, which is how net/http errors delimit them.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>]+`)

// RedactURL masks credential-bearing query parameters and any userinfo
// password in rawURL. Strings that are not absolute URLs are returned as is.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}

	changed := false
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), MaskValue)
		changed = true
	}

	if u.RawQuery != "" {
		q := u.Query()
		for name, values := range q {
			if !sensitiveQueryParams[strings.ToLower(name)] {
				continue
			}
			for i := range values {
				values[i] = MaskValue
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return rawURL
	}
	return u.String()
}

// RedactURLs applies RedactURL to every URL found in s.
func RedactURLs(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	return urlPattern.ReplaceAllStringFunc(s, RedactURL)
}
