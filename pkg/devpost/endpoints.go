package devpost

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the public Devpost site
	DefaultBaseURL = "https://devpost.com"

	// ProjectPath prefixes every project page
	ProjectPath = "/software/"

	// SearchPath is the JSON search endpoint
	SearchPath = "/software/search"
)

var projectURLPattern = regexp.MustCompile(`^https://(www\.)?devpost\.com/.+`)

// ProjectURL constructs the page URL for a project id
func ProjectURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + ProjectPath + url.PathEscape(id)
}

// SearchURL constructs the URL for one page of search results
func SearchURL(baseURL, query string, page int) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	return strings.TrimRight(baseURL, "/") + SearchPath + "?" + params.Encode()
}

// IsProjectURL reports whether raw looks like a Devpost page link
func IsProjectURL(raw string) bool {
	return projectURLPattern.MatchString(strings.TrimSpace(raw))
}

// ProjectIDFromURL extracts the project id from /software/{id}, or from a
// URL whose path is a single segment.
func ProjectIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	for i, p := range parts {
		if p == "software" && i+1 < len(parts) {
			return parts[i+1], true
		}
	}
	if len(parts) == 1 && parts[0] != "software" {
		return parts[0], true
	}
	return "", false
}
