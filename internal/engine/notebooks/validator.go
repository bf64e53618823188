package notebooks

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// Only URLs on the official NotebookLM host are ever opened in a
// browser session, so a bad record in the library cannot redirect
// automation to an attacker-controlled origin.
const (
	AllowedScheme = "https"
	AllowedDomain = "notebooklm.google.com"
)

// Notebook ids are lowercase hex with hyphens (UUID-shaped); anything
// else in the id segment is rejected.
var notebookPathRe = regexp.MustCompile(`^/notebook/[a-f0-9-]+(/.*)?$`)

// ValidationError describes why a URL was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid notebook URL: %s", e.Reason)
}

// ValidateNotebookURL checks that raw is a safe NotebookLM notebook URL
// and returns its normalized form. Checks run in a fixed order so the
// reported reason is deterministic: empty, parse, scheme, host, path,
// fragment. Query strings are allowed but logged.
func ValidateNotebookURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Reason: "URL is empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Reason: fmt.Sprintf("URL could not be parsed: %v", err)}
	}

	if u.Scheme != AllowedScheme {
		return "", &ValidationError{Reason: fmt.Sprintf("scheme must be %s, got %q", AllowedScheme, u.Scheme)}
	}

	// Exact host match. u.Host includes any port, so a port also fails
	// here, and embedded credentials are rejected outright.
	if u.User != nil {
		return "", &ValidationError{Reason: "URL must not contain credentials"}
	}
	if u.Host != AllowedDomain {
		return "", &ValidationError{Reason: fmt.Sprintf("host must be %s, got %q", AllowedDomain, u.Host)}
	}

	if !notebookPathRe.MatchString(u.Path) {
		return "", &ValidationError{Reason: fmt.Sprintf("path %q is not a notebook path", u.Path)}
	}

	if u.Fragment != "" {
		return "", &ValidationError{Reason: "URL must not contain a fragment"}
	}

	if u.RawQuery != "" {
		slog.Warn("notebook URL contains query parameters", slog.String("query", u.RawQuery))
	}

	return u.String(), nil
}

// IsValidNotebookURL reports whether raw passes validation.
func IsValidNotebookURL(raw string) bool {
	_, err := ValidateNotebookURL(raw)
	return err == nil
}
