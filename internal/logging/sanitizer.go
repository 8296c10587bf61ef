package logging

import (
	"regexp"
	"strings"
)

// Sanitizer redacts credentials from log output.
type Sanitizer struct {
	patterns      []*regexp.Regexp
	sensitiveKeys []string
	redacted      string
}

// NewSanitizer creates a sanitizer with default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns:      defaultPatterns(),
		sensitiveKeys: []string{"token", "secret", "password", "passwd", "api_key", "apikey", "private_key"},
		redacted:      "[REDACTED]",
	}
}

func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// GitHub tokens
		`gh[pousr]_[A-Za-z0-9]{36}`,
		`github_pat_[A-Za-z0-9_]{22,}`,
		// GitLab PAT
		`glpat-[A-Za-z0-9_-]{20}`,
		// Bitbucket app passwords in clone URLs
		`(?i)https?://[^\s:/@]+:[^\s@/]{8,}@`,
		// AWS access key
		`AKIA[0-9A-Z]{16}`,
		// Slack tokens and incoming webhooks
		`xox[baprs]-[0-9a-zA-Z-]{10,}`,
		`https://hooks\.slack\.com/services/[A-Za-z0-9/]+`,
		// Bearer tokens
		`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`,
		// key=value style secrets
		`(?i)(api[_-]?key|secret|token)["'\s:=]+[a-zA-Z0-9_-]{20,}`,
		`(?i)password["'\s:=]+[^\s"']{8,}`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Sanitize redacts sensitive information from a string.
func (s *Sanitizer) Sanitize(input string) string {
	result := input
	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllString(result, s.redacted)
	}
	return result
}

// IsSensitiveKey reports whether a config field name suggests a credential.
func (s *Sanitizer) IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range s.sensitiveKeys {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

// SanitizeValues redacts a flat name -> value map, such as the values of a
// hook config. Values under sensitive names are replaced entirely.
func (s *Sanitizer) SanitizeValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" && s.IsSensitiveKey(k) {
			out[k] = s.redacted
			continue
		}
		out[k] = s.Sanitize(v)
	}
	return out
}

// AddPattern adds a custom pattern.
func (s *Sanitizer) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.patterns = append(s.patterns, re)
	return nil
}

// SetRedactedPlaceholder sets the placeholder text for redacted content.
func (s *Sanitizer) SetRedactedPlaceholder(placeholder string) {
	s.redacted = placeholder
}
