// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the structured access logger. The
// SOS domain forces two scrubbing rules a generic logger would not need:
// response tokens are bearer credentials that appear in URL paths and query
// strings, and contact phone numbers are PII that appear in setup payload
// echoes and provider errors. Neither may reach the logs in clear text.
//
// Design goals:
//   - Default-safe: never logs request or response bodies
//   - Masks the token query parameter and token-bearing path segments
//   - Redacts phone-number-shaped values from queries and headers
//   - Masks sensitive headers (Authorization, Cookie, Set-Cookie, + custom)
//   - Attaches the request-scoped zerolog.Logger for downstream enrichment
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values are fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// the built-in sensitive headers.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	// tokenQueryRE masks the value of any token query parameter.
	tokenQueryRE = regexp.MustCompile(`(?i)(token=)[^&\s]+`)
	// phoneRE matches phone-shaped values only: a leading "+", grouping
	// separators, or a bare run of 9+ digits. Digits-only so it cannot eat
	// hex identifiers, and short numeric runs (build numbers, 7-8 digit ids)
	// pass through. Examples matched: "+1 212-555-1212", "212 555 1212",
	// "(212) 555-1212", "2125551212".
	phoneRE = regexp.MustCompile(`(?:\+\d[\d .()-]{5,16}\d|\b\(?\d{2,4}\)?[ .-]\d{3,4}[ .-]\d{4}\b|\b\d{9,15}\b)`)
)

// redact scrubs tokens first, then phone numbers.
func redact(s string) string {
	if s == "" {
		return s
	}
	out := tokenQueryRE.ReplaceAllString(s, "${1}[REDACTED:token]")
	out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// RedactingLogger returns a Gin middleware that logs HTTP requests and
// responses with sensitive values scrubbed, and stores a request-scoped
// zerolog.Logger in the Gin context (key "logger").
//
// Behavior:
//   - Logs method, route path, scrubbed query, status, response size,
//     latency, and scrubbed request headers.
//   - The token path parameter (GET /recipient/:token) is safe because the
//     route template, not the raw URL, is logged whenever a route matched;
//     unmatched raw paths still pass through redact().
//   - Severity is chosen by outcome: info, warn for 4xx, error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// No route matched; the raw path may embed a token.
			path = redact(c.Request.URL.Path)
		}
		safeQuery := redact(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, masked := maskHeaders[strings.ToLower(k)]; masked {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		rid, _ := c.Get(requestIDKey)
		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
