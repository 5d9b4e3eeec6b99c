package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrClientHTTPError  = errors.New("client HTTP error (4xx)")    // Wraps original status
	ErrServerHTTPError  = errors.New("server HTTP error (5xx)")    // Wraps original status
	ErrOtherHTTPError   = errors.New("other HTTP error (non-2xx)") // Wraps original status
	ErrNetwork          = errors.New("network error")              // Wraps transport errors (DNS, reset, timeout)
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	ErrScopeViolation   = errors.New("URL out of scope (host/allow-list)")
	ErrMaxDepthExceeded = errors.New("maximum crawl depth exceeded")
	ErrParsing          = errors.New("parsing error")    // Wraps specific parsing error (HTML, URL)
	ErrFilesystem       = errors.New("filesystem error") // Wraps os errors
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrConfigValidation = errors.New("configuration validation error")
)

// statusCodePattern finds the code in fetcher messages like "status 404 Not Found"
var statusCodePattern = regexp.MustCompile(`\bstatus (\d{3})\b`)

// fixedCategories are sentinels whose category never depends on the message
var fixedCategories = []struct {
	sentinel error
	category string
}{
	{ErrServerHTTPError, "HTTP_5xx"},
	{ErrOtherHTTPError, "HTTP_OtherStatus"},
	{ErrRobotsDisallowed, "Policy_Robots"},
	{ErrScopeViolation, "Policy_Scope"},
	{ErrMaxDepthExceeded, "Policy_MaxDepth"},
	{ErrRequestCreation, "Internal_RequestCreation"},
	{ErrResponseBodyRead, "Network_BodyRead"},
	{ErrConfigValidation, "Config_Validation"},
}

// networkMessageCategories classify transport errors that carry no typed cause
var networkMessageCategories = []struct {
	fragment string
	category string
}{
	{"timeout", "Network_TimeoutGeneric"},
	{"connection refused", "Network_ConnectionRefused"},
	{"no such host", "Network_DNSLookup"},
	{"tls", "Network_TLS"},
	{"certificate", "Network_TLS"},
	{"reset by peer", "Network_ConnectionReset"},
	{"broken pipe", "Network_BrokenPipe"},
}

// WrapErrorf wraps err with a formatted message. Returns nil when err is nil.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// CategorizeError maps an error to a predefined category string for logging and skip accounting.
// Client errors keep their exact code (HTTP_404, HTTP_410, ...).
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	if errors.Is(err, ErrClientHTTPError) {
		if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil && m[1][0] == '4' {
			return "HTTP_" + m[1]
		}
		return "HTTP_4xx"
	}
	for _, fc := range fixedCategories {
		if errors.Is(err, fc.sentinel) {
			return fc.category
		}
	}
	if errors.Is(err, ErrParsing) {
		return parsingCategory(err)
	}
	if errors.Is(err, ErrFilesystem) {
		return filesystemCategory(err)
	}

	// --- Fallback checks for common underlying error types/strings ---

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		if errors.Is(err, ErrNetwork) {
			return "Network_Timeout" // per-request client timeout
		}
		return "System_ContextDeadlineExceeded"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}

	lowerErrMsg := strings.ToLower(err.Error())
	for _, nc := range networkMessageCategories {
		if strings.Contains(lowerErrMsg, nc.fragment) {
			return nc.category
		}
	}

	if errors.Is(err, ErrNetwork) {
		return "Network_Other"
	}
	return "Unknown"
}

func parsingCategory(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "URL"):
		return "Content_ParsingURL"
	case strings.Contains(msg, "HTML"):
		return "Content_ParsingHTML"
	case strings.Contains(msg, "content type"):
		return "Content_NotHTML"
	}
	return "Content_ParsingOther"
}

func filesystemCategory(err error) string {
	switch {
	case errors.Is(err, os.ErrPermission):
		return "Filesystem_Permission"
	case errors.Is(err, os.ErrNotExist):
		return "Filesystem_NotExist"
	case errors.Is(err, os.ErrExist):
		return "Filesystem_Exist"
	}
	return "Filesystem_Other"
}

// SkipReasonFor maps a per-task error onto the skip bucket it is counted under.
// Anything not recognized is treated as a network failure.
func SkipReasonFor(err error) models.SkipReason {
	switch {
	case errors.Is(err, ErrMaxDepthExceeded):
		return models.SkipReasonDepth
	case errors.Is(err, ErrRobotsDisallowed):
		return models.SkipReasonRobots
	case errors.Is(err, ErrClientHTTPError), errors.Is(err, ErrServerHTTPError), errors.Is(err, ErrOtherHTTPError):
		return models.SkipReasonHTTPStatus
	case errors.Is(err, ErrScopeViolation):
		return models.SkipReasonScope
	case errors.Is(err, ErrParsing):
		return models.SkipReasonParse
	}
	return models.SkipReasonNetwork
}
