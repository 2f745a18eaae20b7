package security

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validation errors returned by BuildQuery. Callers must treat any error as a
// hard failure; a rejected command is never silently downgraded to a no-op.
var (
	ErrNamespaceNotAllowed = errors.New("wmi namespace not on allow-list")
	ErrClassNotAllowed     = errors.New("wmi class not on allow-list")
	ErrMethodNotAllowed    = errors.New("wmi method not on allow-list")
)

var (
	// Characters permitted in a PowerShell command token. Anything outside
	// this set is stripped before the command reaches the shell.
	safeTokenPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_=().,:/\\]+$`)
	unsafeChars      = regexp.MustCompile(`[^a-zA-Z0-9\s\-_=().,:/\\]`)
)

var allowedNamespaces = map[string]struct{}{
	"root/WMI":           {},
	"root/CIMV2":         {},
	"root/StandardCimv2": {},
}

var allowedClasses = map[string]struct{}{
	"WmiMonitorBrightness":        {},
	"WmiMonitorBrightnessMethods": {},
	"Win32_DesktopMonitor":        {},
	"Win32_VideoController":       {},
}

var allowedMethods = map[string]struct{}{
	"WmiSetBrightness": {},
}

// Validator performs input validation and builds allow-listed WMI commands.
// It is the single authority on what may reach the shell.
type Validator struct {
	logger *logrus.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *logrus.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateBrightness reports whether value parses as a real number in
// [0,100]. Non-numeric input returns false; nothing panics or escapes.
func (v *Validator) ValidateBrightness(value string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		v.logger.WithField("value", value).Debug("Non-numeric brightness value rejected")
		return false
	}
	return f >= 0 && f <= 100
}

// ValidateLevel is the integer form of ValidateBrightness.
func (v *Validator) ValidateLevel(level int) bool {
	return level >= 0 && level <= 100
}

// BuildQuery assembles a PowerShell Get-WmiObject invocation from
// allow-listed parts. method and params are optional; an empty method yields
// a plain class query. On any rejection it returns nil and an error.
func (v *Validator) BuildQuery(namespace, class, method, params string) ([]string, error) {
	if _, ok := allowedNamespaces[namespace]; !ok {
		v.logger.WithField("namespace", namespace).Warn("Rejected WMI namespace")
		return nil, fmt.Errorf("%w: %q", ErrNamespaceNotAllowed, namespace)
	}
	if _, ok := allowedClasses[class]; !ok {
		v.logger.WithField("class", class).Warn("Rejected WMI class")
		return nil, fmt.Errorf("%w: %q", ErrClassNotAllowed, class)
	}
	if method != "" {
		if _, ok := allowedMethods[method]; !ok {
			v.logger.WithField("method", method).Warn("Rejected WMI method")
			return nil, fmt.Errorf("%w: %q", ErrMethodNotAllowed, method)
		}
	}

	var query string
	switch {
	case method != "" && params != "":
		query = fmt.Sprintf("(Get-WmiObject -Namespace %s -Class %s).%s(%s)", namespace, class, method, params)
	case method != "":
		query = fmt.Sprintf("(Get-WmiObject -Namespace %s -Class %s).%s()", namespace, class, method)
	default:
		query = fmt.Sprintf("Get-WmiObject -Namespace %s -Class %s", namespace, class)
	}

	return v.sanitize([]string{"powershell", "-NoProfile", "-Command", query}), nil
}

// sanitize strips characters outside the safe pattern from every token.
func (v *Validator) sanitize(command []string) []string {
	safe := make([]string, 0, len(command))
	for _, part := range command {
		if safeTokenPattern.MatchString(part) {
			safe = append(safe, part)
			continue
		}
		stripped := unsafeChars.ReplaceAllString(part, "")
		v.logger.WithFields(logrus.Fields{
			"original":  part,
			"sanitized": stripped,
		}).Warn("Stripped unsafe characters from command token")
		safe = append(safe, stripped)
	}
	return safe
}
