package zabbix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthRequired is returned when an authenticated call is attempted with no
// token and no credentials to obtain one.
var ErrAuthRequired = errors.New("zabbix: authentication required")

// ErrTimeout is returned when the backend round trip exceeded the configured
// bound. No definitive backend response was received, so the session token is
// left untouched.
var ErrTimeout = errors.New("zabbix: request timed out")

// AuthError reports a rejected login or a login that returned no token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("zabbix: authentication failed: %s", e.Reason)
}

// APIError is an explicit error envelope returned by the backend.
type APIError struct {
	Code    int
	Message string
	Data    any
}

func (e *APIError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("zabbix: api error %d: %s: %v", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("zabbix: api error %d: %s", e.Code, e.Message)
}

// IsAuthFailure reports whether err indicates the backend rejected the
// session token or credentials. The Zabbix API signals this through the
// error message rather than a dedicated code.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, v := range []any{apiErr.Data, apiErr.Message} {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if containsFold(s, "not authorised") || containsFold(s, "not authorized") || containsFold(s, "re-login") {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
