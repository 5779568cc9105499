package catalog

import (
	"errors"
	"fmt"
)

// apiError reports a non-2xx catalog response. Permanent errors (4xx) must
// not be retried; everything else is treated as transient.
type apiError struct {
	Operation  string
	StatusCode int
	Permanent  bool
}

func (e *apiError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("catalog %s failed: status %d (%s)", e.Operation, e.StatusCode, kind)
}

func newAPIError(operation string, statusCode int) error {
	return &apiError{
		Operation:  operation,
		StatusCode: statusCode,
		Permanent:  statusCode >= 400 && statusCode < 500,
	}
}

// IsPermanent reports whether err is a catalog failure that retrying cannot
// fix, e.g. the item no longer exists. Network errors are always transient.
func IsPermanent(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Permanent
	}
	return false
}

// StatusCode extracts the HTTP status from a catalog error, or 0 when the
// request never produced a response.
func StatusCode(err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
