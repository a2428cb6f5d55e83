package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

// backendErrorResponse mirrors the error body returned by the storefront
// backend: a flat object with a human-readable message.
type backendErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and
// translates it into an AppError. If the body matches the backend's
// `{message}` format the message is preserved; otherwise the raw body is
// used. The response body is fully consumed and closed.
//
// The caller should only invoke this when resp.StatusCode indicates an
// error (i.e., not 2xx).
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Unavailable(fmt.Sprintf("%s returned status %d (failed to read body: %v)", operation, resp.StatusCode, err))
	}

	message := ""
	var backend backendErrorResponse
	if json.Unmarshal(bodyBytes, &backend) == nil {
		if backend.Message != "" {
			message = backend.Message
		} else if backend.Error != "" {
			message = backend.Error
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(bodyBytes))
	}
	if message == "" {
		message = fmt.Sprintf("status %d", resp.StatusCode)
	}

	return mapStatusError(resp.StatusCode, message, operation)
}

// mapStatusError translates an HTTP status code into the client's error
// taxonomy.
func mapStatusError(status int, message, operation string) error {
	qualified := fmt.Sprintf("%s: %s", operation, message)

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthenticated(qualified)
	case status == http.StatusNotFound:
		return apperrors.NotFound(operation, message)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.Validation(qualified, nil)
	case status >= 500:
		return apperrors.Unavailable(qualified)
	default:
		return &apperrors.AppError{
			Code:    fmt.Sprintf("HTTP_%d", status),
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors are never retried: the request itself was invalid.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
