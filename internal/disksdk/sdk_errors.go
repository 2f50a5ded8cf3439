package disksdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	// sdk common
	ErrNoToken  = errors.New("sdk: oauth token missing")
	ErrNoFolder = errors.New("sdk: remote folder missing")

	// resources
	ErrNotFound    = errors.New("sdk: resource not found")
	ErrInvalidName = errors.New("sdk: remote path rejected")
	ErrLocalRead   = errors.New("sdk: local file read failed")
)

const (
	// Error codes returned by the Disk API
	CodeNotFound      = "DiskNotFoundError"
	CodePathExists    = "DiskPathPointsToExistentDirectoryError"
	CodeParentMissing = "DiskPathDoesntExistsError"
	CodePathFormat    = "DiskPathFormatError"
	CodeFieldInvalid  = "FieldValidationError"
	CodeUnauthorized  = "UnauthorizedError"
)

// APIError represents a structured Disk API error body
type APIError struct {
	Code        string `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError is a helper function that handles the common error pattern.
// HTTP status and API error codes are folded into the sentinel errors so
// callers can branch with errors.Is.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if !resp.IsErrorState() {
		return nil
	}

	apiErr, ok := resp.ErrorResult().(*APIError)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if ok {
			return fmt.Errorf("%s: %w: %s", operation, ErrNotFound, apiErr.Code)
		}
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest,
		ok && (apiErr.Code == CodePathFormat || apiErr.Code == CodeFieldInvalid):
		if ok {
			return fmt.Errorf("%s: %w: %s", operation, ErrInvalidName, apiErr.Code)
		}
		return fmt.Errorf("%s: %w", operation, ErrInvalidName)
	}

	if ok {
		return fmt.Errorf("%s: %w", operation, apiErr)
	}
	return fmt.Errorf("api error: %s: http %d", operation, resp.StatusCode)
}
