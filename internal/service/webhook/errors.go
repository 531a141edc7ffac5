package webhook

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPError reports a webhook reply with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.statusText())
}

func (e *HTTPError) statusText() string {
	// net/http formats Status as "500 Internal Server Error".
	text := strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprintf("%d", e.StatusCode)))
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return text
}

// NetworkErrorMessage is the user-facing text for transport failures.
const NetworkErrorMessage = "Network error: Please make sure the chat service is reachable from this server or try again. The service might be temporarily unavailable."

// NetworkError reports that the webhook could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return NetworkErrorMessage
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
