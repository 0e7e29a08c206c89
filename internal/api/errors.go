package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed API call with the backend's error code, when present.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// friendly maps known backend error codes to user-facing text. The UI layer
// renders these strings verbatim.
var friendly = map[string]string{
	"CHAT_NOT_FOUND":       "This conversation no longer exists.",
	"MESSAGE_NOT_FOUND":    "That message no longer exists.",
	"USER_BLOCKED":         "You can't message this user.",
	"PERMISSION_DENIED":    "You don't have permission to do that.",
	"NOT_A_MEMBER":         "You are no longer a member of this chat.",
	"ATTACHMENT_TOO_LARGE": "The attachment is too large.",
	"RATE_LIMITED":         "You're doing that too fast. Try again shortly.",
	"INVALID_CREDENTIALS":  "Your session has expired. Please sign in again.",
}

// FriendlyMessage converts any error from a client call into a short
// human-readable string for the UI's error field.
func FriendlyMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg, ok := friendly[apiErr.Code]; ok {
			return msg
		}
		if apiErr.Status == http.StatusUnauthorized {
			return friendly["INVALID_CREDENTIALS"]
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return "Something went wrong. Please try again."
}
