package catalog

// errmap.go maps technical error text to user-friendly messages with a
// support code. Patterns are matched case-insensitively with
// strings.Contains; the first match wins, so specific patterns come
// before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable
// guidance and a code for support reference.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database constraint and connectivity errors
	{"already exists", UserMessage{
		Message: "A record with this serial already exists",
		Action:  "Review the duplicate list in the batch result",
		Code:    "DB001",
	}},
	{"duplicate key", UserMessage{
		Message: "A record with this serial already exists",
		Action:  "Review the duplicate list in the batch result",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate serials in your CSV",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to the database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	// Batch input errors
	{"missing required columns", UserMessage{
		Message: "The CSV header is missing required columns",
		Action:  "Download the template and match its column names",
		Code:    "VAL004",
	}},
	{"invalid header", UserMessage{
		Message: "The CSV header could not be read",
		Action:  "Ensure the first row contains the column names",
		Code:    "VAL005",
	}},
	{"invalid update set", UserMessage{
		Message: "The bulk change-set contains an invalid value",
		Action:  "Check the field values against the allowed vocabularies",
		Code:    "VAL007",
	}},
	{"reason must not be empty", UserMessage{
		Message: "A bulk update needs a justification",
		Action:  "Enter a short reason for the change",
		Code:    "VAL008",
	}},

	// Admission and cancellation
	{"too many concurrent batch", UserMessage{
		Message: "Too many batch operations are running",
		Action:  "Please wait a moment and try again",
		Code:    "BATCH001",
	}},
	{"context canceled", UserMessage{
		Message: "The request was cancelled",
		Action:  "Please try again",
		Code:    "BATCH002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "The operation timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "BATCH003",
	}},
	// General timeouts last: "timeout" also appears inside more
	// specific messages.
	{"timeout", UserMessage{
		Message: "The operation timed out",
		Action:  "Try a smaller batch or try again later",
		Code:    "DB006",
	}},
}

// MapError translates a technical error into a UserMessage. Unmatched
// errors fall back to a generic message with code ERR000; the technical
// detail belongs in the server log, not the response.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "OK", Code: ""}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}
