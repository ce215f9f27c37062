package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrSessionFinished ErrCode = "SESSION_FINISHED"
	ErrIndexOutOfRange ErrCode = "INDEX_OUT_OF_RANGE"
	ErrTestNotFound    ErrCode = "TEST_NOT_FOUND"
	ErrNoQuestions     ErrCode = "TEST_HAS_NO_QUESTIONS"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrBackendUnavailable ErrCode = "BACKEND_UNAVAILABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrSessionNotFound:
		return "No active test session matches this id."
	case ErrSessionFinished:
		return "This test session has already been submitted."
	case ErrIndexOutOfRange:
		return "Question index is outside this test."
	case ErrTestNotFound:
		return "The requested test does not exist."
	case ErrNoQuestions:
		return "This test has no questions."
	case ErrBackendUnavailable:
		return "The exam service is temporarily unavailable. Please try again."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
