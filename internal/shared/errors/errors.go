package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")

	// Input errors, always reported before any mutation.
	ErrValidation      = errors.New("validation failed")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	ErrForbidden = errors.New("admin role required")
	ErrNotFound  = errors.New("not found")

	ErrStorageWrite      = errors.New("file store write failed")
	ErrStorageRead       = errors.New("file store read failed")
	ErrPersistence       = errors.New("database operation failed")
	ErrInconsistentState = errors.New("inconsistent state")
)

// Mark tags cause with kind so callers can classify it with errors.Is
// against either of them.
func Mark(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &marked{kind: kind, cause: cause}
}

type marked struct {
	kind  error
	cause error
}

func (m *marked) Error() string {
	return m.kind.Error() + ": " + m.cause.Error()
}

func (m *marked) Unwrap() []error {
	return []error{m.kind, m.cause}
}

// Is reports whether err carries any of the given kinds.
func Is(err error, kinds ...error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
