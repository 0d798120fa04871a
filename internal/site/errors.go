package site

import "errors"

// Sentinel errors returned by the service layer. All of them are recoverable
// at the request level; callers map them to user-facing messages. Anything
// not listed here is an underlying storage failure wrapped with %w.
var (
	// ErrInvalidName indicates a filename or username reduced to nothing
	// after sanitization, or contained nothing usable to begin with.
	ErrInvalidName = errors.New("invalid name")

	// ErrAlreadyExists indicates a create operation hit an existing target
	// (file, page, account directory, or username).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates an operation on a file that is not on disk.
	// For deletes this is a soft condition: the file is already gone.
	ErrNotFound = errors.New("not found")

	// ErrAccountNotFound indicates no account record exists for the username.
	ErrAccountNotFound = errors.New("account not found")

	// ErrQuotaExceeded indicates the mutation would push the account past
	// its byte budget. Nothing has been written when this is returned.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrEmptyUpload indicates an upload with a declared size of zero.
	ErrEmptyUpload = errors.New("did not receive file upload")

	// ErrAlreadyBanned indicates a ban request for an account that is
	// already banned. The second call performs no filesystem move.
	ErrAlreadyBanned = errors.New("account is already banned")

	// ErrTimeout indicates a storage operation exceeded its deadline.
	ErrTimeout = errors.New("storage operation timed out")
)

// Rejection reasons for content validation failures. Callers surface the
// distinction to the end user.
const (
	RejectExtension   = "extension"
	RejectContentType = "content-type"
)

// ValidationError reports why uploaded content was rejected.
type ValidationError struct {
	Kind   string // RejectExtension or RejectContentType
	Reason string
}

func (e *ValidationError) Error() string {
	return "content rejected: " + e.Reason
}

// IsNotFound reports whether err is the missing-file condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

