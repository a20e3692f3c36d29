package catalogue

import "errors"

// Sentinel errors shared across the repositories, the resolver and the HTTP
// layer. Repositories translate storage-level errors into these at their
// boundary so callers only ever check with errors.Is.
var (
	// ErrBookNotFound means no book exists for the given id or ISBN.
	ErrBookNotFound = errors.New("book not found")

	// ErrReaderNotFound means no reader exists for the given id.
	ErrReaderNotFound = errors.New("reader not found")

	// ErrBookMetadataNotFound means the external provider has no record for
	// the ISBN, so a missing book cannot be created.
	ErrBookMetadataNotFound = errors.New("book metadata not found")

	// ErrProviderUnavailable means the external provider could not be
	// reached or failed; the lookup may succeed on retry.
	ErrProviderUnavailable = errors.New("metadata provider unavailable")

	// ErrInvalidPageRequest means page or pageSize is out of range.
	ErrInvalidPageRequest = errors.New("invalid page request")

	// ErrInvalidISBN means the caller-supplied ISBN is not 10 or 13
	// characters after stripping separators.
	ErrInvalidISBN = errors.New("invalid isbn")

	// ErrDuplicateISBN means an insert collided with the unique index on
	// isbn. The resolver handles it internally; direct inserts surface it.
	ErrDuplicateISBN = errors.New("a book with this isbn already exists")

	// ErrDuplicateUsername means an insert collided with the unique index
	// on username.
	ErrDuplicateUsername = errors.New("a reader with this username already exists")
)
