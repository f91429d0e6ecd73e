package sentiment

import "errors"

var (
	// ErrTextTooLong rejects a text exceeding the configured length limit
	// before any dispatch.
	ErrTextTooLong = errors.New("text exceeds length limit")

	// ErrBatchTooLarge rejects a batch exceeding the configured size limit
	// before any dispatch. The whole batch is rejected, never truncated.
	ErrBatchTooLarge = errors.New("batch exceeds size limit")
)
