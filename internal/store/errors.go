package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage means a backing file could not be opened for read or write.
	ErrStorage = errors.New("storage unavailable")
	// ErrParse means a persisted record is malformed.
	ErrParse = errors.New("malformed record")
)

// ParseError reports the exact line that failed to parse.
// It still satisfies errors.Is(err, ErrParse).
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: malformed record: %s", e.File, e.Line, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
