package celltree

import "errors"

var (
	// ErrInvalidConfig reports a Config that cannot produce a tree.
	ErrInvalidConfig = errors.New("celltree: invalid config")

	// ErrInvalidInput reports malformed point arrays: mismatched lengths,
	// negative weights or non-finite values.
	ErrInvalidInput = errors.New("celltree: invalid input")

	// ErrEmptyInput is returned when Build is given no points at all.
	// Input whose weights are all zero is not an error; it builds an empty tree.
	ErrEmptyInput = errors.New("celltree: empty input")

	// ErrClosed is returned by Close on a tree that was already closed.
	ErrClosed = errors.New("celltree: tree already closed")
)
