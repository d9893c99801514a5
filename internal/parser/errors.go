package parser

import (
	"errors"
	"fmt"
)

var (
	ErrContainerRequired = errors.New("parser: container id is required")
	ErrContainerNotEmpty = errors.New("parser: container already holds nodes")
)

// ParseError marks a document that could not be turned into a node sequence.
// It is fatal to the whole parse call; the parser never retries.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parser: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parser: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
