package show

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyShow      = errors.New("no slides found")
	ErrOutOfRange     = errors.New("slide out of range")
	ErrUnknownSlide   = errors.New("unknown slide")
	ErrStaleSlide     = errors.New("slide index is out of date")
	ErrAlreadyRunning = errors.New("show is already running")
	ErrNotRunning     = errors.New("show is not running")
)

// OutOfRangeError is returned when requested ordinal is not in [1, Total].
type OutOfRangeError struct {
	Requested int
	Total     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("slide %d is out of range [1, %d]", e.Requested, e.Total)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// UnknownSlideError is returned when a section could not be matched to a slide.
type UnknownSlideError struct {
	Title string
}

func (e *UnknownSlideError) Error() string {
	return fmt.Sprintf("section %q is not a slide", e.Title)
}

func (e *UnknownSlideError) Is(target error) bool {
	return target == ErrUnknownSlide
}

// StaleSlideError means document structure changed after index was built.
// Rebuild the index and try again.
type StaleSlideError struct {
	Slide Slide
	Err   error
}

func (e *StaleSlideError) Error() string {
	return fmt.Sprintf("slide %d (%q) no longer resolves: %v", e.Slide.Ordinal, e.Slide.Title, e.Err)
}

func (e *StaleSlideError) Is(target error) bool {
	return target == ErrStaleSlide
}

func (e *StaleSlideError) Unwrap() error {
	return e.Err
}

// AlreadyRunningError is returned by Start when a different document is being
// shown.
type AlreadyRunningError struct {
	Running   string
	Requested string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("show of %q is running, unable to start %q", e.Running, e.Requested)
}

func (e *AlreadyRunningError) Is(target error) bool {
	return target == ErrAlreadyRunning
}
