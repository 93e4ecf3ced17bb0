package vfs

import (
	"console"

	"errno"
)

// StandardInput is the read end of the console: until an input driver
// is wired in, reads simply report end-of-stream.
type StandardInput struct {
	NopInterface
}

func (StandardInput) Read(buf []byte) (int, error) { return 0, nil }

// StandardOutput and StandardError write through the installed console
// sink. They're kept as distinct types (rather than one aliased twice)
// so a task's fd table can one day redirect them independently.
type StandardOutput struct {
	NopInterface
	sink console.Sink
}

// NewStandardOutput returns a StandardOutput writing to sink, or to the
// kernel's installed default console sink if sink is nil.
func NewStandardOutput(sink console.Sink) *StandardOutput {
	return &StandardOutput{sink: sink}
}

func (s *StandardOutput) Write(buf []byte) (int, error) {
	if s.sink != nil {
		s.sink.WriteString(string(buf))
	} else {
		(console.Writer{}).Write(buf)
	}
	return len(buf), nil
}

type StandardError struct {
	NopInterface
	sink console.Sink
}

func NewStandardError(sink console.Sink) *StandardError {
	return &StandardError{sink: sink}
}

func (s *StandardError) Write(buf []byte) (int, error) {
	if s.sink != nil {
		s.sink.WriteString(string(buf))
	} else {
		(console.Writer{}).Write(buf)
	}
	return len(buf), nil
}

var _ Interface = (*StandardOutput)(nil)
var _ Interface = (*StandardError)(nil)
var _ Interface = StandardInput{}

// errIfZero rejects a zero-length name outright rather than let it
// silently match the root. No node operation in this package calls it.
func errIfZero(name string) error {
	if name == "" {
		return errno.InvalidArgument
	}
	return nil
}
