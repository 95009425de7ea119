// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package stegano

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the failure a Coder call or the CLI boundary surfaces.
type Kind int

const (
	// KindInvalidArgument covers malformed CLI input: unknown options,
	// duplicate options, missing required values, out-of-range values,
	// unsupported output extensions, a threshold outside [0,0.5], a cap
	// outside [0,8], a conflicting or absent mode.
	KindInvalidArgument Kind = iota
	// KindIoError covers image decode/encode failures and file read/write
	// failures.
	KindIoError
	// KindInvalidSignature means extraction's signature check failed; the
	// image likely carries no embedded payload.
	KindInvalidSignature
	// KindMagicNotFound means fewer than two magic chunks were found in
	// the chunk stream; extraction cannot recover the bit-plane caps.
	KindMagicNotFound
	// KindInvalidImage means the image is too small to hold a single
	// 8x8-aligned chunk (zero usable chunks).
	KindInvalidImage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindIoError:
		return "IoError"
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindMagicNotFound:
		return "MagicNotFound"
	case KindInvalidImage:
		return "InvalidImage"
	default:
		return "Unknown"
	}
}

// Error is the typed error carried up through the core and converted to a
// single-line CLI diagnostic at the process boundary. It wraps an
// underlying cause (captured with github.com/pkg/errors so a stack trace
// is available to %+v) without leaking that cause's formatting into the
// single-line message callers print by default.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

// NewError builds an Error of the given kind with a formatted message. Its
// cause is a fresh github.com/pkg/errors error carrying the same message,
// so %+v can render the stack captured here.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: errors.New(fmt.Sprintf(format, args...))}
}

// WrapError builds an Error of the given kind around an existing error,
// preserving its stack via github.com/pkg/errors.
func WrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Msg: msg, cause: errors.Wrapf(err, msg)}
}

// Error implements the error interface with the single-line diagnostic
// the CLI boundary prints verbatim as "ERROR: <message>".
func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Format implements fmt.Formatter so %+v renders the captured stack trace
// from the wrapped github.com/pkg/errors cause, matching how the rest of
// the stack is introspected on failure.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Msg, e.cause)
		return
	}
	fmt.Fprint(s, e.Msg)
}
