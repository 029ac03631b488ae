// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was reverted.
type Kind uint8

const (
	InvalidInput Kind = iota + 1
	Unauthorized
	StateViolation
	CapacityExceeded
	StaleExternalData
	ExternalCallFailure
)

var kindNames = map[Kind]string{
	InvalidInput:        "invalid input",
	Unauthorized:        "unauthorized",
	StateViolation:      "state violation",
	CapacityExceeded:    "capacity exceeded",
	StaleExternalData:   "stale external data",
	ExternalCallFailure: "external call failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ErrRevert aborts the whole operation it was raised in.
type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a revert caused by a collaborator failure.
func Wrap(kind Kind, cause error, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
		cause:   cause,
	}
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsKind reports whether err is, or wraps, a revert of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind == kind
	}
	return false
}

// KindOf returns the kind of a revert error, 0 for other errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
