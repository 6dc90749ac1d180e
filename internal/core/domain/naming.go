package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. They never abort anything: callers use them to
// disable the accept action until the candidate changes.
var (
	ErrEmptyName   = errors.New("name is empty")
	ErrNameTaken   = errors.New("name is already used by another image")
	ErrInvalidName = errors.New("name must not contain a path separator")
)

// ValidateName checks that name can be used as a file name inside the
// destination directory.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// NamingState is the per-entry state of the commit protocol.
type NamingState int

const (
	StateUnmodified NamingState = iota
	StateEditing
	StateConflictPending
	StateCommitted
	StateReverted
)

func (s NamingState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateConflictPending:
		return "conflict-pending"
	case StateCommitted:
		return "committed"
	case StateReverted:
		return "reverted"
	default:
		return "unmodified"
	}
}

// NumberedName formats the n-th collision variant of base: "base(n)".
func NumberedName(base string, n int) string {
	return fmt.Sprintf("%s(%d)", base, n)
}
