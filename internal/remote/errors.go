package remote

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStatus       = errors.New("unexpected status")
)

// Error wraps a failed remote call with the operation and HTTP status.
type Error struct {
	Op     string
	Status int    // 0 for transport failures
	Detail string // server supplied detail, if any
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := "remote." + e.Op
	if e.Status != 0 {
		base += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Detail != "" {
		base += ": " + e.Detail
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func statusErr(status int) error {
	switch {
	case status == 404:
		return ErrNotFound
	case status == 401 || status == 403:
		return ErrUnauthorized
	default:
		return ErrStatus
	}
}
