package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// FetchError reports a failed collection read.
type FetchError struct {
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Table, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Write operations carried by WriteError.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// WriteError reports a failed insert, update or delete.
type WriteError struct {
	Table string
	Op    string
	ID    string
	Err   error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Table, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
