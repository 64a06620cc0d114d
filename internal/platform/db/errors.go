package db

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnection          = errors.New("datastore unreachable")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrQuery               = errors.New("query failed")
	ErrNotFound            = errors.New("record not found")
)

// SQLSTATE codes that callers branch on.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
	CodeInvalidText         = "22P02"
)

// Error is a classified datastore failure. Kind is one of the sentinel errors
// above; errors.Is matches both Kind and the wrapped driver error.
type Error struct {
	Kind       error
	Code       string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify maps a raw pgx error onto the datastore taxonomy. It is safe to
// call more than once on the same error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: ErrNotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return &Error{Kind: ErrConstraintViolation, Code: pgErr.Code, Constraint: pgErr.ConstraintName, Err: err}
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return &Error{Kind: ErrConnection, Code: pgErr.Code, Err: err}
		case pgErr.Code == CodeInvalidText:
			// malformed identifiers behave like a missing row
			return &Error{Kind: ErrNotFound, Code: pgErr.Code, Err: err}
		default:
			return &Error{Kind: ErrQuery, Code: pgErr.Code, Err: err}
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return &Error{Kind: ErrConnection, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: ErrConnection, Err: err}
	}
	return &Error{Kind: ErrQuery, Err: err}
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var classified *Error
	if errors.As(Classify(err), &classified) {
		return classified.Code == CodeUniqueViolation
	}
	return false
}
