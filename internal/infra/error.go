package infra

import (
	"errors"
	"log/slog"

	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/pkg/pgconv"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies err from its pg error code unless kind is given
// explicitly. Only DB_FAILURE is logged; the other kinds are expected outcomes.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	if k == KindDBFailure {
		logArgs := []any{
			slog.String("kind", string(k)),
		}
		if err != nil {
			logArgs = append(logArgs, slog.String("error", err.Error()))
		}
		slog.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: k, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func classify(err error) RepositoryErrorKind {
	switch {
	case err == nil:
		return KindDBFailure
	case pgconv.IsNoRows(err), pgconv.IsInvalidTextRepresentation(err):
		return KindNotFound
	case pgconv.IsUniqueViolation(err):
		return KindDuplicateKey
	case pgconv.IsForeignKeyViolation(err):
		return KindForeignKeyViolated
	default:
		return KindDBFailure
	}
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	// KindConflict means a conditional update matched fewer rows than expected.
	KindConflict RepositoryErrorKind = "CONFLICT"
)
