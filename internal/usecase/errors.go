package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrValidation            = crerr.New("validation failed")
	ErrPermission            = crerr.New("permission denied")
	ErrConflict              = crerr.New("conflict")
	ErrBudgetExceeded        = crerr.New("move budget exceeded")
	ErrCapacity              = crerr.New("roster capacity exceeded")
	ErrState                 = crerr.New("invalid state")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)

// Error kinds exposed to clients.
const (
	KindValidation     = "validation_error"
	KindPermission     = "permission_error"
	KindConflict       = "conflict_error"
	KindBudgetExceeded = "budget_exceeded_error"
	KindCapacity       = "capacity_error"
	KindState          = "state_error"
	KindNotFound       = "not_found_error"
	KindUnauthorized   = "unauthorized"
	KindUnavailable    = "dependency_unavailable"
	KindInternal       = "internal_error"
)

var kindBySentinel = []struct {
	sentinel error
	kind     string
}{
	{ErrValidation, KindValidation},
	{ErrPermission, KindPermission},
	{ErrConflict, KindConflict},
	{ErrBudgetExceeded, KindBudgetExceeded},
	{ErrCapacity, KindCapacity},
	{ErrState, KindState},
	{ErrNotFound, KindNotFound},
	{ErrUnauthorized, KindUnauthorized},
	{ErrDependencyUnavailable, KindUnavailable},
}

// ErrorKind classifies err into one of the client-facing kinds.
func ErrorKind(err error) string {
	for _, item := range kindBySentinel {
		if crerr.Is(err, item.sentinel) {
			return item.kind
		}
	}
	return KindInternal
}

func newKindError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// markKind attaches kind to err as a mark. The kind is matched with crerr.Is
// (see ErrorKind) while err's own chain stays reachable through errors.Is.
func markKind(err, kind error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, kind)
}
