package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Class 23505, unique_violation.
const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// With a non-empty constraint only that specific index matches, which
// keeps users_email_key conflicts distinct from the partial index guarding
// one Active reset token per email.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != pqUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
