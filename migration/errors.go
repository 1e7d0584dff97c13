package migration

import "errors"

var (
	// ErrDependencyUnsatisfied: a predecessor has not been applied yet.
	ErrDependencyUnsatisfied = errors.New("dependency unsatisfied")
	// ErrOperationConflict: the target table or column is already in the state the operation creates, or is missing.
	ErrOperationConflict = errors.New("operation conflict")
	// ErrDefaultTypeMismatch: a default cannot be coerced to the declared field type.
	ErrDefaultTypeMismatch = errors.New("default value type mismatch")

	ErrAlreadyApplied      = errors.New("migration already applied")
	ErrUnknownMigration    = errors.New("unknown migration")
	ErrNodeNotFound        = errors.New("dependency references unknown migration")
	ErrCycle               = errors.New("circular dependency")
	ErrInconsistentHistory = errors.New("inconsistent migration history")
	ErrChecksumMismatch    = errors.New("applied migration has been modified")
)
