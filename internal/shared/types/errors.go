package types

import "errors"

var (
	ErrObjectNotFound       = errors.New("export object not found")
	ErrAggregateUnavailable = errors.New("no aggregate available")
	ErrNotFound             = errors.New("record not found")
	ErrRuleNotFound         = errors.New("alert rule not found")
	ErrInvalidRule          = errors.New("invalid alert rule")
	ErrDedupConflict        = errors.New("notification state is contended, event not processed")
	ErrUnsupportedBackend   = errors.New("unsupported backend")
)
