package domain

import "errors"

// ErrInvalidWorkItem indicates that a work item failed validation.
var ErrInvalidWorkItem = errors.New("invalid work item")

// ErrInvalidParams indicates that inference parameters are out of range.
var ErrInvalidParams = errors.New("invalid inference parameters")

// ErrNotDecomposable indicates the work item type has no child type.
var ErrNotDecomposable = errors.New("work item type cannot be decomposed")

// ErrUnsupportedType indicates no prompt exists for the type and operation.
var ErrUnsupportedType = errors.New("unsupported work item type for operation")
