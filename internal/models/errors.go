package models

import "errors"

// Domain errors.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrAmbiguousRef  = errors.New("task reference matches more than one task")
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrNoFieldsToSet = errors.New("no fields to update")
)
