// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package enamel

import (
	"fmt"

	"github.com/satori/go.uuid"
)

// ErrNoSuchTask is returned when a task is looked up, by UUID or by
// ID, and it does not exist.  Exactly one of UUID or ID is set.
type ErrNoSuchTask struct {
	UUID string
	ID   int
}

func (err ErrNoSuchTask) Error() string {
	if err.UUID == "" {
		return fmt.Sprintf("Task with id %d could not be found.", err.ID)
	}
	return fmt.Sprintf("Task %s could not be found.", err.UUID)
}

// ErrNoSuchTaskItem is returned when a task item is looked up by UUID
// and it does not exist.
type ErrNoSuchTaskItem struct {
	UUID string
}

func (err ErrNoSuchTaskItem) Error() string {
	return fmt.Sprintf("TaskItem %s could not be found.", err.UUID)
}

// ErrBadUUID is returned when a caller provides a UUID for a new
// record that is not a valid UUID.
type ErrBadUUID struct {
	UUID string
}

func (err ErrBadUUID) Error() string {
	return fmt.Sprintf("Invalid UUID %q", err.UUID)
}

// ErrDuplicateUUID is returned when a caller creates a record with a
// UUID that another record of the same kind already has.
type ErrDuplicateUUID struct {
	UUID string
}

func (err ErrDuplicateUUID) Error() string {
	return fmt.Sprintf("UUID %s is already in use", err.UUID)
}

// AssignUUID returns uuidString if it is a valid UUID, in canonical
// form, or a newly generated UUID if it is empty.  Backends call this
// when creating records.
func AssignUUID(uuidString string) (string, error) {
	if uuidString == "" {
		return uuid.NewV4().String(), nil
	}
	u, err := uuid.FromString(uuidString)
	if err != nil {
		return "", ErrBadUUID{UUID: uuidString}
	}
	return u.String(), nil
}
