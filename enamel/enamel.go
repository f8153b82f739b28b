// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package enamel defines the abstract storage API behind the enamel
// service.
//
// The service tracks long-running user requests as tasks.  A Task is
// created when a request such as "boot a server" is accepted, and is
// broken down into TaskItems, each an individual step.  Specific
// backends (in-memory, PostgreSQL, or a REST client talking to a
// remote service) implement the Enamel interface.
//
// Tasks and task items are plain values.  Each has a database-assigned
// integer ID, used for references between records, and a UUID, used
// to name the record to the outside world.
package enamel

import "time"

// Well-known task and task item states.
const (
	StatePending    = "pending"
	StateInProgress = "in-progress"
	StateComplete   = "complete"
	StateError      = "error"
)

// Task is a single user-visible unit of work.
type Task struct {
	// ID is assigned by the backend when the task is created.
	ID int

	// UUID is the externally visible name of the task.  If it is
	// empty when the task is created, one is generated.
	UUID string

	// Action names what the task does, e.g. "boot_server".
	Action string

	// State is one of the State* constants, or some other
	// action-specific value.
	State string

	// RequestID is the ID of the API request that created the
	// task.
	RequestID string

	// UserID and ProjectID identify who asked for the task.
	UserID    string
	ProjectID string

	// Params holds the serialized request parameters.
	Params string

	// CreatedAt and UpdatedAt are maintained by the backend.
	CreatedAt time.Time
	UpdatedAt time.Time

	// EndedAt is the time the task finished, or the zero time if
	// it has not.
	EndedAt time.Time
}

// TaskItem is one step of a Task.
type TaskItem struct {
	ID        int
	UUID      string
	Action    string
	State     string
	TaskID    int
	CreatedAt time.Time
	UpdatedAt time.Time
	EndedAt   time.Time
}

// TaskQuery selects a subset of tasks.
type TaskQuery struct {
	// States, if non-empty, only returns tasks in one of these
	// states.
	States []string

	// PreviousID, if non-zero, only returns tasks with an ID
	// greater than this.  Passing the ID of the last task in one
	// page of results gets the next page.
	PreviousID int

	// Limit, if positive, returns at most this many tasks.
	Limit int
}

// Enamel is the principal interface to task storage.
type Enamel interface {
	// CreateTask stores a new task.  The ID, CreatedAt, and
	// UpdatedAt fields of task are ignored, and UUID is generated
	// if empty.  Returns the task as stored.  If UUID is set but
	// is not a valid UUID, returns ErrBadUUID; if another task
	// already has it, returns ErrDuplicateUUID.
	CreateTask(task Task) (Task, error)

	// Task retrieves a task by its UUID.  If there is no such
	// task, returns an instance of ErrNoSuchTask.
	Task(uuid string) (Task, error)

	// Tasks returns the tasks matching a query, ordered by ID.
	Tasks(query TaskQuery) ([]Task, error)

	// CreateTaskItem stores a new task item.  The TaskID field
	// must name an existing task; if it does not, returns an
	// instance of ErrNoSuchTask.  Other fields are handled as in
	// CreateTask.
	CreateTaskItem(item TaskItem) (TaskItem, error)

	// TaskItem retrieves a task item by its UUID.  If there is no
	// such item, returns an instance of ErrNoSuchTaskItem.
	TaskItem(uuid string) (TaskItem, error)

	// TaskItems returns all of the items of the task with the
	// given ID, ordered by ID.  If there is no such task, returns
	// an instance of ErrNoSuchTask.
	TaskItems(taskID int) ([]TaskItem, error)
}
