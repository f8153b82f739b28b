// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.
//
// # API Usage
//
// HTTP GET the root document.  This returns a JSON serialization of
// RootData: a list of the top-level resources, in the OpenStack
// "resources" style, plus URI templates (RFC 6570) for individual
// tasks and task items.  For instance:
//
//	{
//	    "resources": [
//	        {"name": "servers",
//	         "links": [{"rel": "self", "href": "http://host/servers"}]},
//	        ...
//	    ],
//	    "tasks_url": "/tasks{?state*,previous,limit}",
//	    "task_url": "/tasks/{task}",
//	    ...
//	}
//
// While the URL structure is predictable, it is not part of the API
// contract.  Clients should follow the links.
//
// # Microversions
//
// Every request may carry an OpenStack-enamel-API-Version header,
// "enamel 1.0" or "enamel latest", and every response says which
// version it used in the same header.  See the microversion package.
// Task item collections require version 1.0.
//
// # Errors
//
// Errors are returned as failing HTTP statuses with a body of
//
//	{"errors": [{"status": 404, "request_id": "...",
//	             "title": "Not Found", "detail": "..."}]}
//
// Errors this package knows about also carry a "code" naming the
// error type, so clients can reconstruct them.
//
// Timestamps are represented in JSON as RFC 3339 strings.  A task or
// task item that has not ended has no "ended_at" field.
package restdata

import (
	"time"

	"github.com/diffeo/go-enamel/enamel"
)

// VendorJSONMediaType is the preferred, most specific MIME type for
// the JSON representation of this content.
const VendorJSONMediaType = "application/vnd.enamel+json"

// JSONMediaType is the generic JSON MIME type, which is also accepted.
const JSONMediaType = "application/json"

// ServiceType is the microversion service type of this API.
const ServiceType = "enamel"

// Versions lists every microversion of this API, oldest first.
// Version 1.0 added task items.
var Versions = []string{"0.1", "0.9", "1.0"}

// VersionHeader is the request and response header carrying the
// microversion.
const VersionHeader = "OpenStack-" + ServiceType + "-API-Version"

// Link is a single typed link to another resource.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// ResourceLink names a top-level resource and how to find it.
type ResourceLink struct {
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

// RootData is returned by the root path.
type RootData struct {
	// Resources lists every top-level resource collection, each
	// with a "self" link.
	Resources []ResourceLink `json:"resources"`

	// ServersURL accepts HTTP POST of a server boot request,
	// returning an accepted Task.
	ServersURL string `json:"servers_url"`

	// TasksURL lists tasks (HTTP GET, returning a TaskList) or
	// creates one (HTTP POST of a Task).  This is a URI template
	// with optional query parameters "state" (repeatable),
	// "previous", and "limit".
	TasksURL string `json:"tasks_url"`

	// TaskURL retrieves a single Task.  This is a URI template
	// with a single parameter, "task", the task UUID.
	TaskURL string `json:"task_url"`

	// TaskItemsURL lists the items of one task (HTTP GET,
	// returning a TaskItemList) or creates one (HTTP POST of a
	// TaskItem).  This is a URI template with a "task_id"
	// query parameter, required for GET.  It is only present at
	// microversion 1.0 and later.
	TaskItemsURL string `json:"task_items_url,omitempty"`

	// TaskItemURL retrieves a single TaskItem.  This is a URI
	// template with a single parameter, "item", the item UUID.
	TaskItemURL string `json:"task_item_url"`
}

// Task is the representation of a single task.  When creating a
// task, ID, URL, and the timestamps other than EndedAt are ignored.
type Task struct {
	URL       string     `json:"url,omitempty"`
	ID        int        `json:"id"`
	UUID      string     `json:"uuid"`
	Action    string     `json:"action"`
	State     string     `json:"state"`
	RequestID string     `json:"request_id"`
	UserID    string     `json:"user_id"`
	ProjectID string     `json:"project_id"`
	Params    string     `json:"params"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// ItemsURL lists this task's items.  It is only present at
	// microversion 1.0 and later.
	ItemsURL string `json:"items_url,omitempty"`
}

// TaskList is a list of tasks.
type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// TaskItem is the representation of a single task item.
type TaskItem struct {
	URL       string     `json:"url,omitempty"`
	ID        int        `json:"id"`
	UUID      string     `json:"uuid"`
	Action    string     `json:"action"`
	State     string     `json:"state"`
	TaskID    int        `json:"task_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// TaskItemList is a list of task items.
type TaskItemList struct {
	TaskItems []TaskItem `json:"task_items"`
}

// ServerBoot is the body of a server boot request.  Its contents are
// opaque to this service and are stored as the task parameters.
type ServerBoot map[string]interface{}

func endedToJSON(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func endedFromJSON(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// FromTask fills in the data fields of a task representation, but
// not its URLs.
func (t *Task) FromTask(task enamel.Task) {
	t.ID = task.ID
	t.UUID = task.UUID
	t.Action = task.Action
	t.State = task.State
	t.RequestID = task.RequestID
	t.UserID = task.UserID
	t.ProjectID = task.ProjectID
	t.Params = task.Params
	t.CreatedAt = task.CreatedAt
	t.UpdatedAt = task.UpdatedAt
	t.EndedAt = endedToJSON(task.EndedAt)
}

// ToTask converts a representation back to a task.
func (t Task) ToTask() enamel.Task {
	return enamel.Task{
		ID:        t.ID,
		UUID:      t.UUID,
		Action:    t.Action,
		State:     t.State,
		RequestID: t.RequestID,
		UserID:    t.UserID,
		ProjectID: t.ProjectID,
		Params:    t.Params,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		EndedAt:   endedFromJSON(t.EndedAt),
	}
}

// FromTaskItem fills in the data fields of a task item
// representation, but not its URLs.
func (t *TaskItem) FromTaskItem(item enamel.TaskItem) {
	t.ID = item.ID
	t.UUID = item.UUID
	t.Action = item.Action
	t.State = item.State
	t.TaskID = item.TaskID
	t.CreatedAt = item.CreatedAt
	t.UpdatedAt = item.UpdatedAt
	t.EndedAt = endedToJSON(item.EndedAt)
}

// ToTaskItem converts a representation back to a task item.
func (t TaskItem) ToTaskItem() enamel.TaskItem {
	return enamel.TaskItem{
		ID:        t.ID,
		UUID:      t.UUID,
		Action:    t.Action,
		State:     t.State,
		TaskID:    t.TaskID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		EndedAt:   endedFromJSON(t.EndedAt),
	}
}
