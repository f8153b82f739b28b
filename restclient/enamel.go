// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an enamel.Enamel HTTP REST client that
// talks to the matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-enamel/cmd/enamel-api runs a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//	e, err := restclient.New("http://localhost:8989/")
//
// The client asks for the latest microversion unless told otherwise.
// Task items are only available at microversion 1.0 and later.
package restclient

import (
	"errors"
	"net/url"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
)

// ErrNoTaskItems is returned from the task item calls when the
// server, at the requested microversion, does not offer them.
var ErrNoTaskItems = errors.New("task items are not available at this microversion")

// New creates a new enamel interface that speaks to an external REST
// server at the latest microversion it supports.
func New(baseURL string) (enamel.Enamel, error) {
	return NewWithVersion(baseURL, microversion.Latest)
}

// NewWithVersion creates a new enamel interface that speaks to an
// external REST server, requesting a specific microversion.
func NewWithVersion(baseURL, version string) (enamel.Enamel, error) {
	var (
		err  error
		base *url.URL
		c    *restEnamel
	)
	base, err = url.Parse(baseURL)
	if err == nil && base.Host == "" {
		err = errors.New("restclient: base URL must be absolute")
	}
	if err == nil {
		c = &restEnamel{
			resource: resource{URL: base, Version: version},
		}
		err = c.Refresh()
	}

	if err != nil {
		return nil, err
	}
	return c, nil
}

type restEnamel struct {
	resource
	Representation restdata.RootData
}

func (c *restEnamel) Refresh() error {
	c.Representation = restdata.RootData{}
	return c.Get(&c.Representation)
}

func (c *restEnamel) CreateTask(task enamel.Task) (enamel.Task, error) {
	var in, out restdata.Task
	in.FromTask(task)
	err := c.PostTo(c.Representation.TasksURL, map[string]interface{}{}, in, &out)
	if err != nil {
		return enamel.Task{}, translate(err, task.UUID, 0)
	}
	return out.ToTask(), nil
}

func (c *restEnamel) Task(uuid string) (enamel.Task, error) {
	var out restdata.Task
	err := c.GetFrom(c.Representation.TaskURL, map[string]interface{}{"task": uuid}, &out)
	if err != nil {
		return enamel.Task{}, translate(err, uuid, 0)
	}
	return out.ToTask(), nil
}

func queryToParams(q enamel.TaskQuery) map[string]interface{} {
	result := make(map[string]interface{})
	if len(q.States) > 0 {
		states := make([]interface{}, len(q.States))
		for i, state := range q.States {
			states[i] = state
		}
		result["state"] = states
	}
	if q.PreviousID != 0 {
		result["previous"] = q.PreviousID
	}
	if q.Limit != 0 {
		result["limit"] = q.Limit
	}
	return result
}

func (c *restEnamel) Tasks(q enamel.TaskQuery) ([]enamel.Task, error) {
	var repr restdata.TaskList
	err := c.GetFrom(c.Representation.TasksURL, queryToParams(q), &repr)
	if err != nil {
		return nil, translate(err, "", 0)
	}
	tasks := make([]enamel.Task, len(repr.Tasks))
	for i, task := range repr.Tasks {
		tasks[i] = task.ToTask()
	}
	return tasks, nil
}

func (c *restEnamel) CreateTaskItem(item enamel.TaskItem) (enamel.TaskItem, error) {
	if c.Representation.TaskItemsURL == "" {
		return enamel.TaskItem{}, ErrNoTaskItems
	}
	var in, out restdata.TaskItem
	in.FromTaskItem(item)
	err := c.PostTo(c.Representation.TaskItemsURL, map[string]interface{}{}, in, &out)
	if err != nil {
		err = translate(err, item.UUID, item.TaskID)
		if _, missing := err.(enamel.ErrNoSuchTask); missing {
			// The missing thing is the owning task, not the item
			err = enamel.ErrNoSuchTask{ID: item.TaskID}
		}
		return enamel.TaskItem{}, err
	}
	return out.ToTaskItem(), nil
}

func (c *restEnamel) TaskItem(uuid string) (enamel.TaskItem, error) {
	var out restdata.TaskItem
	err := c.GetFrom(c.Representation.TaskItemURL, map[string]interface{}{"item": uuid}, &out)
	if err != nil {
		return enamel.TaskItem{}, translate(err, uuid, 0)
	}
	return out.ToTaskItem(), nil
}

func (c *restEnamel) TaskItems(taskID int) ([]enamel.TaskItem, error) {
	if c.Representation.TaskItemsURL == "" {
		return nil, ErrNoTaskItems
	}
	var repr restdata.TaskItemList
	err := c.GetFrom(c.Representation.TaskItemsURL, map[string]interface{}{"task_id": taskID}, &repr)
	if err != nil {
		return nil, translate(err, "", taskID)
	}
	items := make([]enamel.TaskItem, len(repr.TaskItems))
	for i, item := range repr.TaskItems {
		items[i] = item.ToTaskItem()
	}
	return items, nil
}
