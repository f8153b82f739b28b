// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"strconv"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillTask(ctx *reqContext, task enamel.Task, repr *restdata.Task) error {
	repr.FromTask(task)
	b := buildURLs(api.Router, "task", task.UUID).URL(&repr.URL, "task")
	if b.Error == nil && ctx.AtLeast(itemsSince) {
		b = buildURLs(api.Router).URL(&repr.ItemsURL, "task_items")
		repr.ItemsURL += "?task_id=" + strconv.Itoa(task.ID)
	}
	return b.Error
}

func (api *restAPI) createdTask(ctx *reqContext, task enamel.Task) (restdata.Task, error) {
	repr := restdata.Task{}
	err := api.fillTask(ctx, task, &repr)
	return repr, err
}

func (api *restAPI) TaskList(ctx *reqContext) (interface{}, error) {
	q, err := ctx.TaskQuery()
	if err != nil {
		return nil, err
	}
	tasks, err := api.Enamel.Tasks(q)
	if err != nil {
		return nil, err
	}
	resp := restdata.TaskList{Tasks: make([]restdata.Task, len(tasks))}
	for i, task := range tasks {
		err = api.fillTask(ctx, task, &resp.Tasks[i])
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (api *restAPI) TaskPost(ctx *reqContext, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Task)
	if !valid {
		return nil, errUnmarshal
	}
	task := repr.ToTask()
	if task.RequestID == "" {
		task.RequestID = ctx.RequestID
	}
	task, err := api.Enamel.CreateTask(task)
	if err != nil {
		return nil, err
	}
	out, err := api.createdTask(ctx, task)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: out.URL, Body: out}, nil
}

func (api *restAPI) TaskGet(ctx *reqContext) (interface{}, error) {
	return api.createdTask(ctx, ctx.Task)
}

// ServerBoot records a request to boot a server.  The actual work is
// done elsewhere; the client gets back the pending task.
func (api *restAPI) ServerBoot(ctx *reqContext, in interface{}) (interface{}, error) {
	boot, valid := in.(restdata.ServerBoot)
	if !valid {
		return nil, errUnmarshal
	}
	params, err := boot.Params()
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	task, err := api.Enamel.CreateTask(enamel.Task{
		Action:    "boot_server",
		State:     enamel.StatePending,
		RequestID: ctx.RequestID,
		UserID:    ctx.Header.Get("X-User-Id"),
		ProjectID: ctx.Header.Get("X-Project-Id"),
		Params:    params,
	})
	if err != nil {
		return nil, err
	}
	out, err := api.createdTask(ctx, task)
	if err != nil {
		return nil, err
	}
	return responseAccepted{Location: out.URL, Body: out}, nil
}

// PopulateServers adds the server boot route.
func (api *restAPI) PopulateServers(r *mux.Router) {
	r.Path("/servers").Name("servers").Handler(&resourceHandler{
		Representation: restdata.ServerBoot{},
		Context:        api.Context,
		Post:           api.ServerBoot,
	})
}

// PopulateTasks adds routes to list, create, and fetch tasks.
func (api *restAPI) PopulateTasks(r *mux.Router) {
	r.Path("/tasks").Name("tasks").Handler(&resourceHandler{
		Representation: restdata.Task{},
		Context:        api.Context,
		Get:            api.TaskList,
		Post:           api.TaskPost,
	})
	r.Path("/tasks/{task}").Name("task").Handler(&resourceHandler{
		Representation: restdata.Task{},
		Context:        api.Context,
		Get:            api.TaskGet,
	})
}
