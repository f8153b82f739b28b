// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/gorilla/mux"
)

var errNoTaskID = restdata.ErrBadRequest{
	Err: errors.New("task_id query parameter is required"),
}

func (api *restAPI) fillTaskItem(item enamel.TaskItem, repr *restdata.TaskItem) error {
	repr.FromTaskItem(item)
	return buildURLs(api.Router, "item", item.UUID).
		URL(&repr.URL, "task_item").
		Error
}

func (api *restAPI) TaskItemList(ctx *reqContext) (interface{}, error) {
	taskID, err := ctx.intParam("task_id", 0)
	if err != nil {
		return nil, err
	}
	if ctx.QueryParams.Get("task_id") == "" {
		return nil, errNoTaskID
	}
	items, err := api.Enamel.TaskItems(taskID)
	if _, missing := err.(enamel.ErrNoSuchTask); missing {
		return nil, restdata.ErrNotFound{Err: err}
	} else if err != nil {
		return nil, err
	}
	resp := restdata.TaskItemList{TaskItems: make([]restdata.TaskItem, len(items))}
	for i, item := range items {
		err = api.fillTaskItem(item, &resp.TaskItems[i])
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (api *restAPI) TaskItemPost(ctx *reqContext, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.TaskItem)
	if !valid {
		return nil, errUnmarshal
	}
	item, err := api.Enamel.CreateTaskItem(repr.ToTaskItem())
	if _, missing := err.(enamel.ErrNoSuchTask); missing {
		// The task is named in the body, not the URL
		return nil, restdata.ErrBadRequest{Err: err}
	} else if err != nil {
		return nil, err
	}
	out := restdata.TaskItem{}
	err = api.fillTaskItem(item, &out)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: out.URL, Body: out}, nil
}

func (api *restAPI) TaskItemGet(ctx *reqContext) (interface{}, error) {
	out := restdata.TaskItem{}
	err := api.fillTaskItem(ctx.TaskItem, &out)
	return out, err
}

// PopulateTaskItems adds routes to list, create, and fetch task
// items.  The collection only exists from microversion 1.0.
func (api *restAPI) PopulateTaskItems(r *mux.Router) {
	r.Path("/task_items").Name("task_items").Handler(&resourceHandler{
		Representation: restdata.TaskItem{},
		Since:          itemsSince,
		Context:        api.Context,
		Get:            api.TaskItemList,
		Post:           api.TaskItemPost,
	})
	r.Path("/task_items/{item}").Name("task_item").Handler(&resourceHandler{
		Representation: restdata.TaskItem{},
		Context:        api.Context,
		Get:            api.TaskItemGet,
	})
}
