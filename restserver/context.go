// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/gorilla/mux"
)

// errUnmarshal is returned if the post contract is violated and a
// handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// reqContext holds all of the information and objects that can be
// extracted from the request and its URL parameters.
type reqContext struct {
	// Version is the negotiated microversion.
	Version microversion.Version

	// RequestID is this request's unique ID.
	RequestID string

	// BaseURL is the scheme and host the client used to reach
	// this server, for building absolute links.
	BaseURL string

	Task        enamel.Task
	TaskItem    enamel.TaskItem
	Header      http.Header
	QueryParams url.Values
}

func (api *restAPI) Context(req *http.Request) (ctx *reqContext, err error) {
	ctx = &reqContext{
		Header:      req.Header,
		QueryParams: req.URL.Query(),
	}

	var present bool
	ctx.Version, present = VersionFrom(req.Context())
	if !present {
		// Not behind the middleware; act as an old client
		ctx.Version = api.Catalog.MinVersion()
	}
	ctx.RequestID, _ = RequestIDFrom(req.Context())

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	ctx.BaseURL = scheme + "://" + req.Host

	vars := mux.Vars(req)
	var task, item string

	if task, present = vars["task"]; present && err == nil {
		ctx.Task, err = api.Enamel.Task(task)
		if _, missing := err.(enamel.ErrNoSuchTask); missing {
			err = restdata.ErrNotFound{Err: err}
		}
	}

	if item, present = vars["item"]; present && err == nil {
		ctx.TaskItem, err = api.Enamel.TaskItem(item)
		if _, missing := err.(enamel.ErrNoSuchTaskItem); missing {
			err = restdata.ErrNotFound{Err: err}
		}
	}

	return
}

// intParam looks at ctx.QueryParams for an integer parameter named
// name.  If it is absent, returns def.  If it is present but not an
// integer, returns a bad-request error.
func (ctx *reqContext) intParam(name string, def int) (int, error) {
	s := ctx.QueryParams.Get(name)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, restdata.ErrBadRequest{Err: err}
	}
	return i, nil
}

// TaskQuery builds a task query from query parameters.  This can
// fail if a non-integer previous ID or limit is provided, so it
// should only be called if a specific route wants it.
func (ctx *reqContext) TaskQuery() (q enamel.TaskQuery, err error) {
	q.States = ctx.QueryParams["state"]
	q.PreviousID, err = ctx.intParam("previous", 0)
	if err == nil {
		q.Limit, err = ctx.intParam("limit", 0)
	}
	if err == nil && q.Limit < 0 {
		err = restdata.ErrBadRequest{Err: errors.New("limit must not be negative")}
	}
	return
}

// AtLeast returns whether the negotiated microversion is at least
// the named version.
func (ctx *reqContext) AtLeast(version string) bool {
	return !ctx.Version.Less(microversion.MustParseVersion(version))
}
