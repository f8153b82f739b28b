// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// Options holds optional settings for New.
type Options struct {
	// Logger receives panic reports.  If nil, the logrus standard
	// logger is used.
	Logger logrus.FieldLogger

	// RequestLogger, if non-nil, receives one debug-level entry
	// per request.
	RequestLogger *logrus.Logger

	// Registerer, if non-nil, receives the API's Prometheus
	// collectors.
	Registerer prometheus.Registerer
}

// NewRouter creates a new HTTP handler that processes all enamel
// requests, with no metrics or request logging.  All resources are
// under the URL path root.
func NewRouter(e enamel.Enamel, catalog *microversion.Catalog) http.Handler {
	h, _ := New(e, catalog, Options{})
	return h
}

// New creates a new HTTP handler that processes all enamel requests.
// Requests pass through panic recovery and request ID assignment,
// then metrics and logging, then microversion negotiation, before
// reaching the resource handlers.  The only possible error is a
// failure to register metrics.
func New(e enamel.Enamel, catalog *microversion.Catalog, opts Options) (http.Handler, error) {
	var m *metrics
	if opts.Registerer != nil {
		var err error
		m, err = newMetrics(opts.Registerer)
		if err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := mux.NewRouter()
	PopulateRouter(r, e, catalog)

	n := negroni.New()
	n.Use(recovery(logger))
	n.UseFunc(requestID)
	n.Use(observe(m, opts.RequestLogger))
	n.Use(negotiateVersion(catalog))
	n.UseHandler(r)
	return n, nil
}

// PopulateRouter adds enamel routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the API under a subpath:
//
//	import "github.com/diffeo/go-enamel/memory"
//	import "github.com/gorilla/mux"
//	r := mux.NewRouter()
//	s := r.PathPrefix("/enamel").Subrouter()
//	PopulateRouter(s, memory.New(), catalog)
//
// Without the middleware New adds, every request is served at the
// catalog's minimum version and has no request ID.
func PopulateRouter(r *mux.Router, e enamel.Enamel, catalog *microversion.Catalog) {
	api := &restAPI{Enamel: e, Catalog: catalog, Router: r}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the enamel REST API.
type restAPI struct {
	Enamel  enamel.Enamel
	Catalog *microversion.Catalog
	Router  *mux.Router
}

// itemsSince is the microversion that introduced task items.
const itemsSince = "1.0"

// PopulateRouter adds all enamel URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	api.PopulateServers(r)
	api.PopulateTasks(r)
	api.PopulateTaskItems(r)
	r.Path("/").Name("root").Handler(&resourceHandler{
		Representation: restdata.RootData{},
		Context:        api.Context,
		Get:            api.RootDocument,
	})
	r.NotFoundHandler = http.HandlerFunc(notFound)
}

// topLevel lists the route names of the top-level collections, and
// the microversion each appeared in.
var topLevel = []struct {
	Route string
	Since string
}{
	{"servers", ""},
	{"tasks", ""},
	{"task_items", itemsSince},
}

func (api *restAPI) RootDocument(ctx *reqContext) (interface{}, error) {
	resp := restdata.RootData{}
	for _, top := range topLevel {
		if top.Since != "" && !ctx.AtLeast(top.Since) {
			continue
		}
		var href string
		err := buildURLs(api.Router).URL(&href, top.Route).Error
		if err != nil {
			return nil, err
		}
		resp.Resources = append(resp.Resources, restdata.ResourceLink{
			Name:  top.Route,
			Links: []restdata.Link{{Rel: "self", Href: ctx.BaseURL + href}},
		})
	}
	err := buildURLs(api.Router).
		URL(&resp.ServersURL, "servers").
		URL(&resp.TasksURL, "tasks").
		Template(&resp.TaskURL, "task", "task").
		Template(&resp.TaskItemURL, "task_item", "item").
		Error
	if err == nil && ctx.AtLeast(itemsSince) {
		err = buildURLs(api.Router).URL(&resp.TaskItemsURL, "task_items").Error
		resp.TaskItemsURL += "{?task_id}"
	}
	resp.TasksURL += "{?state*,previous,limit}"
	return resp, err
}
