// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/memory"
	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni"
)

const versionHeader = "OpenStack-enamel-API-Version"

func testCatalog(t *testing.T) *microversion.Catalog {
	c, err := microversion.NewCatalog("enamel", []string{"0.1", "0.9", "1.0"})
	require.NoError(t, err)
	return c
}

type fixture struct {
	t       *testing.T
	store   enamel.Enamel
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	store := memory.New()
	return &fixture{t: t, store: store, handler: NewRouter(store, testCatalog(t))}
}

func (f *fixture) do(method, path, version string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if version != "" {
		req.Header.Set(versionHeader, "enamel "+version)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, restdata.Decode(rec.Header().Get("Content-Type"), rec.Body, out))
}

func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) restdata.ErrorItem {
	var resp restdata.ErrorResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Errors, 1)
	return resp.Errors[0]
}

func TestVersionHeaders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "enamel 0.1", rec.Header().Get(versionHeader))
	assert.Equal(t, versionHeader, rec.Header().Get("Vary"))

	rec = f.do(http.MethodGet, "/", "latest", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "enamel 1.0", rec.Header().Get(versionHeader))

	rec = f.do(http.MethodGet, "/", "0.9", nil, "")
	assert.Equal(t, "enamel 0.9", rec.Header().Get(versionHeader))
}

func TestVersionNotAcceptable(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", "2.5", nil, "")
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, "enamel 0.1", rec.Header().Get(versionHeader))
	assert.Equal(t, versionHeader, rec.Header().Get("Vary"))

	item := errorDetail(t, rec)
	assert.Equal(t, http.StatusNotAcceptable, item.Status)
	assert.Equal(t, "Not Acceptable", item.Title)
	assert.Equal(t, "unable to use provided version: Unacceptable version header: 2.5", item.Detail)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), item.RequestID)

	rec = f.do(http.MethodGet, "/", "one.two", nil, "")
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	item = errorDetail(t, rec)
	assert.Equal(t, "unable to use provided version: invalid version string: one.two", item.Detail)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)
	first := f.do(http.MethodGet, "/", "", nil, "").Header().Get(RequestIDHeader)
	second := f.do(http.MethodGet, "/", "", nil, "").Header().Get(RequestIDHeader)
	_, err := uuid.FromString(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNotFoundEnvelope(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/nowhere", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "enamel 0.1", rec.Header().Get(versionHeader))
	item := errorDetail(t, rec)
	assert.Equal(t, "Not Found", item.Title)
	assert.NotEmpty(t, item.RequestID)

	rec = f.do(http.MethodGet, "/tasks/00000000-0000-0000-0000-000000000000", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	item = errorDetail(t, rec)
	assert.Equal(t, "ErrNoSuchTask", item.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodDelete, "/tasks", "", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	rec = f.do(http.MethodGet, "/servers", "", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootDocument(t *testing.T) {
	f := newFixture(t)

	var root restdata.RootData
	decodeBody(t, f.do(http.MethodGet, "/", "0.9", nil, ""), &root)
	names := []string{}
	for _, r := range root.Resources {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"servers", "tasks"}, names)
	if assert.NotEmpty(t, root.Resources) && assert.Len(t, root.Resources[0].Links, 1) {
		assert.Equal(t, "self", root.Resources[0].Links[0].Rel)
		assert.Equal(t, "http://example.com/servers", root.Resources[0].Links[0].Href)
	}
	assert.Equal(t, "/tasks{?state*,previous,limit}", root.TasksURL)
	assert.Equal(t, "/tasks/{task}", root.TaskURL)
	assert.Equal(t, "/task_items/{item}", root.TaskItemURL)
	assert.Empty(t, root.TaskItemsURL)

	root = restdata.RootData{}
	decodeBody(t, f.do(http.MethodGet, "/", "1.0", nil, ""), &root)
	assert.Len(t, root.Resources, 3)
	assert.Equal(t, "/task_items{?task_id}", root.TaskItemsURL)
}

func TestServerBoot(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/servers",
		strings.NewReader(`{"server": {"name": "foo"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "alice")
	req.Header.Set("X-Project-Id", "demo")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var out restdata.Task
	decodeBody(t, rec, &out)
	assert.Equal(t, "/tasks/"+out.UUID, rec.Header().Get("Location"))

	task, err := f.store.Task(out.UUID)
	if assert.NoError(t, err) {
		assert.Equal(t, "boot_server", task.Action)
		assert.Equal(t, enamel.StatePending, task.State)
		assert.Equal(t, "alice", task.UserID)
		assert.Equal(t, "demo", task.ProjectID)
		assert.Equal(t, rec.Header().Get(RequestIDHeader), task.RequestID)
		assert.Equal(t, `{"server":{"name":"foo"}}`, task.Params)
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/servers", "", strings.NewReader("name=foo"), "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestNotAcceptableMediaType(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	item := errorDetail(t, rec)
	assert.Equal(t, "Need [application/json application/vnd.enamel+json]", item.Detail)
}

func TestTaskItemsGated(t *testing.T) {
	f := newFixture(t)
	task, err := f.store.CreateTask(enamel.Task{Action: "boot_server", State: enamel.StatePending})
	require.NoError(t, err)
	path := "/task_items?task_id=" + strconv.Itoa(task.ID)

	rec := f.do(http.MethodGet, path, "0.9", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, path, "1.0", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var list restdata.TaskItemList
	decodeBody(t, rec, &list)
	assert.Empty(t, list.TaskItems)

	rec = f.do(http.MethodGet, "/task_items", "1.0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := bytes.NewBufferString(`{"action": "create_volume", "state": "pending", "task_id": ` + strconv.Itoa(task.ID) + `}`)
	rec = f.do(http.MethodPost, "/task_items", "1.0", body, restdata.VendorJSONMediaType)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var item restdata.TaskItem
	decodeBody(t, rec, &item)
	assert.Equal(t, task.ID, item.TaskID)
	assert.Equal(t, "/task_items/"+item.UUID, rec.Header().Get("Location"))

	// The single item is reachable at any version
	rec = f.do(http.MethodGet, "/task_items/"+item.UUID, "0.1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskItemsURL(t *testing.T) {
	f := newFixture(t)
	task, err := f.store.CreateTask(enamel.Task{Action: "boot_server", State: enamel.StatePending})
	require.NoError(t, err)

	var out restdata.Task
	decodeBody(t, f.do(http.MethodGet, "/tasks/"+task.UUID, "0.9", nil, ""), &out)
	assert.Empty(t, out.ItemsURL)

	out = restdata.Task{}
	decodeBody(t, f.do(http.MethodGet, "/tasks/"+task.UUID, "1.0", nil, ""), &out)
	assert.Equal(t, "/task_items?task_id="+strconv.Itoa(task.ID), out.ItemsURL)
}

func TestTaskListBadQuery(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/tasks?limit=lots", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodGet, "/tasks?limit=-1", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	catalog := testCatalog(t)
	n := negroni.New(
		recovery(logrus.StandardLogger()),
		negroni.HandlerFunc(requestID),
		negotiateVersion(catalog),
	)
	n.UseHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	n.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	item := errorDetail(t, rec)
	assert.Equal(t, "boom", item.Detail)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), item.RequestID)
	assert.Equal(t, "enamel 0.1", rec.Header().Get(versionHeader))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	catalog := testCatalog(t)
	h, err := New(memory.New(), catalog, Options{Registerer: reg})
	require.NoError(t, err)
	// A second handler shares the already-registered collectors
	_, err = New(memory.New(), catalog, Options{Registerer: reg})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if family.GetName() == "enamel_api_requests_total" {
			found = true
			if assert.Len(t, family.GetMetric(), 1) {
				assert.Equal(t, 1.0, family.GetMetric()[0].GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found)
}

func TestMetricsNotAcceptable(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(memory.New(), testCatalog(t), Options{Registerer: reg})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(versionHeader, "enamel 7.7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotAcceptable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(versionHeader, "enamel 1.0")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "enamel_api_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			counts[labels["code"]+"/"+labels["version"]] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"406/": 1, "200/1.0": 1}, counts)
}
