// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "Openstack-Request-ID"

type contextKey int

const (
	requestIDKey contextKey = iota
	versionKey
	observedKey
)

// observed carries the negotiated version back out to observe, which
// runs before negotiation.
type observed struct {
	version string
}

// RequestIDFrom returns the request ID the middleware stored in ctx.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// VersionFrom returns the microversion negotiated for the request
// whose context is ctx.
func VersionFrom(ctx context.Context) (microversion.Version, bool) {
	v, ok := ctx.Value(versionKey).(microversion.Version)
	return v, ok
}

// writeError sends an error envelope outside of a resourceHandler.
func writeError(rw http.ResponseWriter, req *http.Request, err error) {
	requestID, _ := RequestIDFrom(req.Context())
	response := restdata.ErrorResponse{}
	response.FromError(err, requestID)
	rw.Header().Set("Content-Type", restdata.JSONMediaType)
	rw.WriteHeader(response.Errors[0].Status)
	_ = restdata.Encode(rw, response)
}

var errNoSuchResource = errors.New("The resource could not be found.")

// notFound renders unknown paths with the standard error envelope.
func notFound(rw http.ResponseWriter, req *http.Request) {
	writeError(rw, req, restdata.ErrNotFound{Err: errNoSuchResource})
}

// recovery turns a panic anywhere later in the chain into a 500
// error envelope.
func recovery(logger logrus.FieldLogger) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			// req predates the request ID middleware
			requestID := rw.Header().Get(RequestIDHeader)
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered, requestID)
			logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"panic":      response.Errors[0].Detail,
			}).Error("Panic serving request")
			if nrw, ok := rw.(negroni.ResponseWriter); ok && nrw.Written() {
				return
			}
			rw.Header().Set("Content-Type", restdata.JSONMediaType)
			rw.WriteHeader(http.StatusInternalServerError)
			_ = restdata.Encode(rw, response)
		}()
		next(rw, req)
	}
}

// requestID assigns every request a fresh ID and reports it back.
func requestID(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	id := uuid.NewV4().String()
	rw.Header().Set(RequestIDHeader, id)
	ctx := context.WithValue(req.Context(), requestIDKey, id)
	next(rw, req.WithContext(ctx))
}

// negotiateVersion picks the microversion for the request.  The
// response version headers are added just before the status line
// goes out, so that they are present on every response including
// errors; a failed negotiation reports the catalog minimum.
func negotiateVersion(catalog *microversion.Catalog) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		nrw, ok := rw.(negroni.ResponseWriter)
		if !ok {
			nrw = negroni.NewResponseWriter(rw)
		}
		version, err := catalog.Negotiate(req.Header)
		reported := version
		if err != nil {
			reported = catalog.MinVersion()
		}
		nrw.Before(func(w negroni.ResponseWriter) {
			w.Header().Set(catalog.Header(), catalog.HeaderValue(reported))
			catalog.AddVary(w.Header())
		})
		if err != nil {
			writeError(nrw, req, restdata.ErrNotAcceptable{Err: err})
			return
		}
		if o, ok := req.Context().Value(observedKey).(*observed); ok {
			o.version = version.String()
		}
		ctx := context.WithValue(req.Context(), versionKey, version)
		next(nrw, req.WithContext(ctx))
	}
}

// metrics holds the Prometheus collectors for the API.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "enamel",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "API requests by method, status, and microversion",
			},
			[]string{"method", "code", "version"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "enamel",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request latency by method and microversion",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "version"},
		),
	}
	c, err := register(reg, m.requests)
	if err != nil {
		return nil, err
	}
	m.requests = c.(*prometheus.CounterVec)
	c, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}
	m.duration = c.(*prometheus.HistogramVec)
	return m, nil
}

// register adds c to reg.  If an identical collector is already
// registered, as when several routers share the default registry,
// returns that one instead.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// observe records metrics and, if there is a logger, a log entry for
// each request.  Requests that failed version negotiation have an
// empty version.
func observe(m *metrics, logger *logrus.Logger) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		o := &observed{}
		req = req.WithContext(context.WithValue(req.Context(), observedKey, o))
		start := time.Now()
		next(rw, req)
		elapsed := time.Since(start)

		status := http.StatusOK
		if nrw, ok := rw.(negroni.ResponseWriter); ok && nrw.Status() != 0 {
			status = nrw.Status()
		}
		version := o.version
		if m != nil {
			m.requests.WithLabelValues(req.Method, strconv.Itoa(status), version).Inc()
			m.duration.WithLabelValues(req.Method, version).Observe(elapsed.Seconds())
		}
		if logger != nil {
			requestID, _ := RequestIDFrom(req.Context())
			logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     status,
				"version":    version,
				"duration":   elapsed,
			}).Debug("Request")
		}
	}
}
