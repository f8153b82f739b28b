// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with input and output values.
// The microversion and request ID have already been attached to the
// request by the middleware in middleware.go.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restdata"
)

// acceptableTypes lists the response media types, most preferred
// first.
var acceptableTypes = []string{
	restdata.JSONMediaType,
	restdata.VendorJSONMediaType,
}

var typeMap = map[string]string{
	"text/json":                  restdata.JSONMediaType,
	restdata.JSONMediaType:       restdata.JSONMediaType,
	restdata.VendorJSONMediaType: restdata.VendorJSONMediaType,
}

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return fmt.Sprintf("Need %v", acceptableTypes)
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

// responseAccepted is returned from handler functions that have
// recorded a request for later processing.
type responseAccepted struct {
	// Location holds the URL of the resource tracking the request.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

type resourceHandler struct {
	// Representation is an object representing this resource.
	// A copy of this object will be passed to handler functions.
	Representation interface{}

	// Since, if non-empty, is the oldest microversion at which
	// this resource exists.  Older requests get 404 Not Found.
	Since string

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*reqContext, error)

	// Get, if non-nil, returns a representation of the object.
	// Its return type should be the same type as Representation,
	// though this is not enforced.
	Get func(*reqContext) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action.  The
	// interface parameter is guaranteed to be the same type as
	// Representation, though in this case this is not necessarily
	// a representation of the resource.  The return can be any
	// useful return value, including responseCreated and
	// responseAccepted.
	Post func(*reqContext, interface{}) (interface{}, error)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *reqContext
		in, out      interface{}
		err          error
		status       int
		responseType string
		location     string
	)

	// Start by trying to come up with a response type, even before
	// trying to parse the input.  This determines what format an
	// error message could be sent back as.
	responseType, err = negotiateResponse(req)
	if err != nil {
		// Gotta pick something
		responseType = restdata.JSONMediaType
		if _, isStatus := err.(restdata.ErrorStatus); !isStatus {
			err = restdata.ErrBadRequest{Err: err}
		}
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	if err == nil && h.Since != "" {
		if ctx.Version.Less(microversion.MustParseVersion(h.Since)) {
			err = restdata.ErrNotFound{Err: fmt.Errorf("%s requires microversion %s", req.URL.Path, h.Since)}
		}
	}

	// Read the (JSON?) body, if it's there
	if err == nil && req.Method == http.MethodPost && h.Post != nil {
		// Make a new object of the same type as h.Representation
		ptr := reflect.New(reflect.TypeOf(h.Representation))
		contentType := req.Header.Get("Content-Type")
		err = restdata.Decode(contentType, req.Body, ptr.Interface())
		if err == nil {
			in = ptr.Elem().Interface()
		}
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = restdata.ErrMethodNotAllowed{Method: req.Method}
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		requestID := ""
		if ctx != nil {
			requestID = ctx.RequestID
		} else {
			requestID, _ = RequestIDFrom(req.Context())
		}
		response := restdata.ErrorResponse{}
		response.FromError(err, requestID)
		status = response.Errors[0].Status
		out = response
	} else if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		location = created.Location
		out = created.Body
	} else if accepted, isAccepted := out.(responseAccepted); isAccepted {
		status = http.StatusAccepted
		location = accepted.Location
		out = accepted.Body
	} else if out == nil {
		status = http.StatusNoContent
	} else {
		status = http.StatusOK
	}
	if req.Method == http.MethodHead {
		out = nil
	}

	// Actually send the response.  It is possible for the writer
	// to fail, but by the point this happens we've already written
	// an HTTP status line, so there is nothing better to do.
	if location != "" {
		resp.Header().Set("Location", location)
	}
	if out != nil {
		resp.Header().Set("Content-Type", responseType)
	}
	resp.WriteHeader(status)
	if out != nil {
		_ = restdata.Encode(resp, out)
	}
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.
func negotiateResponse(req *http.Request) (string, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", err
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", err
			}
			if q < 0.0 || q > 1.0 {
				return "", errBadAccept
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's listed in the type
		// map; or it's one of a couple of specific wildcards.
		// Also need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if _, knownType := typeMap[mediaType]; knownType {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
	}
	// If this failed to win, return an error
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*", "application/*":
		return restdata.JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}
