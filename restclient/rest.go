// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/diffeo/go-enamel/restdata"
	"github.com/jtacoma/uritemplates"
)

// resource is any object that has a URL and a representation.
type resource struct {
	URL *url.URL

	// Version is the microversion requested on every call, such
	// as "1.0" or "latest".
	Version string

	// Client performs the HTTP requests.
	Client *http.Client
}

func (r *resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to ourselves
	return r.URL.Parse(expanded)
}

// Do performs some HTTP action.  If in is non-nil, the request data is
// serialized and sent as the body of, for instance, a POST request.
// If out is non-nil, the response data (if any) is deserialized into
// this object, which must be of pointer type.
func (r *resource) Do(method string, url *url.URL, in, out interface{}) (err error) {
	// Set up the body as serialized JSON, if there is one
	var body io.Reader
	if in != nil {
		reader, writer := io.Pipe()
		finished := make(chan error)
		go func() {
			err := restdata.Encode(writer, in)
			err = firstError(err, writer.Close())
			finished <- err
		}()
		defer func() {
			err = firstError(err, <-finished)
		}()
		body = reader
	}

	// Create the request and set headers
	req, err := http.NewRequest(method, url.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", restdata.VendorJSONMediaType)
	}
	if out != nil {
		req.Header.Set("Accept", restdata.VendorJSONMediaType)
	}
	if r.Version != "" {
		req.Header.Set(restdata.VersionHeader, restdata.ServiceType+" "+r.Version)
	}

	// Actually do the request
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	// If the response included a body, clean up afterwards
	if resp.Body != nil {
		defer func() {
			err = firstError(err, resp.Body.Close())
		}()
	}

	// Check the response code
	if err = checkHTTPStatus(resp); err != nil {
		return err
	}

	// If there is both a body and a requested output,
	// decode it
	if resp.Body != nil && out != nil {
		contentType := resp.Header.Get("Content-Type")
		err = restdata.Decode(contentType, resp.Body, out)
	}

	return err // may be nil
}

// Get retrieves the resource from its own URL.  The result is stored
// in result, which must be of pointer type.
func (r *resource) Get(out interface{}) (err error) {
	return r.Do(http.MethodGet, r.URL, nil, out)
}

// GetFrom retrieves a resource from some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The result is stored in
// result, which must be of pointer type.
func (r *resource) GetFrom(template string, vars map[string]interface{}, out interface{}) (err error) {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(http.MethodGet, url, nil, out)
	}
	return err
}

// PostTo submits data to a service at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The server response is
// stored in out, which must be of pointer type.
func (r *resource) PostTo(template string, vars map[string]interface{}, in, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do(http.MethodPost, url, in, out)
	}
	return err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string

	// Errors holds the decoded error envelope, if the body was
	// one.
	Errors *restdata.ErrorResponse
}

func (e ErrorHTTP) Error() string {
	if e.Errors != nil && len(e.Errors.Errors) > 0 {
		return e.Errors.Errors[0].Detail
	}
	return e.Response.Status
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.
func checkHTTPStatus(resp *http.Response) error {
	if len(resp.Status) > 0 && resp.Status[0] == '2' {
		return nil
	}

	// Always collect the entire body; we will need it as a fallback
	// and can only parse it once.
	var body []byte
	var err error
	if resp.Body != nil {
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return err
		}
	}

	result := ErrorHTTP{Response: resp, Body: string(body)}

	// Take a shot at decoding it as a better error
	var errResp restdata.ErrorResponse
	contentType := resp.Header.Get("Content-Type")
	err = restdata.Decode(contentType, bytes.NewReader(body), &errResp)
	if err == nil && len(errResp.Errors) > 0 {
		result.Errors = &errResp
	}
	return result
}

// translate converts a server-provided error back into an enamel
// error, if it names one.  uuid and taskID identify what the failing
// call was about.
func translate(err error, uuid string, taskID int) error {
	if httpErr, ok := err.(ErrorHTTP); ok && httpErr.Errors != nil {
		if httpErr.Errors.Errors[0].Code != "" {
			return httpErr.Errors.ToError(uuid, taskID)
		}
	}
	return err
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
