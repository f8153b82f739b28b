// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"
	"reflect"

	"github.com/ugorji/go/codec"
)

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ErrBadRequest{Err: err}
	}

	switch mediaType {
	case "text/json", JSONMediaType, VendorJSONMediaType:
		json := &codec.JsonHandle{}
		// Nested objects in server boot requests must re-encode
		// as JSON objects
		json.MapType = reflect.TypeOf(map[string]interface{}(nil))
		decoder := codec.NewDecoder(r, json)
		err = decoder.Decode(out)
		if err != nil {
			return ErrBadRequest{Err: err}
		}
		return nil
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
}

// Encode writes a restdata object to a writer as JSON.
func Encode(w io.Writer, in interface{}) error {
	encoder := codec.NewEncoder(w, &codec.JsonHandle{})
	return encoder.Encode(in)
}

// Params returns the stored form of a server boot request, as a
// JSON object string.  An empty request produces an empty string.
func (b ServerBoot) Params() (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	var out []byte
	h := &codec.JsonHandle{}
	h.Canonical = true
	encoder := codec.NewEncoderBytes(&out, h)
	err := encoder.Encode(map[string]interface{}(b))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
