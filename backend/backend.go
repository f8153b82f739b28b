// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct an enamel
// store based on command-line flags.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/memory"
	"github.com/diffeo/go-enamel/postgres"
	"github.com/diffeo/go-enamel/restclient"
)

// Backend describes user-visible parameters to store enamel data.
// This implements the flag.Value interface, and so a typical use is
//
//	func main() {
//	    backend := backend.Backend{Implementation: "memory"}
//	    flag.Var(&backend, "backend", "impl:address of enamel storage")
//	    flag.Parse()
//	    store, err := backend.Enamel()
//	}
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// Implementations lists the known backend names.
var Implementations = []string{"memory", "postgres", "http"}

// Enamel creates a new enamel store.  This generally should be only
// called once.  If the backend has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to
// this will create multiple independent "worlds".
//
// The "http" implementation is a REST client of another enamel
// server, at the URL "http:" + b.Address.
func (b *Backend) Enamel() (enamel.Enamel, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(b.Address)
	case "http":
		return restclient.New("http:" + b.Address)
	default:
		return nil, fmt.Errorf("unknown enamel backend %q", b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither this
// nor Enamel() validates the b.Address part of the string before
// trying to connect.
func (b *Backend) Set(param string) error {
	if param == "" {
		return errors.New("must specify a backend type")
	}
	parts := strings.SplitN(param, ":", 2)
	known := false
	for _, impl := range Implementations {
		if parts[0] == impl {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown enamel backend %q (want one of %v)", parts[0], Implementations)
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}
