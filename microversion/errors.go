// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package microversion

import (
	"errors"
	"fmt"
)

// ErrInvalidVersionFormat is returned from ParseVersion when a string
// cannot be read as two integers separated by a period.
type ErrInvalidVersionFormat struct {
	Input string
}

func (err ErrInvalidVersionFormat) Error() string {
	return fmt.Sprintf("invalid version string: %s", err.Input)
}

// ErrUnacceptableVersion is returned from Catalog.Negotiate when the
// requested version cannot be used.  Input is the version string as
// the client sent it.  If the string could not be parsed at all, Err
// holds the parse failure; otherwise it parsed but is not a catalog
// member or is outside the administrative range, and Err is nil.
type ErrUnacceptableVersion struct {
	Input string
	Err   error
}

func (err ErrUnacceptableVersion) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return fmt.Sprintf("Unacceptable version header: %s", err.Input)
}

// Unwrap returns the underlying parse failure, if any.
func (err ErrUnacceptableVersion) Unwrap() error {
	return err.Err
}

// ErrEmptyCatalog is returned from NewCatalog if it is given no
// versions.
var ErrEmptyCatalog = errors.New("version catalog must not be empty")

// ErrNoServiceType is returned from NewCatalog if it is given an empty
// service type.
var ErrNoServiceType = errors.New("version catalog needs a service type")

// ErrBadRange is returned from NewCatalog and Catalog.Restrict when
// the low end of a version range is above its high end.
type ErrBadRange struct {
	Low  Version
	High Version
}

func (err ErrBadRange) Error() string {
	return fmt.Sprintf("version range %v to %v is empty", err.Low, err.High)
}

// ErrNotInCatalog is returned from Catalog.Restrict when a bound of
// the administrative range is not one of the catalog's versions.
type ErrNotInCatalog struct {
	Version string
}

func (err ErrNotInCatalog) Error() string {
	return fmt.Sprintf("version %q is not in the version catalog", err.Version)
}
