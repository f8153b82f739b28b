// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package microversion implements OpenStack-style API microversion
// negotiation.
//
// A service publishes a Catalog of every version it has ever
// supported, oldest first.  A client names the version it wants in
// a request header
//
//	OpenStack-enamel-API-Version: enamel 1.0
//
// and the service answers with the version it actually used in the
// same header.  A missing header means the oldest version; "latest"
// means the newest.  An operator may narrow the acceptable range
// without removing versions from the catalog; see Catalog.Restrict.
package microversion

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a single major.minor API version.  Versions are plain
// values and compare with Compare or Less; two versions are equal
// exactly when both components are equal.
type Version struct {
	Major int
	Minor int
}

// String renders the canonical "major.minor" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other, ordering first by major and then by minor version.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major < other.Major:
		return -1
	case v.Major > other.Major:
		return 1
	case v.Minor < other.Minor:
		return -1
	case v.Minor > other.Minor:
		return 1
	}
	return 0
}

// Less returns true if v is strictly older than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Matches returns true if low <= v <= high.
func (v Version) Matches(low, high Version) bool {
	return low.Compare(v) <= 0 && v.Compare(high) <= 0
}

// ParseVersion turns a string of the form "X.Y" into a Version.
// Whitespace around either number is ignored, so "  1  .  0 " parses
// the same as "1.0".  The string is split only on its first period,
// and each half must then be a base-10 integer; "1.0.0" is rejected
// because "0.0" is not an integer.  Signs are accepted, so "-1.9"
// parses to Version{-1, 9}.
//
// This does not understand "latest"; use Catalog.ParseVersion for
// that.  Failures are returned as ErrInvalidVersionFormat.
func ParseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Version{}, ErrInvalidVersionFormat{Input: s}
	}
	major, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Version{}, ErrInvalidVersionFormat{Input: s}
	}
	minor, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Version{}, ErrInvalidVersionFormat{Input: s}
	}
	return Version{Major: major, Minor: minor}, nil
}

// MustParseVersion is like ParseVersion but panics on failure.  It is
// intended for constant version strings in code.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}
