// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package microversion

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var enamelVersions = []string{"0.1", "0.9", "1.0"}

func newCatalog(t *testing.T) *Catalog {
	c, err := NewCatalog("enamel", enamelVersions)
	require.NoError(t, err)
	return c
}

func headers(values ...string) http.Header {
	h := http.Header{}
	for _, v := range values {
		h.Add("OpenStack-enamel-API-Version", v)
	}
	return h
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("10.5")
	if assert.NoError(t, err) {
		assert.Equal(t, 10, v.Major)
		assert.Equal(t, 5, v.Minor)
	}
}

func TestParseVersionNegative(t *testing.T) {
	v, err := ParseVersion("-10.5")
	if assert.NoError(t, err) {
		assert.Equal(t, Version{Major: -10, Minor: 5}, v)
	}
}

func TestParseVersionWhitespace(t *testing.T) {
	for _, s := range []string{"  1.0   ", "  1  .   0   ", "1.0", "\t1.\t0\n"} {
		v, err := ParseVersion(s)
		if assert.NoError(t, err, s) {
			assert.Equal(t, Version{1, 0}, v, s)
		}
	}
}

func TestParseVersionFailures(t *testing.T) {
	for _, s := range []string{
		"",
		"105",
		"1.cow",
		"  1  .   cow         ",
		"Nancy, could you bring me the newspaper?",
		"Nancy, could you.bring me the newspaper?",
		"1.0.0",
		"latest",
		".",
		"1.",
	} {
		_, err := ParseVersion(s)
		var invalid ErrInvalidVersionFormat
		if assert.True(t, errors.As(err, &invalid), "%q: %v", s, err) {
			assert.Equal(t, s, invalid.Input)
		}
	}
}

func TestVersionRoundTrip(t *testing.T) {
	for _, s := range []string{"0.1", "0.9", "1.0", "10.5", "99999.99999"} {
		v := MustParseVersion(s)
		assert.Equal(t, s, v.String())
		assert.Equal(t, v, MustParseVersion(v.String()))
	}
}

func TestVersionCompare(t *testing.T) {
	a := Version{1, 0}
	b := Version{1, 1}
	c := Version{2, 0}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.True(t, a.Less(c))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
	assert.Equal(t, 0, a.Compare(Version{1, 0}))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(b))

	huge := MustParseVersion("99999.99999")
	assert.True(t, a.Less(huge))
}

func TestVersionMatches(t *testing.T) {
	low := Version{0, 9}
	high := Version{1, 0}
	assert.True(t, Version{0, 9}.Matches(low, high))
	assert.True(t, Version{1, 0}.Matches(low, high))
	assert.False(t, Version{0, 1}.Matches(low, high))
	assert.False(t, Version{1, 1}.Matches(low, high))
}

func TestCatalogBasics(t *testing.T) {
	c := newCatalog(t)
	assert.Equal(t, "enamel", c.ServiceType())
	assert.Equal(t, "OpenStack-enamel-API-Version", c.Header())
	assert.Equal(t, "0.1", c.MinVersionString())
	assert.Equal(t, "1.0", c.MaxVersionString())
	assert.Equal(t, Version{0, 1}, c.MinVersion())
	assert.Equal(t, Version{1, 0}, c.MaxVersion())
	assert.Equal(t, enamelVersions, c.Versions())
	low, high := c.Range()
	assert.Equal(t, c.MinVersion(), low)
	assert.Equal(t, c.MaxVersion(), high)
}

func TestCatalogLatest(t *testing.T) {
	c := newCatalog(t)
	v, err := c.ParseVersion("latest")
	if assert.NoError(t, err) {
		assert.Equal(t, MustParseVersion(c.MaxVersionString()), v)
	}
}

func TestNewCatalogErrors(t *testing.T) {
	_, err := NewCatalog("", enamelVersions)
	assert.Equal(t, ErrNoServiceType, err)

	_, err = NewCatalog("enamel", nil)
	assert.Equal(t, ErrEmptyCatalog, err)

	_, err = NewCatalog("enamel", []string{"0.1", "one.two"})
	assert.IsType(t, ErrInvalidVersionFormat{}, err)

	_, err = NewCatalog("enamel", []string{"2.0", "1.0"})
	assert.IsType(t, ErrBadRange{}, err)
}

func TestCatalogRestrict(t *testing.T) {
	c := newCatalog(t)

	r, err := c.Restrict("0.9", "")
	if assert.NoError(t, err) {
		low, high := r.Range()
		assert.Equal(t, Version{0, 9}, low)
		assert.Equal(t, Version{1, 0}, high)
	}
	// The original is untouched
	low, _ := c.Range()
	assert.Equal(t, Version{0, 1}, low)

	_, err = c.Restrict("1.0", "0.9")
	assert.IsType(t, ErrBadRange{}, err)

	_, err = c.Restrict("0.5", "")
	assert.IsType(t, ErrNotInCatalog{}, err)

	_, err = c.Restrict("", "cow")
	assert.IsType(t, ErrInvalidVersionFormat{}, err)

	r, err = c.Restrict("", "latest")
	if assert.NoError(t, err) {
		_, high := r.Range()
		assert.Equal(t, Version{1, 0}, high)
	}
}

func TestNegotiateEveryCatalogEntry(t *testing.T) {
	c := newCatalog(t)
	for _, s := range enamelVersions {
		v, err := c.Negotiate(headers("enamel " + s))
		if assert.NoError(t, err, s) {
			assert.Equal(t, MustParseVersion(s), v)
		}
	}
}

func TestNegotiateMissingHeader(t *testing.T) {
	c := newCatalog(t)
	v, err := c.Negotiate(http.Header{})
	if assert.NoError(t, err) {
		assert.Equal(t, MustParseVersion(c.MinVersionString()), v)
	}
}

func TestNegotiateLatest(t *testing.T) {
	c := newCatalog(t)
	v, err := c.Negotiate(headers("enamel latest"))
	if assert.NoError(t, err) {
		assert.Equal(t, c.MaxVersion(), v)
	}
}

func TestNegotiateHeaderCase(t *testing.T) {
	c := newCatalog(t)
	h := http.Header{"openstack-enamel-api-version": []string{"ENAMEL 0.9"}}
	v, err := c.Negotiate(h)
	if assert.NoError(t, err) {
		assert.Equal(t, Version{0, 9}, v)
	}
}

func TestNegotiateWhitespace(t *testing.T) {
	c := newCatalog(t)
	for _, value := range []string{
		"enamel   1.0         ",
		"  enamel 1  .   0         ",
		"enamel\t1.0",
	} {
		v, err := c.Negotiate(headers(value))
		if assert.NoError(t, err, value) {
			assert.Equal(t, Version{1, 0}, v, value)
		}
	}
}

func TestNegotiateNotListed(t *testing.T) {
	c := newCatalog(t)
	for _, value := range []string{"enamel 0.8", "enamel 9999.9999", "enamel -1.9"} {
		_, err := c.Negotiate(headers(value))
		var unacceptable ErrUnacceptableVersion
		if assert.True(t, errors.As(err, &unacceptable), value) {
			assert.Nil(t, unacceptable.Err)
			assert.Contains(t, err.Error(), "Unacceptable version header")
		}
	}
}

func TestNegotiateUnparseable(t *testing.T) {
	c := newCatalog(t)
	for _, value := range []string{
		"enamel 1.0 bottles of sangria",
		"enamel   1  .   cow         ",
		"enamel 105",
	} {
		_, err := c.Negotiate(headers(value))
		var unacceptable ErrUnacceptableVersion
		if assert.True(t, errors.As(err, &unacceptable), value) {
			var invalid ErrInvalidVersionFormat
			assert.True(t, errors.As(err, &invalid), value)
			assert.Contains(t, err.Error(), "invalid version string")
		}
	}
}

func TestNegotiateLastMatchWins(t *testing.T) {
	c := newCatalog(t)
	v, err := c.Negotiate(headers("enamel 0.1, enamel 1.0"))
	if assert.NoError(t, err) {
		assert.Equal(t, Version{1, 0}, v)
	}

	// Repeated headers behave like one list
	v, err = c.Negotiate(headers("enamel 1.0", "enamel 0.9"))
	if assert.NoError(t, err) {
		assert.Equal(t, Version{0, 9}, v)
	}
}

func TestNegotiateSkipsOtherServices(t *testing.T) {
	c := newCatalog(t)

	v, err := c.Negotiate(headers("other-service 1.0"))
	if assert.NoError(t, err) {
		assert.Equal(t, c.MinVersion(), v)
	}

	v, err = c.Negotiate(headers("enamel 0.9, compute 2.1, garbage"))
	if assert.NoError(t, err) {
		assert.Equal(t, Version{0, 9}, v)
	}

	// A bare version has no service type and is skipped
	v, err = c.Negotiate(headers("1.0"))
	if assert.NoError(t, err) {
		assert.Equal(t, c.MinVersion(), v)
	}
}

func TestNegotiateAdministrativeRange(t *testing.T) {
	c, err := newCatalog(t).Restrict("0.9", "0.9")
	require.NoError(t, err)

	v, err := c.Negotiate(headers("enamel 0.9"))
	if assert.NoError(t, err) {
		assert.Equal(t, Version{0, 9}, v)
	}

	_, err = c.Negotiate(headers("enamel 1.0"))
	assert.IsType(t, ErrUnacceptableVersion{}, err)

	_, err = c.Negotiate(headers("enamel latest"))
	assert.IsType(t, ErrUnacceptableVersion{}, err)

	// The fallback is the catalog minimum, which is out of range
	_, err = c.Negotiate(http.Header{})
	if assert.IsType(t, ErrUnacceptableVersion{}, err) {
		assert.Equal(t, "0.1", err.(ErrUnacceptableVersion).Input)
	}
}

func TestResponseHeaders(t *testing.T) {
	c := newCatalog(t)
	assert.Equal(t, "enamel 0.9", c.HeaderValue(Version{0, 9}))

	h := http.Header{}
	c.AddVary(h)
	assert.Equal(t, "OpenStack-enamel-API-Version", h.Get("Vary"))

	h = http.Header{}
	h.Set("Vary", "Accept")
	c.AddVary(h)
	assert.Equal(t, "Accept, OpenStack-enamel-API-Version", h.Get("Vary"))

	h = http.Header{}
	h.Add("Vary", "Accept")
	h.Add("Vary", "Accept-Encoding")
	c.AddVary(h)
	assert.Equal(t, []string{"Accept, Accept-Encoding, OpenStack-enamel-API-Version"}, h.Values("Vary"))
}
