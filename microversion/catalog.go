// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package microversion

import (
	"net/http"
	"strings"
	"unicode"
)

// Latest is the version string that always names the newest version
// in a catalog.
const Latest = "latest"

// Catalog is the complete list of versions a service supports, plus
// an optional administrative range that further limits which of them
// are acceptable.  A Catalog is never modified after it is created,
// and may be shared freely between goroutines.
type Catalog struct {
	serviceType string
	versions    []string
	members     map[string]struct{}
	min, max    Version
	low, high   Version
}

// NewCatalog creates a catalog for some service.  serviceType is the
// short service name, such as "enamel", that appears in the header
// name and values.  versions is every version the service has ever
// supported, oldest first; each must parse with ParseVersion.  The
// administrative range defaults to the whole catalog.
func NewCatalog(serviceType string, versions []string) (*Catalog, error) {
	if serviceType == "" {
		return nil, ErrNoServiceType
	}
	if len(versions) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		serviceType: serviceType,
		versions:    append([]string(nil), versions...),
		members:     make(map[string]struct{}, len(versions)),
	}
	for _, s := range c.versions {
		if _, err := ParseVersion(s); err != nil {
			return nil, err
		}
		c.members[s] = struct{}{}
	}
	c.min, _ = ParseVersion(c.versions[0])
	c.max, _ = ParseVersion(c.versions[len(c.versions)-1])
	if c.max.Less(c.min) {
		return nil, ErrBadRange{Low: c.min, High: c.max}
	}
	c.low, c.high = c.min, c.max
	return c, nil
}

// Restrict returns a copy of c whose administrative range is low to
// high, inclusive.  An empty string leaves that end at the catalog's
// own bound.  Both ends must be catalog members (or "latest"), and low
// must not be above high.
func (c *Catalog) Restrict(low, high string) (*Catalog, error) {
	var err error
	r := *c
	if low != "" {
		r.low, err = c.member(low)
		if err != nil {
			return nil, err
		}
	}
	if high != "" {
		r.high, err = c.member(high)
		if err != nil {
			return nil, err
		}
	}
	if r.high.Less(r.low) {
		return nil, ErrBadRange{Low: r.low, High: r.high}
	}
	return &r, nil
}

func (c *Catalog) member(s string) (Version, error) {
	v, err := c.ParseVersion(s)
	if err != nil {
		return Version{}, err
	}
	if _, ok := c.members[v.String()]; !ok {
		return Version{}, ErrNotInCatalog{Version: s}
	}
	return v, nil
}

// ServiceType returns the service name this catalog negotiates for.
func (c *Catalog) ServiceType() string {
	return c.serviceType
}

// Header returns the name of the negotiation header,
// "OpenStack-{service_type}-API-Version".
func (c *Catalog) Header() string {
	return "OpenStack-" + c.serviceType + "-API-Version"
}

// Versions returns a copy of the full version list, oldest first.
func (c *Catalog) Versions() []string {
	return append([]string(nil), c.versions...)
}

// MinVersionString returns the oldest version string in the catalog.
func (c *Catalog) MinVersionString() string {
	return c.versions[0]
}

// MaxVersionString returns the newest version string in the catalog.
func (c *Catalog) MaxVersionString() string {
	return c.versions[len(c.versions)-1]
}

// MinVersion returns the oldest version in the catalog.
func (c *Catalog) MinVersion() Version {
	return c.min
}

// MaxVersion returns the newest version in the catalog.
func (c *Catalog) MaxVersion() Version {
	return c.max
}

// Range returns the administratively acceptable version range.
func (c *Catalog) Range() (low, high Version) {
	return c.low, c.high
}

// ParseVersion parses a version string as the package-level
// ParseVersion, except that "latest" is first replaced with the
// catalog's newest version string.
func (c *Catalog) ParseVersion(s string) (Version, error) {
	if s == Latest {
		s = c.MaxVersionString()
	}
	return ParseVersion(s)
}

// Acceptable returns true if v is listed in the catalog and falls
// within the administrative range.
func (c *Catalog) Acceptable(v Version) bool {
	if _, ok := c.members[v.String()]; !ok {
		return false
	}
	return v.Matches(c.low, c.high)
}

// Negotiate determines the API version for a request from its
// headers.
//
// If the negotiation header is absent, the result is the catalog's
// oldest version.  Otherwise its value is a comma-separated list of
// "service version" pairs; repeated headers are treated as one list.
// The list is scanned from the end, since proxies append to it, and
// the first pair naming this catalog's service type wins.  Entries
// without whitespace, or naming other services, are skipped.  If
// nothing matches, the oldest version is used.
//
// The chosen version must be in the catalog and inside the
// administrative range.  Any failure, including an unparseable
// version string, is returned as ErrUnacceptableVersion.
func (c *Catalog) Negotiate(headers http.Header) (Version, error) {
	input := c.MinVersionString()
	if values, present := lookupHeader(headers, c.Header()); present {
		if found, ok := c.scan(strings.Join(values, ",")); ok {
			input = found
		}
	}

	v, err := c.ParseVersion(input)
	if err != nil {
		return Version{}, ErrUnacceptableVersion{Input: input, Err: err}
	}
	if !c.Acceptable(v) {
		return Version{}, ErrUnacceptableVersion{Input: input}
	}
	return v, nil
}

// scan finds the version string for this service in a header value,
// preferring the last matching entry.
func (c *Catalog) scan(header string) (string, bool) {
	entries := strings.Split(header, ",")
	for i := len(entries) - 1; i >= 0; i-- {
		service, version, ok := splitEntry(entries[i])
		if !ok {
			continue
		}
		if strings.EqualFold(service, c.serviceType) {
			return version, true
		}
	}
	return "", false
}

// splitEntry splits "service version" on its first run of whitespace.
func splitEntry(entry string) (service, version string, ok bool) {
	entry = strings.TrimSpace(entry)
	idx := strings.IndexFunc(entry, unicode.IsSpace)
	if idx < 0 {
		return "", "", false
	}
	return entry[:idx], strings.TrimLeftFunc(entry[idx:], unicode.IsSpace), true
}

// lookupHeader finds all values of a header, ignoring case even if
// the header map was built without canonical keys.
func lookupHeader(headers http.Header, name string) ([]string, bool) {
	if values, ok := headers[http.CanonicalHeaderKey(name)]; ok {
		return values, true
	}
	var values []string
	found := false
	for key, vv := range headers {
		if strings.EqualFold(key, name) {
			values = append(values, vv...)
			found = true
		}
	}
	return values, found
}

// HeaderValue formats the response header value for a negotiated
// version, "{service_type} {version}".
func (c *Catalog) HeaderValue(v Version) string {
	return c.serviceType + " " + v.String()
}

// AddVary appends the negotiation header name to the Vary header in
// h, keeping any value that is already there.
func (c *Catalog) AddVary(h http.Header) {
	if vary := h.Values("Vary"); len(vary) > 0 {
		h.Set("Vary", strings.Join(vary, ", ")+", "+c.Header())
	} else {
		h.Set("Vary", c.Header())
	}
}
