// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres_test

import (
	"os"
	"testing"

	"github.com/diffeo/go-enamel/enamel/enameltest"
	"github.com/diffeo/go-enamel/postgres"
	"github.com/stretchr/testify/suite"
)

// Suite runs the generic tests against a PostgreSQL database.
//
// The connection string comes from $ENAMEL_TEST_DATABASE; if that is
// empty, the standard PostgreSQL environment variables apply, as
// described in
// http://www.postgresql.org/docs/current/static/libpq-envars.html.
// The suite is skipped if no database is reachable.
type Suite struct {
	enameltest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	e, err := postgres.NewWithClock(os.Getenv("ENAMEL_TEST_DATABASE"), s.Clock)
	if err != nil {
		s.T().Skipf("no PostgreSQL database available: %v", err)
	}
	s.Enamel = e
}

// TestEnamel runs the enamel generic tests.
func TestEnamel(t *testing.T) {
	suite.Run(t, &Suite{})
}
