// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package enameltest provides generic functional tests for the
// enamel.Enamel interface.  A typical backend test needs to wrap
// Suite to create its backend:
//
//	package mybackend
//
//	import (
//	        "testing"
//	        "github.com/diffeo/go-enamel/enamel/enameltest"
//	        "github.com/stretchr/testify/suite"
//	)
//
//	// Suite is the per-backend generic test suite.
//	type Suite struct{
//	        enameltest.Suite
//	}
//
//	// SetupSuite does global setup for the test suite.
//	func (s *Suite) SetupSuite() {
//	        s.Suite.SetupSuite()
//	        s.Enamel = NewWithClock(s.Clock)
//	}
//
//	// TestEnamel runs the enamel generic tests.
//	func TestEnamel(t *testing.T) {
//	        suite.Run(t, &Suite{})
//	}
//
// The tests do not assume the backend is empty, so they can be run
// against a persistent database.
package enameltest

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-enamel/enamel"
	"github.com/satori/go.uuid"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic enamel backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in
	// tests.  It is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Enamel contains the interface to the backend under test.
	// It is set by importing packages.
	Enamel enamel.Enamel
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
	// Start somewhere other than the Unix epoch, and on a whole
	// second, so timestamps survive any serialization
	s.Clock.Set(time.Date(2017, 3, 14, 15, 9, 26, 0, time.UTC))
}

// uniqueState returns a task state that no other test will use, so
// that queries only see this test's tasks.
func uniqueState() string {
	return "test-" + uuid.NewV4().String()
}

// sampleTask returns a task like the ones the API creates.
func sampleTask(state string) enamel.Task {
	return enamel.Task{
		Action:    "boot_server",
		State:     state,
		RequestID: "req-foo",
		UserID:    "foo",
		ProjectID: "bar",
		Params:    "",
	}
}

// createTask creates a sample task and fails the test if it can't.
func (s *Suite) createTask(state string) enamel.Task {
	task, err := s.Enamel.CreateTask(sampleTask(state))
	s.Require().NoError(err)
	return task
}

// createItem creates a sample task item and fails the test if it
// can't.
func (s *Suite) createItem(task enamel.Task, action string) enamel.TaskItem {
	item, err := s.Enamel.CreateTaskItem(enamel.TaskItem{
		Action: action,
		State:  enamel.StateInProgress,
		TaskID: task.ID,
	})
	s.Require().NoError(err)
	return item
}

// sameTime checks that two times are the same instant, ignoring
// representation differences such as time zones.
func (s *Suite) sameTime(expected, actual time.Time) {
	s.True(expected.Equal(actual), "expected %v, got %v", expected, actual)
}
