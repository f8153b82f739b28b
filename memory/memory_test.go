// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"sync"
	"testing"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/enamel/enameltest"
	"github.com/diffeo/go-enamel/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// Suite is the per-backend generic test suite.
type Suite struct {
	enameltest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Enamel = memory.NewWithClock(s.Clock)
}

// TestEnamel runs the enamel generic tests.
func TestEnamel(t *testing.T) {
	suite.Run(t, &Suite{})
}

// TestConcurrentCreate checks that parallel creation hands out
// distinct IDs.
func TestConcurrentCreate(t *testing.T) {
	store := memory.New()
	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := store.CreateTask(enamel.Task{Action: "boot_server", State: enamel.StatePending})
			if assert.NoError(t, err) {
				ids <- task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	tasks, err := store.Tasks(enamel.TaskQuery{})
	if assert.NoError(t, err) {
		assert.Len(t, tasks, n)
	}
}
