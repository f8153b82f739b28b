// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package enameltest

import (
	"time"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/satori/go.uuid"
)

// TestCreateTask checks that a created task can be retrieved by its
// UUID with all of its fields intact.
func (s *Suite) TestCreateTask() {
	state := uniqueState()
	in := sampleTask(state)
	in.Params = `{"server": {"name": "foo"}}`
	in.EndedAt = time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)

	task, err := s.Enamel.CreateTask(in)
	if !s.NoError(err) {
		return
	}
	s.NotZero(task.ID)
	s.NotEmpty(task.UUID)
	s.Equal("boot_server", task.Action)
	s.Equal(state, task.State)
	s.sameTime(s.Clock.Now(), task.CreatedAt)
	s.sameTime(s.Clock.Now(), task.UpdatedAt)

	got, err := s.Enamel.Task(task.UUID)
	if s.NoError(err) {
		s.Equal(task.ID, got.ID)
		s.Equal(task.UUID, got.UUID)
		s.Equal(in.Action, got.Action)
		s.Equal(in.State, got.State)
		s.Equal(in.RequestID, got.RequestID)
		s.Equal(in.UserID, got.UserID)
		s.Equal(in.ProjectID, got.ProjectID)
		s.Equal(in.Params, got.Params)
		s.sameTime(task.CreatedAt, got.CreatedAt)
		s.sameTime(task.UpdatedAt, got.UpdatedAt)
		s.sameTime(in.EndedAt, got.EndedAt)
	}
}

// TestTaskNotEnded checks that a task without an end time reads back
// with a zero end time.
func (s *Suite) TestTaskNotEnded() {
	task := s.createTask(uniqueState())
	got, err := s.Enamel.Task(task.UUID)
	if s.NoError(err) {
		s.True(got.EndedAt.IsZero())
	}
}

// TestCreateTaskWithUUID checks that a caller-provided UUID is kept.
func (s *Suite) TestCreateTaskWithUUID() {
	id := uuid.NewV4().String()
	in := sampleTask(uniqueState())
	in.UUID = id

	task, err := s.Enamel.CreateTask(in)
	if s.NoError(err) {
		s.Equal(id, task.UUID)
	}

	got, err := s.Enamel.Task(id)
	if s.NoError(err) {
		s.Equal(task.ID, got.ID)
	}

	_, err = s.Enamel.CreateTask(in)
	if s.IsType(enamel.ErrDuplicateUUID{}, err) {
		s.Equal(id, err.(enamel.ErrDuplicateUUID).UUID)
	}
}

// TestCreateTaskBadUUID checks that an invalid UUID is rejected.
func (s *Suite) TestCreateTaskBadUUID() {
	in := sampleTask(uniqueState())
	in.UUID = "not-a-uuid"
	_, err := s.Enamel.CreateTask(in)
	if s.IsType(enamel.ErrBadUUID{}, err) {
		s.Equal("not-a-uuid", err.(enamel.ErrBadUUID).UUID)
	}
}

// TestTaskNotFound checks the error for a missing task.
func (s *Suite) TestTaskNotFound() {
	id := uuid.NewV4().String()
	_, err := s.Enamel.Task(id)
	s.Equal(enamel.ErrNoSuchTask{UUID: id}, err)
}

// TestTaskTimestamps checks that creation times come from the
// backend's clock.
func (s *Suite) TestTaskTimestamps() {
	first := s.createTask(uniqueState())
	s.Clock.Add(5 * time.Second)
	second := s.createTask(uniqueState())
	s.sameTime(first.CreatedAt.Add(5*time.Second), second.CreatedAt)
	s.True(first.ID < second.ID)
}

// TestTasksByState checks filtering tasks by state.
func (s *Suite) TestTasksByState() {
	stateA := uniqueState()
	stateB := uniqueState()
	a1 := s.createTask(stateA)
	b1 := s.createTask(stateB)
	a2 := s.createTask(stateA)

	tasks, err := s.Enamel.Tasks(enamel.TaskQuery{States: []string{stateA}})
	if s.NoError(err) && s.Len(tasks, 2) {
		s.Equal(a1.UUID, tasks[0].UUID)
		s.Equal(a2.UUID, tasks[1].UUID)
	}

	tasks, err = s.Enamel.Tasks(enamel.TaskQuery{States: []string{stateA, stateB}})
	if s.NoError(err) && s.Len(tasks, 3) {
		s.Equal(a1.UUID, tasks[0].UUID)
		s.Equal(b1.UUID, tasks[1].UUID)
		s.Equal(a2.UUID, tasks[2].UUID)
	}

	tasks, err = s.Enamel.Tasks(enamel.TaskQuery{States: []string{uniqueState()}})
	if s.NoError(err) {
		s.Empty(tasks)
	}
}

// TestTasksPaging checks the PreviousID and Limit query fields.
func (s *Suite) TestTasksPaging() {
	state := uniqueState()
	var created []enamel.Task
	for i := 0; i < 5; i++ {
		created = append(created, s.createTask(state))
	}

	query := enamel.TaskQuery{States: []string{state}, Limit: 2}
	var seen []string
	for {
		tasks, err := s.Enamel.Tasks(query)
		if !s.NoError(err) {
			return
		}
		if len(tasks) == 0 {
			break
		}
		s.True(len(tasks) <= 2)
		for _, task := range tasks {
			seen = append(seen, task.UUID)
		}
		query.PreviousID = tasks[len(tasks)-1].ID
	}
	if s.Len(seen, 5) {
		for i, task := range created {
			s.Equal(task.UUID, seen[i])
		}
	}
}
