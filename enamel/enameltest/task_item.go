// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package enameltest

import (
	"time"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/satori/go.uuid"
)

// TestCreateTaskItem checks that a created task item can be retrieved
// by its UUID.
func (s *Suite) TestCreateTaskItem() {
	task := s.createTask(uniqueState())
	in := enamel.TaskItem{
		Action:  "create_volume",
		State:   enamel.StateInProgress,
		TaskID:  task.ID,
		EndedAt: time.Date(2002, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	item, err := s.Enamel.CreateTaskItem(in)
	if !s.NoError(err) {
		return
	}
	s.NotZero(item.ID)
	s.NotEmpty(item.UUID)
	s.sameTime(s.Clock.Now(), item.CreatedAt)

	got, err := s.Enamel.TaskItem(item.UUID)
	if s.NoError(err) {
		s.Equal(item.ID, got.ID)
		s.Equal(item.UUID, got.UUID)
		s.Equal("create_volume", got.Action)
		s.Equal(enamel.StateInProgress, got.State)
		s.Equal(task.ID, got.TaskID)
		s.sameTime(item.CreatedAt, got.CreatedAt)
		s.sameTime(item.UpdatedAt, got.UpdatedAt)
		s.sameTime(in.EndedAt, got.EndedAt)
	}
}

// TestCreateTaskItemNoTask checks that an item must belong to an
// existing task.
func (s *Suite) TestCreateTaskItemNoTask() {
	// IDs are positive, so this can never exist
	_, err := s.Enamel.CreateTaskItem(enamel.TaskItem{
		Action: "create_volume",
		State:  enamel.StatePending,
		TaskID: -1,
	})
	s.Equal(enamel.ErrNoSuchTask{ID: -1}, err)
}

// TestCreateTaskItemUUIDs checks caller-provided item UUIDs.
func (s *Suite) TestCreateTaskItemUUIDs() {
	task := s.createTask(uniqueState())
	id := uuid.NewV4().String()
	in := enamel.TaskItem{
		UUID:   id,
		Action: "attach_volume",
		State:  enamel.StatePending,
		TaskID: task.ID,
	}
	item, err := s.Enamel.CreateTaskItem(in)
	if s.NoError(err) {
		s.Equal(id, item.UUID)
	}

	_, err = s.Enamel.CreateTaskItem(in)
	s.Equal(enamel.ErrDuplicateUUID{UUID: id}, err)

	in.UUID = "sixteen bytes!!!"
	_, err = s.Enamel.CreateTaskItem(in)
	s.Equal(enamel.ErrBadUUID{UUID: "sixteen bytes!!!"}, err)
}

// TestTaskItemNotFound checks the error for a missing task item.
func (s *Suite) TestTaskItemNotFound() {
	id := uuid.NewV4().String()
	_, err := s.Enamel.TaskItem(id)
	s.Equal(enamel.ErrNoSuchTaskItem{UUID: id}, err)
}

// TestTaskItems checks listing the items of a task.
func (s *Suite) TestTaskItems() {
	task := s.createTask(uniqueState())
	other := s.createTask(uniqueState())

	items, err := s.Enamel.TaskItems(task.ID)
	if s.NoError(err) {
		s.Empty(items)
	}

	first := s.createItem(task, "create_volume")
	s.createItem(other, "create_port")
	second := s.createItem(task, "attach_volume")

	items, err = s.Enamel.TaskItems(task.ID)
	if s.NoError(err) && s.Len(items, 2) {
		s.Equal(first.UUID, items[0].UUID)
		s.Equal("create_volume", items[0].Action)
		s.Equal(second.UUID, items[1].UUID)
		s.Equal("attach_volume", items[1].Action)
	}

	_, err = s.Enamel.TaskItems(-1)
	s.Equal(enamel.ErrNoSuchTask{ID: -1}, err)
}
