// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// enamel.Enamel.  There is no persistence, nor is there any automatic
// sharing.  The entire store is behind a single mutex.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of the REST
// layer.  It is tuned for correctness, not performance.
package memory

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-enamel/enamel"
)

// New creates a new enamel.Enamel that operates purely in memory.
func New() enamel.Enamel {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory store using an explicit time
// source.  This is intended for tests that need to control the
// timestamps on created records.
func NewWithClock(clk clock.Clock) enamel.Enamel {
	return &memEnamel{
		clock:       clk,
		tasks:       make(map[string]*enamel.Task),
		tasksByID:   make(map[int]*enamel.Task),
		items:       make(map[string]*enamel.TaskItem),
		itemsByTask: make(map[int][]*enamel.TaskItem),
	}
}

type memEnamel struct {
	sem   sync.Mutex
	clock clock.Clock

	lastTaskID int
	lastItemID int

	tasks       map[string]*enamel.Task
	tasksByID   map[int]*enamel.Task
	items       map[string]*enamel.TaskItem
	itemsByTask map[int][]*enamel.TaskItem
}

func (e *memEnamel) CreateTask(task enamel.Task) (enamel.Task, error) {
	var err error
	task.UUID, err = enamel.AssignUUID(task.UUID)
	if err != nil {
		return enamel.Task{}, err
	}

	e.sem.Lock()
	defer e.sem.Unlock()

	if _, present := e.tasks[task.UUID]; present {
		return enamel.Task{}, enamel.ErrDuplicateUUID{UUID: task.UUID}
	}
	e.lastTaskID++
	task.ID = e.lastTaskID
	task.CreatedAt = e.clock.Now()
	task.UpdatedAt = task.CreatedAt
	stored := task
	e.tasks[task.UUID] = &stored
	e.tasksByID[task.ID] = &stored
	return task, nil
}

func (e *memEnamel) Task(uuid string) (enamel.Task, error) {
	e.sem.Lock()
	defer e.sem.Unlock()

	task, present := e.tasks[uuid]
	if !present {
		return enamel.Task{}, enamel.ErrNoSuchTask{UUID: uuid}
	}
	return *task, nil
}

func (e *memEnamel) Tasks(query enamel.TaskQuery) ([]enamel.Task, error) {
	e.sem.Lock()
	defer e.sem.Unlock()

	states := make(map[string]bool)
	for _, state := range query.States {
		states[state] = true
	}

	var result []enamel.Task
	for id, task := range e.tasksByID {
		if id <= query.PreviousID {
			continue
		}
		if len(states) > 0 && !states[task.State] {
			continue
		}
		result = append(result, *task)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result, nil
}

func (e *memEnamel) CreateTaskItem(item enamel.TaskItem) (enamel.TaskItem, error) {
	var err error
	item.UUID, err = enamel.AssignUUID(item.UUID)
	if err != nil {
		return enamel.TaskItem{}, err
	}

	e.sem.Lock()
	defer e.sem.Unlock()

	if _, present := e.tasksByID[item.TaskID]; !present {
		return enamel.TaskItem{}, enamel.ErrNoSuchTask{ID: item.TaskID}
	}
	if _, present := e.items[item.UUID]; present {
		return enamel.TaskItem{}, enamel.ErrDuplicateUUID{UUID: item.UUID}
	}
	e.lastItemID++
	item.ID = e.lastItemID
	item.CreatedAt = e.clock.Now()
	item.UpdatedAt = item.CreatedAt
	stored := item
	e.items[item.UUID] = &stored
	e.itemsByTask[item.TaskID] = append(e.itemsByTask[item.TaskID], &stored)
	return item, nil
}

func (e *memEnamel) TaskItem(uuid string) (enamel.TaskItem, error) {
	e.sem.Lock()
	defer e.sem.Unlock()

	item, present := e.items[uuid]
	if !present {
		return enamel.TaskItem{}, enamel.ErrNoSuchTaskItem{UUID: uuid}
	}
	return *item, nil
}

func (e *memEnamel) TaskItems(taskID int) ([]enamel.TaskItem, error) {
	e.sem.Lock()
	defer e.sem.Unlock()

	if _, present := e.tasksByID[taskID]; !present {
		return nil, enamel.ErrNoSuchTask{ID: taskID}
	}
	// Items are appended in ID order already
	result := make([]enamel.TaskItem, 0, len(e.itemsByTask[taskID]))
	for _, item := range e.itemsByTask[taskID] {
		result = append(result, *item)
	}
	return result, nil
}
