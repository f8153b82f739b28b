// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"strconv"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/lib/pq"
)

// scanner is the common part of sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (task enamel.Task, err error) {
	var endedAt pq.NullTime
	err = row.Scan(&task.ID, &task.UUID, &task.Action, &task.State,
		&task.RequestID, &task.UserID, &task.ProjectID, &task.Params,
		&task.CreatedAt, &task.UpdatedAt, &endedAt)
	task.EndedAt = nullTimeToTime(endedAt)
	return
}

func (e *pgEnamel) CreateTask(task enamel.Task) (enamel.Task, error) {
	var err error
	task.UUID, err = enamel.AssignUUID(task.UUID)
	if err != nil {
		return enamel.Task{}, err
	}
	task.CreatedAt = e.clock.Now()
	task.UpdatedAt = task.CreatedAt

	err = withTx(e.db, false, func(tx *sql.Tx) error {
		var (
			params queryParams
			fields fieldList
		)
		fields.Add(&params, "uuid", task.UUID)
		fields.Add(&params, "action", task.Action)
		fields.Add(&params, "state", task.State)
		fields.Add(&params, "request_id", task.RequestID)
		fields.Add(&params, "user_id", task.UserID)
		fields.Add(&params, "project_id", task.ProjectID)
		fields.Add(&params, "params", task.Params)
		fields.Add(&params, "created_at", task.CreatedAt)
		fields.Add(&params, "updated_at", task.UpdatedAt)
		fields.Add(&params, "ended_at", timeToNullTime(task.EndedAt))
		row := tx.QueryRow(fields.InsertStatement(taskTable), params...)
		return row.Scan(&task.ID)
	})
	if pqErrorCode(err) == pgUniqueViolation {
		return enamel.Task{}, enamel.ErrDuplicateUUID{UUID: task.UUID}
	} else if err != nil {
		return enamel.Task{}, err
	}
	return task, nil
}

func (e *pgEnamel) Task(uuid string) (task enamel.Task, err error) {
	query := buildSelect(taskColumns, []string{taskTable}, []string{isTaskUUID})
	err = withTx(e.db, true, func(tx *sql.Tx) error {
		var err error
		task, err = scanTask(tx.QueryRow(query, uuid))
		return err
	})
	if err == sql.ErrNoRows {
		return enamel.Task{}, enamel.ErrNoSuchTask{UUID: uuid}
	}
	return
}

func (e *pgEnamel) Tasks(q enamel.TaskQuery) (tasks []enamel.Task, err error) {
	var (
		params     queryParams
		conditions []string
	)
	if len(q.States) > 0 {
		conditions = append(conditions, params.In(taskState, q.States))
	}
	if q.PreviousID != 0 {
		conditions = append(conditions, taskID+">"+params.Param(q.PreviousID))
	}
	query := buildSelect(taskColumns, []string{taskTable}, conditions)
	query += " ORDER BY " + taskID
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
	}

	err = withTx(e.db, true, func(tx *sql.Tx) error {
		tasks = nil
		return queryAndScan(tx, query, params, func(rows *sql.Rows) error {
			task, err := scanTask(rows)
			if err == nil {
				tasks = append(tasks, task)
			}
			return err
		})
	})
	return
}
