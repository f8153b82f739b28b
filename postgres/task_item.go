// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/lib/pq"
)

func scanTaskItem(row scanner) (item enamel.TaskItem, err error) {
	var endedAt pq.NullTime
	err = row.Scan(&item.ID, &item.UUID, &item.Action, &item.State,
		&item.TaskID, &item.CreatedAt, &item.UpdatedAt, &endedAt)
	item.EndedAt = nullTimeToTime(endedAt)
	return
}

func (e *pgEnamel) CreateTaskItem(item enamel.TaskItem) (enamel.TaskItem, error) {
	var err error
	item.UUID, err = enamel.AssignUUID(item.UUID)
	if err != nil {
		return enamel.TaskItem{}, err
	}
	item.CreatedAt = e.clock.Now()
	item.UpdatedAt = item.CreatedAt

	err = withTx(e.db, false, func(tx *sql.Tx) error {
		var (
			params queryParams
			fields fieldList
		)
		fields.Add(&params, "uuid", item.UUID)
		fields.Add(&params, "action", item.Action)
		fields.Add(&params, "state", item.State)
		fields.Add(&params, "task_id", item.TaskID)
		fields.Add(&params, "created_at", item.CreatedAt)
		fields.Add(&params, "updated_at", item.UpdatedAt)
		fields.Add(&params, "ended_at", timeToNullTime(item.EndedAt))
		row := tx.QueryRow(fields.InsertStatement(taskItemTable), params...)
		return row.Scan(&item.ID)
	})
	switch pqErrorCode(err) {
	case pgForeignKeyViolation:
		return enamel.TaskItem{}, enamel.ErrNoSuchTask{ID: item.TaskID}
	case pgUniqueViolation:
		return enamel.TaskItem{}, enamel.ErrDuplicateUUID{UUID: item.UUID}
	}
	if err != nil {
		return enamel.TaskItem{}, err
	}
	return item, nil
}

func (e *pgEnamel) TaskItem(uuid string) (item enamel.TaskItem, err error) {
	query := buildSelect(itemColumns, []string{taskItemTable}, []string{isItemUUID})
	err = withTx(e.db, true, func(tx *sql.Tx) error {
		var err error
		item, err = scanTaskItem(tx.QueryRow(query, uuid))
		return err
	})
	if err == sql.ErrNoRows {
		return enamel.TaskItem{}, enamel.ErrNoSuchTaskItem{UUID: uuid}
	}
	return
}

func (e *pgEnamel) TaskItems(id int) (items []enamel.TaskItem, err error) {
	exists := buildSelect([]string{taskID}, []string{taskTable}, []string{isTask})
	query := buildSelect(itemColumns, []string{taskItemTable}, []string{inThisTask}) +
		" ORDER BY " + itemID
	err = withTx(e.db, true, func(tx *sql.Tx) error {
		var found int
		err := tx.QueryRow(exists, id).Scan(&found)
		if err == sql.ErrNoRows {
			return enamel.ErrNoSuchTask{ID: id}
		} else if err != nil {
			return err
		}
		items = []enamel.TaskItem{}
		return queryAndScan(tx, query, queryParams{id}, func(rows *sql.Rows) error {
			item, err := scanTaskItem(rows)
			if err == nil {
				items = append(items, item)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return
}
