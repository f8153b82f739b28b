// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

const (
	// SQL table names:
	taskTable     = "tasks"
	taskItemTable = "task_items"

	// SQL column names:
	taskID        = taskTable + ".id"
	taskUUID      = taskTable + ".uuid"
	taskAction    = taskTable + ".action"
	taskState     = taskTable + ".state"
	taskRequestID = taskTable + ".request_id"
	taskUserID    = taskTable + ".user_id"
	taskProjectID = taskTable + ".project_id"
	taskParams    = taskTable + ".params"
	taskCreatedAt = taskTable + ".created_at"
	taskUpdatedAt = taskTable + ".updated_at"
	taskEndedAt   = taskTable + ".ended_at"
	itemID        = taskItemTable + ".id"
	itemUUID      = taskItemTable + ".uuid"
	itemAction    = taskItemTable + ".action"
	itemState     = taskItemTable + ".state"
	itemTaskID    = taskItemTable + ".task_id"
	itemCreatedAt = taskItemTable + ".created_at"
	itemUpdatedAt = taskItemTable + ".updated_at"
	itemEndedAt   = taskItemTable + ".ended_at"

	// WHERE clause fragments:
	isTask     = taskID + "=$1"
	isTaskUUID = taskUUID + "=$1"
	isItemUUID = itemUUID + "=$1"
	inThisTask = itemTaskID + "=$1"

	// PostgreSQL error codes:
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
)

// taskColumns lists the columns of a task in the order scanTask()
// expects them.
var taskColumns = []string{
	taskID, taskUUID, taskAction, taskState, taskRequestID,
	taskUserID, taskProjectID, taskParams,
	taskCreatedAt, taskUpdatedAt, taskEndedAt,
}

// itemColumns lists the columns of a task item in the order
// scanTaskItem() expects them.
var itemColumns = []string{
	itemID, itemUUID, itemAction, itemState, itemTaskID,
	itemCreatedAt, itemUpdatedAt, itemEndedAt,
}
