package models

import "time"

// ExecutionStatus is the overall outcome of one recorded run.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// ExecutionLog is one recorded test run of a workflow. Entries are
// append-only; the workflow name is denormalized at record time so the
// history survives workflow deletion.
type ExecutionLog struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"   validate:"required"`
	WorkflowName string          `json:"workflow_name"`
	Status       ExecutionStatus `json:"status"`
	Duration     float64         `json:"duration"`
	Steps        []TestStep      `json:"steps"`
	Timestamp    time.Time       `json:"timestamp"`
}
