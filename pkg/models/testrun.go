package models

import "time"

// StepStatus is the outcome of one simulated node execution.
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusError   StepStatus = "error"
)

// TestStep is the per-node entry of a test run result.
type TestStep struct {
	NodeID   string     `json:"node_id"`
	Status   StepStatus `json:"status"`
	Message  string     `json:"message"`
	Duration float64    `json:"duration"`
}

// TestResult is what the test-execution provider returns for one run.
// The canvas core consumes it opaquely; there are no execution
// semantics behind it.
type TestResult struct {
	Success   bool       `json:"success"`
	Duration  float64    `json:"duration"`
	Timestamp time.Time  `json:"timestamp"`
	Steps     []TestStep `json:"steps"`
}
