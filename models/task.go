package models

import (
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// SnapshotCheckTask represents an async snapshot refresh task
type SnapshotCheckTask struct {
	ID          string         `json:"id"`
	WatchID     int            `json:"watch_id"`
	Status      TaskStatus     `json:"status"`
	Message     string         `json:"message"`
	Result      *PriceSnapshot `json:"result,omitempty"`
	Found       bool           `json:"found"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// NewSnapshotCheckTask creates a new snapshot refresh task
func NewSnapshotCheckTask(watchID int) *SnapshotCheckTask {
	return &SnapshotCheckTask{
		ID:        generateTaskID(),
		WatchID:   watchID,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *SnapshotCheckTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Fetching watch state..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed. A nil result is a valid completion:
// the watch simply has no commerce signal.
func (t *SnapshotCheckTask) Complete(result *PriceSnapshot) {
	t.Status = TaskStatusCompleted
	t.Result = result
	t.Found = result != nil
	if t.Found {
		t.Message = "Snapshot extracted"
	} else {
		t.Message = "No commerce signal found"
	}
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with error
func (t *SnapshotCheckTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Snapshot refresh failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *SnapshotCheckTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still running
func (t *SnapshotCheckTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns the duration of the task
func (t *SnapshotCheckTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "task_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
