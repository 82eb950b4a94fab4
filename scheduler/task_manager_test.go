package scheduler

import (
	"fmt"
	"testing"
	"time"

	"pricewatch/models"
)

func waitForCompletion(t *testing.T, tm *TaskManager, taskID string) *models.SnapshotCheckTask {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := tm.GetTask(taskID)
		if ok && task.IsCompleted() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not complete in time")
	return nil
}

func TestTaskManager_CompletesWithSnapshot(t *testing.T) {
	price := "USD 10.00"
	tm := NewTaskManager(func(watchID int) (*models.PriceSnapshot, error) {
		return &models.PriceSnapshot{Price: &price}, nil
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(1)
	done := waitForCompletion(t, tm, task.ID)

	if done.Status != models.TaskStatusCompleted {
		t.Errorf("Status = %s, want completed", done.Status)
	}
	if !done.Found || done.Result == nil {
		t.Error("expected a found snapshot")
	}
}

func TestTaskManager_CompletesWithNoData(t *testing.T) {
	tm := NewTaskManager(func(watchID int) (*models.PriceSnapshot, error) {
		return nil, nil
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(1)
	done := waitForCompletion(t, tm, task.ID)

	// "no commerce signal" is a successful completion, not a failure
	if done.Status != models.TaskStatusCompleted {
		t.Errorf("Status = %s, want completed", done.Status)
	}
	if done.Found || done.Result != nil {
		t.Error("expected no snapshot")
	}
}

func TestTaskManager_Failure(t *testing.T) {
	tm := NewTaskManager(func(watchID int) (*models.PriceSnapshot, error) {
		return nil, fmt.Errorf("upstream down")
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(1)
	done := waitForCompletion(t, tm, task.ID)

	if done.Status != models.TaskStatusFailed {
		t.Errorf("Status = %s, want failed", done.Status)
	}
	if done.Error == "" {
		t.Error("expected error message")
	}
}

func TestTaskManager_GetStats(t *testing.T) {
	tm := NewTaskManager(func(watchID int) (*models.PriceSnapshot, error) {
		return nil, nil
	}, 2)
	defer tm.Stop()

	task := tm.SubmitTask(1)
	waitForCompletion(t, tm, task.ID)

	stats := tm.GetStats()
	if stats["total_tasks"].(int) != 1 {
		t.Errorf("total_tasks = %v", stats["total_tasks"])
	}
	if stats["max_workers"].(int) != 2 {
		t.Errorf("max_workers = %v", stats["max_workers"])
	}
}

func TestTaskManager_UnknownTask(t *testing.T) {
	tm := NewTaskManager(func(watchID int) (*models.PriceSnapshot, error) {
		return nil, nil
	}, 1)
	defer tm.Stop()

	if _, ok := tm.GetTask("nope"); ok {
		t.Error("expected missing task")
	}
}
