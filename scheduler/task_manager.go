package scheduler

import (
	"log"
	"sync"
	"time"

	"pricewatch/models"
)

// RefreshFunc fetches the current upstream state for a watch and runs the
// extraction engine over it. A nil snapshot with nil error means the watch
// has no commerce signal.
type RefreshFunc func(watchID int) (*models.PriceSnapshot, error)

// TaskManager manages async snapshot refresh tasks
type TaskManager struct {
	tasks       map[string]*models.SnapshotCheckTask
	taskQueue   chan *models.SnapshotCheckTask
	workers     int
	maxWorkers  int
	refreshFunc RefreshFunc
	mutex       sync.RWMutex
	stopChan    chan bool
}

// NewTaskManager creates a new task manager
func NewTaskManager(refreshFunc RefreshFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:       make(map[string]*models.SnapshotCheckTask),
		taskQueue:   make(chan *models.SnapshotCheckTask, 100),
		maxWorkers:  maxWorkers,
		refreshFunc: refreshFunc,
		stopChan:    make(chan bool),
	}

	go tm.processTasks()
	log.Printf("Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask submits a new snapshot refresh task
func (tm *TaskManager) SubmitTask(watchID int) *models.SnapshotCheckTask {
	task := models.NewSnapshotCheckTask(watchID)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("Task %s submitted for watch ID %d", task.ID, watchID)
	default:
		task.Fail("Task queue is full")
		log.Printf("Failed to submit task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.SnapshotCheckTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// CleanupOldTasks removes completed tasks older than the given age
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
		}
	}
}

// processTasks processes tasks from the queue
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			if tm.workers < tm.maxWorkers {
				tm.workers++
				tm.mutex.Unlock()
				go tm.worker(task)
			} else {
				tm.mutex.Unlock()
				// Re-queue once capacity frees up
				go func() {
					time.Sleep(1 * time.Second)
					select {
					case tm.taskQueue <- task:
					default:
						task.Fail("System overloaded, unable to process task")
						log.Printf("Failed to re-queue task %s", task.ID)
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(1 * time.Hour)

		case <-tm.stopChan:
			log.Println("Task manager stopped")
			return
		}
	}
}

// worker processes a single task
func (tm *TaskManager) worker(task *models.SnapshotCheckTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	log.Printf("Worker processing task %s for watch ID %d", task.ID, task.WatchID)
	task.Start()

	snap, err := tm.refreshFunc(task.WatchID)
	if err != nil {
		task.Fail("Snapshot refresh failed: " + err.Error())
		return
	}

	task.Complete(snap)
	log.Printf("Task %s completed in %v (found=%t)", task.ID, task.Duration(), task.Found)
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("Task manager stopping...")
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks":    len(tm.tasks),
		"active_workers": tm.workers,
		"max_workers":    tm.maxWorkers,
		"queue_size":     len(tm.taskQueue),
	}

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}
