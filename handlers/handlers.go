package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"pricewatch/changedetection"
	"pricewatch/extract"
	"pricewatch/models"
	"pricewatch/repository"
	"pricewatch/scheduler"

	"github.com/gorilla/mux"
)

type Handlers struct {
	watchRepo    *repository.WatchRepository
	client       *changedetection.Client
	taskManager  *scheduler.TaskManager
	historyDepth int
}

func NewHandlers(watchRepo *repository.WatchRepository, client *changedetection.Client, historyDepth, maxWorkers int) *Handlers {
	h := &Handlers{
		watchRepo:    watchRepo,
		client:       client,
		historyDepth: historyDepth,
	}
	h.taskManager = scheduler.NewTaskManager(h.RefreshWatch, maxWorkers)
	return h
}

// Close shuts down the async task manager
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// RefreshWatch fetches the current upstream state for a watch, runs the
// extraction engine and persists the result. A failed details fetch is
// tolerated when history is still available; only a total upstream failure
// is an error.
func (h *Handlers) RefreshWatch(watchID int) (*models.PriceSnapshot, error) {
	watch, err := h.watchRepo.GetWatchByID(watchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %v", err)
	}

	details, detailsErr := h.client.GetWatch(watch.WatchUUID)
	history, historyErr := h.client.GetWatchHistory(watch.WatchUUID, h.historyDepth)

	if detailsErr != nil && historyErr != nil {
		if markErr := h.watchRepo.MarkCheckFailed(watch.ID); markErr != nil {
			log.Printf("Failed to mark check as failed for watch %d: %v", watch.ID, markErr)
		}
		return nil, fmt.Errorf("upstream fetch failed: %v", detailsErr)
	}
	if detailsErr != nil {
		log.Printf("Details fetch failed for watch %d, extracting from history only: %v", watch.ID, detailsErr)
	}

	if markErr := h.watchRepo.MarkCheckSuccess(watch.ID); markErr != nil {
		log.Printf("Failed to mark check as successful for watch %d: %v", watch.ID, markErr)
	}

	snap := extract.ExtractPriceSnapshot(details, history)

	if err := h.watchRepo.UpdateSnapshot(watch.ID, snap); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %v", err)
	}
	if snap != nil {
		if err := h.watchRepo.AddSnapshotHistory(models.NewSnapshotRecord(watch.ID, snap)); err != nil {
			log.Printf("Failed to add snapshot history for watch %d: %v", watch.ID, err)
		}
	}

	return snap, nil
}

// AddWatch registers a change-detection watch for the requesting user
func (h *Handlers) AddWatch(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	var req models.AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.WatchUUID = strings.TrimSpace(req.WatchUUID)
	req.URL = strings.TrimSpace(req.URL)
	if req.WatchUUID == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "watch_uuid and url are required")
		return
	}
	if req.Name == "" {
		req.Name = req.URL
	}

	watch, err := h.watchRepo.AddWatch(userID, &req)
	if err != nil {
		log.Printf("Failed to add watch: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add watch")
		return
	}

	writeJSON(w, http.StatusCreated, watch)
}

// GetWatches lists the requesting user's watches
func (h *Handlers) GetWatches(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	watches, err := h.watchRepo.GetWatchesByUser(userID)
	if err != nil {
		log.Printf("Failed to get watches: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get watches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"watches": watches,
		"count":   len(watches),
	})
}

// GetWatchDetails returns one watch with its latest stored snapshot state
func (h *Handlers) GetWatchDetails(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.watchFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, watch)
}

// DeleteWatch soft-deletes a tracked watch
func (h *Handlers) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.watchFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.watchRepo.DeleteWatch(watch.ID); err != nil {
		log.Printf("Failed to delete watch %d: %v", watch.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete watch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RefreshNow synchronously fetches and extracts the watch's current snapshot
func (h *Handlers) RefreshNow(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.watchFromRequest(w, r)
	if !ok {
		return
	}

	snap, err := h.RefreshWatch(watch.ID)
	if err != nil {
		log.Printf("Refresh failed for watch %d: %v", watch.ID, err)
		writeError(w, http.StatusBadGateway, "Upstream fetch failed")
		return
	}

	writeJSON(w, http.StatusOK, models.RefreshResponse{
		WatchID:  watch.ID,
		Found:    snap != nil,
		Snapshot: snap,
	})
}

// RefreshAsync submits a background refresh task for the watch
func (h *Handlers) RefreshAsync(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.watchFromRequest(w, r)
	if !ok {
		return
	}

	task := h.taskManager.SubmitTask(watch.ID)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns the state of an async refresh task
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

// GetSnapshotHistory returns stored extraction results for a watch
func (h *Handlers) GetSnapshotHistory(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.watchFromRequest(w, r)
	if !ok {
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	history, err := h.watchRepo.GetSnapshotHistory(watch.ID, limit)
	if err != nil {
		log.Printf("Failed to get snapshot history for watch %d: %v", watch.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"watch_id": watch.ID,
		"history":  history,
		"count":    len(history),
	})
}

// watchFromRequest resolves the {id} path variable to a watch owned by the
// requesting user
func (h *Handlers) watchFromRequest(w http.ResponseWriter, r *http.Request) (*models.TrackedWatch, bool) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return nil, false
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid watch ID")
		return nil, false
	}

	watch, err := h.watchRepo.GetWatchByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Watch not found")
		return nil, false
	}
	if watch.UserID != userID {
		writeError(w, http.StatusForbidden, "Watch belongs to another user")
		return nil, false
	}

	return watch, true
}

func requestUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
