package calculator

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleStopAsync stops the scan loop
func (s *Service) handleStopAsync(w http.ResponseWriter, r *http.Request) {
	if !s.IsAsyncRunning() {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "already_stopped",
			"message": "Scanner is not running",
		})
		return
	}

	s.StopAsync()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "stopped",
		"message": "Scanner stopped successfully",
	})
}

// handleStartAsync starts the scan loop
func (s *Service) handleStartAsync(w http.ResponseWriter, r *http.Request) {
	if s.IsAsyncRunning() {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "already_running",
			"message": "Scanner is already running",
		})
		return
	}

	if err := s.StartAsync(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "failed to start scanner",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "started",
		"message": "Scanner started successfully",
	})
}
