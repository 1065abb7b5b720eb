package calculator

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vodeneev/surebetbot/internal/pkg/models"
)

// RegisterHTTP registers scanner endpoints onto r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/surebets", s.handleSurebets)
	r.Get("/status", s.handleStatus)
	r.Post("/scanner/stop", s.handleStopAsync)
	r.Post("/scanner/start", s.handleStartAsync)
}

func (s *Service) handleSurebets(w http.ResponseWriter, r *http.Request) {
	res, ok := s.LastResult()
	surebets := res.Surebets
	if !ok || surebets == nil {
		surebets = []models.Surebet{}
	}
	writeJSON(w, http.StatusOK, surebets)
}

type statusResponse struct {
	Running   bool         `json:"running"`
	Interval  string       `json:"interval"`
	Sources   []string     `json:"sources"`
	LastCycle *CycleResult `json:"last_cycle,omitempty"`
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Running:  s.IsAsyncRunning(),
		Interval: s.Interval().String(),
		Sources:  make([]string, 0, len(s.sources)),
	}
	for _, src := range s.sources {
		resp.Sources = append(resp.Sources, src.Name())
	}
	if res, ok := s.LastResult(); ok {
		res.Surebets = nil
		resp.LastCycle = &res
	}
	writeJSON(w, http.StatusOK, resp)
}
