package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAnswerStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window":      "1h",
		"queue_depth": s.orchestrator.QueueDepth(),
		"answers":     s.stats.Snapshot(),
	})
}
