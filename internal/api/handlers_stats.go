package api

import (
	"encoding/json"
	"net/http"
)

// handleLLMStats reports rolling latency snapshots per request label (editor
// and judge calls are tracked separately).
func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil || s.llm.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"models": map[string]string{
			"editor": s.cfg.EditorModel,
			"judge":  s.cfg.JudgeModel,
		},
		"stats": s.llm.Stats.SnapshotAll(),
	})
}
