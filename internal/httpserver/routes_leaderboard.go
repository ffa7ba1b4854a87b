package httpserver

import (
	"net/http"

	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/geo"
)

// handleLeaderboard serves today's (UTC) top results for ?mode=country|city.
// Public: no identity is required to read the board.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode, ok := geo.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		writeServiceError(w, r, game.ErrInvalidMode)
		return
	}
	board, err := s.svc.Leaderboard(r.Context(), mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
