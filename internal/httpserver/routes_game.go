// internal/httpserver/routes_game.go
//
// HTTP routes for a twenty-questions session. All require a registered user.
//   - POST /game/new       → start a session for a mode
//   - GET  /game/{id}      → current view of one of the caller's sessions
//   - POST /game/question  → ask a yes/no question
//   - POST /game/guess     → guess the location
//
// Sessions are held in memory (store.Sessions) and only the owner can see them.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/geo"
	"github.com/robalobadob/geoquest/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/question", s.handleQuestion)
	r.Post("/game/guess", s.handleGuess)
}

type newGameReq struct {
	Mode string `json:"mode"`
}

type questionReq struct {
	GameID   string `json:"gameId"`
	Question string `json:"question"`
}

type questionRes struct {
	Answer geo.Answer `json:"answer"`
	View   game.View  `json:"view"`
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Correct  bool      `json:"correct"`
	Recorded bool      `json:"recorded"`
	View     game.View `json:"view"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	mode, ok := geo.ParseMode(req.Mode)
	if !ok {
		writeServiceError(w, r, game.ErrInvalidMode)
		return
	}

	me := userFrom(r)
	sess, err := s.svc.Start(r.Context(), me.ID, mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = s.sessions.Save(r.Context(), sess)
	s.metrics.SetActiveSessions(s.sessions.Len())

	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ownedSession(r, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	sess, err := s.ownedSession(r, req.GameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	answer, err := s.svc.Ask(r.Context(), sess, req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionRes{Answer: answer, View: sess.View()})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	sess, err := s.ownedSession(r, req.GameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out, err := s.svc.Guess(r.Context(), sess, req.Guess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Correct: out.Correct, Recorded: out.Recorded, View: sess.View()})
}

// ownedSession loads a live session and hides sessions of other users as not found.
func (s *Server) ownedSession(r *http.Request, id string) (*game.Session, error) {
	if id == "" {
		return nil, store.ErrNotFound
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if me := userFrom(r); me == nil || sess.UserID != me.ID {
		return nil, store.ErrNotFound
	}
	return sess, nil
}
