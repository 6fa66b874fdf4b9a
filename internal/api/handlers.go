package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/midolearning/village/internal/leveling"
	"github.com/midolearning/village/internal/progression"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type skillsResponse struct {
	Version string                   `json:"version"`
	Skills  []progression.Definition `json:"skills"`
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, skillsResponse{
		Version: s.catalog.Version(),
		Skills:  s.catalog.All(),
	})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	exp, err := strconv.ParseInt(chi.URLParam(r, "exp"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", "experience must be an integer")
		return
	}
	s.writeJSON(w, http.StatusOK, leveling.FromExperience(exp))
}

type createCharacterRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	c, err := s.svc.CreateCharacter(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// sessionRequest is the wire form of a session report.
type sessionRequest struct {
	SkillID            string   `json:"skill_id"`
	StageID            string   `json:"stage_id"`
	SessionID          string   `json:"session_id"`
	ElapsedSeconds     float64  `json:"elapsed_seconds"`
	Accuracy           float64  `json:"accuracy"`
	WPM                *float64 `json:"wpm"`
	Score              *float64 `json:"score"`
	StreakAtCompletion int      `json:"streak_at_completion"`
	Timestamp          string   `json:"timestamp"`
}

func (req sessionRequest) report() (progression.SessionReport, error) {
	rep := progression.SessionReport{
		SkillID:            req.SkillID,
		StageID:            req.StageID,
		SessionID:          req.SessionID,
		ElapsedSeconds:     req.ElapsedSeconds,
		Accuracy:           req.Accuracy,
		WPM:                req.WPM,
		Score:              req.Score,
		StreakAtCompletion: req.StreakAtCompletion,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return rep, &progression.ValidationError{Field: "timestamp", Reason: "must be RFC 3339"}
		}
		rep.Timestamp = ts
	}
	return rep, nil
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "validation", "request body too large")
		return
	}
	if err := validateSessionBody(raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	var req sessionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	rep, err := req.report()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	res, err := s.svc.CompleteSession(r.Context(), chi.URLParam(r, "id"), rep)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	sessions, err := s.svc.Sessions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	rewards, err := s.svc.Rewards(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

type redeemRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	wallet, err := s.svc.Redeem(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wallet)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func listLimit(r *http.Request) (int, error) {
	q := r.URL.Query().Get("limit")
	if q == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", q)
	}
	return min(n, maxListLimit), nil
}
