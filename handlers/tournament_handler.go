package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pongarena/tournament-engine/models"
	"github.com/pongarena/tournament-engine/services"
)

type TournamentHandler struct {
	tournaments services.TournamentService
	matches     services.MatchService
}

func NewTournamentHandler(tournaments services.TournamentService, matches services.MatchService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments, matches: matches}
}

type participantRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

type createTournamentRequest struct {
	Name       string             `json:"name"`
	Size       int                `json:"size"`
	Visibility string             `json:"visibility"`
	Owner      participantRequest `json:"owner"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	t, err := h.tournaments.Create(r.Context(), services.CreateTournamentInput{
		Name:       req.Name,
		Size:       req.Size,
		Visibility: models.TournamentVisibility(req.Visibility),
		Owner: services.ParticipantInput{
			ID:          req.Owner.ID,
			DisplayName: req.Owner.DisplayName,
			Type:        models.ParticipantType(req.Owner.Type),
		},
	})
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	t, err := h.tournaments.Join(r.Context(), chi.URLParam(r, "id"), services.ParticipantInput{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		Type:        models.ParticipantType(req.Type),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type leaveRequest struct {
	ParticipantID string `json:"participant_id"`
}

func (h *TournamentHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournaments.Leave(r.Context(), chi.URLParam(r, "id"), req.ParticipantID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "left tournament"})
}

type cancelRequest struct {
	RequesterID string `json:"requester_id"`
}

func (h *TournamentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournaments.Cancel(r.Context(), chi.URLParam(r, "id"), req.RequesterID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament cancelled"})
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournaments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournaments)
}

func (h *TournamentHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournaments.GetActiveByParticipant(r.Context(), chi.URLParam(r, "participantID"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type walkoverRequest struct {
	WinnerID string `json:"winner_id"`
}

func (h *TournamentHandler) DeclareWalkover(w http.ResponseWriter, r *http.Request) {
	var req walkoverRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.matches.DeclareWalkover(r.Context(), chi.URLParam(r, "matchID"), req.WinnerID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "walkover declared"})
}
