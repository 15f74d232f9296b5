package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/infrastructure/dynamodb"
)

// TrackHandler handles track-related HTTP requests
type TrackHandler struct {
	tracks *dynamodb.TrackRepository
	logger *zap.Logger
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(tracks *dynamodb.TrackRepository, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{tracks: tracks, logger: logger}
}

// TrackResponse is the JSON view of a track.
type TrackResponse struct {
	ID           string `json:"id"`
	Artist       string `json:"artist"`
	Title        string `json:"title"`
	IsSong       bool   `json:"is_song"`
	PlayCount    int    `json:"play_count"`
	LatestPlayID string `json:"latest_play_id,omitempty"`
	CreatedTS    string `json:"created_ts"`
	UpdatedTS    string `json:"updated_ts"`
}

func trackResponse(track *domain.TrackItem) TrackResponse {
	resp := TrackResponse{
		ID:        track.ID.String(),
		Artist:    track.Artist,
		Title:     track.Title,
		IsSong:    track.IsSong,
		PlayCount: track.PlayCount,
		CreatedTS: track.CreatedTS,
		UpdatedTS: track.UpdatedTS,
	}
	if track.LatestPlayID != nil {
		resp.LatestPlayID = track.LatestPlayID.String()
	}
	return resp
}

// ListTracks handles GET /stations/{stationID}/tracks
func (h *TrackHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	stationID, err := domain.ParseID(chi.URLParam(r, "stationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	tracks, err := h.tracks.List(r.Context(), stationID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	responses := make([]TrackResponse, 0, len(tracks))
	for i := range tracks {
		responses = append(responses, trackResponse(&tracks[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

// GetTrack handles GET /stations/{stationID}/tracks/{trackID}
func (h *TrackHandler) GetTrack(w http.ResponseWriter, r *http.Request) {
	stationID, err := domain.ParseID(chi.URLParam(r, "stationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid station id")
		return
	}
	trackID, err := domain.ParseID(chi.URLParam(r, "trackID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	track, err := h.tracks.Get(r.Context(), stationID, trackID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, trackResponse(track))
}
