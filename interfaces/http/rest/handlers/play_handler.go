package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/infrastructure/dynamodb"
)

const defaultPlaysByTrackLimit = 50

// PlayHandler handles play-related HTTP requests
type PlayHandler struct {
	plays  *dynamodb.PlayRepository
	writer *dynamodb.PlayLogger
	logger *zap.Logger
}

// NewPlayHandler creates a new play handler
func NewPlayHandler(plays *dynamodb.PlayRepository, writer *dynamodb.PlayLogger, logger *zap.Logger) *PlayHandler {
	return &PlayHandler{plays: plays, writer: writer, logger: logger}
}

// PlayResponse is the JSON view of a play.
type PlayResponse struct {
	ID        string `json:"id"`
	TrackID   string `json:"track_id"`
	CreatedTS string `json:"created_ts"`
}

// ListPlays handles GET /stations/{stationID}/plays?date=YYYY-MM-DD. The date
// defaults to today; each date is one storage partition.
func (h *PlayHandler) ListPlays(w http.ResponseWriter, r *http.Request) {
	stationID, err := domain.ParseID(chi.URLParam(r, "stationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	partition := r.URL.Query().Get("date")
	if partition == "" {
		partition = domain.PlayPartition(time.Now().UTC())
	} else if _, err := time.Parse("2006-01-02", partition); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	plays, err := h.plays.ListByPartition(r.Context(), stationID, partition)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	responses := make([]PlayResponse, 0, len(plays))
	for _, play := range plays {
		responses = append(responses, PlayResponse{
			ID:        play.ID.String(),
			TrackID:   play.TrackID.String(),
			CreatedTS: play.CreatedTS,
		})
	}
	respondJSON(w, http.StatusOK, responses)
}

// ListPlaysByTrack handles GET /tracks/{trackID}/plays, newest first.
func (h *PlayHandler) ListPlaysByTrack(w http.ResponseWriter, r *http.Request) {
	trackID, err := domain.ParseID(chi.URLParam(r, "trackID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	limit := defaultPlaysByTrackLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	rows, err := h.plays.ListByTrack(r.Context(), trackID, int32(limit))
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// AddPlayRequest represents the request body for recording a play
type AddPlayRequest struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	IsSong bool   `json:"is_song"`
}

// AddPlayResponse reports what recording a play wrote.
type AddPlayResponse struct {
	PlayID       string `json:"play_id"`
	TrackID      string `json:"track_id"`
	PlayCreated  bool   `json:"play_created"`
	TrackCreated bool   `json:"track_created"`
}

// AddPlay handles POST /stations/{stationID}/plays
func (h *PlayHandler) AddPlay(w http.ResponseWriter, r *http.Request) {
	stationID, err := domain.ParseID(chi.URLParam(r, "stationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	var req AddPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	result, err := h.writer.AddPlay(r.Context(), stationID, dynamodb.PlayInsert{
		Artist: req.Artist,
		Title:  req.Title,
		IsSong: req.IsSong,
	})
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.PlayCreated {
		status = http.StatusCreated
	}
	respondJSON(w, status, AddPlayResponse{
		PlayID:       result.PlayID.String(),
		TrackID:      result.TrackID.String(),
		PlayCreated:  result.PlayCreated,
		TrackCreated: result.TrackCreated,
	})
}
