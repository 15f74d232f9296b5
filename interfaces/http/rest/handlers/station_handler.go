package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/infrastructure/dynamodb"
)

// StationHandler handles station-related HTTP requests
type StationHandler struct {
	stations *dynamodb.StationRepository
	logger   *zap.Logger
}

// NewStationHandler creates a new station handler
func NewStationHandler(stations *dynamodb.StationRepository, logger *zap.Logger) *StationHandler {
	return &StationHandler{stations: stations, logger: logger}
}

// StationResponse is the JSON view of a station.
type StationResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Location   string             `json:"location,omitempty"`
	LatestPlay *domain.LatestPlay `json:"latest_play,omitempty"`
	TrackCount int                `json:"track_count"`
	PlayCount  int                `json:"play_count"`
	CreatedTS  string             `json:"created_ts"`
	UpdatedTS  string             `json:"updated_ts"`
}

func stationResponse(station *domain.StationItem) StationResponse {
	return StationResponse{
		ID:         station.ID.String(),
		Name:       station.Name,
		Location:   station.Location,
		LatestPlay: station.LatestPlay,
		TrackCount: station.TrackCount,
		PlayCount:  station.PlayCount,
		CreatedTS:  station.CreatedTS,
		UpdatedTS:  station.UpdatedTS,
	}
}

// CreateStationRequest represents the request body for creating a station
type CreateStationRequest struct {
	Name     string                `json:"name"`
	Location string                `json:"location,omitempty"`
	Fetcher  *domain.FetcherConfig `json:"fetcher,omitempty"`
}

// CreateStation handles POST /stations
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req CreateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	station, err := h.stations.Create(r.Context(), domain.StationCreate{
		Name:     req.Name,
		Location: req.Location,
		Fetcher:  req.Fetcher,
	})
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, stationResponse(station))
}

// ListStations handles GET /stations
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.List(r.Context())
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}

	responses := make([]StationResponse, 0, len(stations))
	for i := range stations {
		responses = append(responses, stationResponse(&stations[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

// GetStation handles GET /stations/{stationID}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	stationID, err := domain.ParseID(chi.URLParam(r, "stationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid station id")
		return
	}

	station, err := h.stations.Get(r.Context(), stationID)
	if err != nil {
		respondAppError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stationResponse(station))
}
