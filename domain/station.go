package domain

import "time"

// FetcherID names an external playlist source.
type FetcherID string

const (
	FetcherCoolism FetcherID = "coolism"
	FetcherAtime   FetcherID = "atime"
	FetcherIheart  FetcherID = "iheart"
)

// FetcherConfig references the external source a station's plays are pulled
// from. Station is the atime station handle, Slug the iheart one; each is set
// only for its own fetcher.
type FetcherConfig struct {
	ID      FetcherID `dynamodbav:"id" json:"id"`
	Station string    `dynamodbav:"station,omitempty" json:"station,omitempty"`
	Slug    string    `dynamodbav:"slug,omitempty" json:"slug,omitempty"`
}

// LatestPlay is the denormalized summary of a station's most recent play.
type LatestPlay struct {
	ID      ID     `dynamodbav:"id" json:"id"`
	TrackID ID     `dynamodbav:"track_id" json:"track_id"`
	Artist  string `dynamodbav:"artist" json:"artist"`
	Title   string `dynamodbav:"title" json:"title"`
}

// StationItem is a station row.
//
// play_count equals the total number of play rows ever written for the
// station, and first_play_id is immutable once set. latest_play_id and
// latest_play_track_id are the pre-latest_play scalar pair; they survive on
// rows written before the summary object existed.
type StationItem struct {
	PK                string         `dynamodbav:"pk"`
	SK                string         `dynamodbav:"sk"`
	ID                ID             `dynamodbav:"id"`
	Name              string         `dynamodbav:"name"`
	Location          string         `dynamodbav:"location,omitempty"`
	Fetcher           *FetcherConfig `dynamodbav:"fetcher,omitempty"`
	FirstPlayID       *ID            `dynamodbav:"first_play_id"`
	LatestPlay        *LatestPlay    `dynamodbav:"latest_play,omitempty"`
	LatestPlayID      *ID            `dynamodbav:"latest_play_id,omitempty"`
	LatestPlayTrackID *ID            `dynamodbav:"latest_play_track_id,omitempty"`
	TrackCount        int            `dynamodbav:"track_count"`
	PlayCount         int            `dynamodbav:"play_count"`
	CreatedTS         string         `dynamodbav:"created_ts"`
	UpdatedTS         string         `dynamodbav:"updated_ts"`
}

// StationCreate carries the operator-supplied fields of a new station.
type StationCreate struct {
	Name     string
	Location string
	Fetcher  *FetcherConfig
}

// NewStationItem builds a station row with zeroed counters.
func NewStationItem(create StationCreate, now time.Time) StationItem {
	id := NewID(now)
	key := StationKey(id)
	ts := Timestamp(now)
	return StationItem{
		PK:        key.PK,
		SK:        key.SK,
		ID:        id,
		Name:      create.Name,
		Location:  create.Location,
		Fetcher:   create.Fetcher,
		CreatedTS: ts,
		UpdatedTS: ts,
	}
}
