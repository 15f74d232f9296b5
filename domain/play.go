package domain

import "time"

// PlayItem is a play row. Plays are immutable once written, except for
// secondary-index relocation performed by migrations. The daily partition a
// play lives in is derived from the timestamp embedded in its own ID.
type PlayItem struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	GSI1PK    string `dynamodbav:"gsi1pk,omitempty"`
	GSI1SK    string `dynamodbav:"gsi1sk,omitempty"`
	ID        ID     `dynamodbav:"id"`
	TrackID   ID     `dynamodbav:"track_id"`
	CreatedTS string `dynamodbav:"created_ts"`
	UpdatedTS string `dynamodbav:"updated_ts"`
}

// NewPlayItem builds a play row under the current index scheme.
func NewPlayItem(stationID, trackID ID, now time.Time) PlayItem {
	id := NewID(now)
	key := PlayKey(stationID, PlayPartition(now), id)
	ts := Timestamp(now)
	return PlayItem{
		PK:        key.PK,
		SK:        key.SK,
		GSI1PK:    PlayGSI1PK(trackID),
		ID:        id,
		TrackID:   trackID,
		CreatedTS: ts,
		UpdatedTS: ts,
	}
}
