package domain

import "time"

// TrackItem is a track row, scoped under its station's track partition.
//
// play_count counts plays of this specific track; the sum over a station's
// tracks must equal the station's own play_count. GSI1PK/GSI1SK carry the
// artist/title projection of the current index scheme.
type TrackItem struct {
	PK           string `dynamodbav:"pk"`
	SK           string `dynamodbav:"sk"`
	GSI1PK       string `dynamodbav:"gsi1pk,omitempty"`
	GSI1SK       string `dynamodbav:"gsi1sk,omitempty"`
	ID           ID     `dynamodbav:"id"`
	Title        string `dynamodbav:"title"`
	Artist       string `dynamodbav:"artist"`
	IsSong       bool   `dynamodbav:"is_song"`
	PlayCount    int    `dynamodbav:"play_count"`
	LatestPlayID *ID    `dynamodbav:"latest_play_id"`
	CreatedTS    string `dynamodbav:"created_ts"`
	UpdatedTS    string `dynamodbav:"updated_ts"`
}

// NewTrackItem builds a track row for the first sighting of an
// (artist, title) pair on a station.
func NewTrackItem(stationID ID, artist, title string, isSong bool, now time.Time) TrackItem {
	id := NewID(now)
	key := TrackKey(stationID, id)
	ts := Timestamp(now)
	return TrackItem{
		PK:        key.PK,
		SK:        key.SK,
		GSI1PK:    TrackGSI1PK(stationID, artist),
		GSI1SK:    TrackGSI1SK(title),
		ID:        id,
		Title:     title,
		Artist:    artist,
		IsSong:    isSong,
		CreatedTS: ts,
		UpdatedTS: ts,
	}
}

// TrackMetadataItem is a standalone artist/title lookup row pointing at a
// track. Rebuildable in full from the track rows.
type TrackMetadataItem struct {
	PK      string `dynamodbav:"pk"`
	SK      string `dynamodbav:"sk"`
	TrackID ID     `dynamodbav:"track_id"`
}

// NewTrackMetadataItem derives the lookup row for a track.
func NewTrackMetadataItem(stationID ID, track TrackItem) TrackMetadataItem {
	key := TrackMetadataKey(stationID, track.Artist, track.Title)
	return TrackMetadataItem{PK: key.PK, SK: key.SK, TrackID: track.ID}
}
