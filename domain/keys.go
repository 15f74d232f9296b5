package domain

import "fmt"

// Key identifies one item in the table.
type Key struct {
	PK string
	SK string
}

// Key construction is pure and versioned. The live write path and every
// migration must agree byte-for-byte on these layouts, so nothing here may
// touch the clock, the environment, or the store. When an index scheme
// changes, the superseded constructor stays so historical rows can still be
// read under the scheme they were written with.

const (
	// StationsPK is the shared partition holding every station row.
	StationsPK = "STATIONS"

	// GSI1Name is the table's single secondary index. Its partition key is
	// the gsi1pk attribute; since the gsi1pk-reuse migration its range key
	// is the table's own sk attribute.
	GSI1Name = "gsi1"
)

// StationKey locates a station row: pk=STATIONS, sk=STATION#<station_id>.
func StationKey(stationID ID) Key {
	return Key{PK: StationsPK, SK: "STATION#" + stationID.String()}
}

// StationSKPrefix matches every station row within the STATIONS partition.
func StationSKPrefix() string { return "STATION#" }

// TracksPK is the partition holding all of a station's track rows.
func TracksPK(stationID ID) string {
	return fmt.Sprintf("STATION#%s#TRACKS", stationID)
}

// TrackKey locates a track row within its station's track partition.
func TrackKey(stationID, trackID ID) Key {
	return Key{PK: TracksPK(stationID), SK: "TRACK#" + trackID.String()}
}

// TrackSKPrefix matches every track row within a track partition.
func TrackSKPrefix() string { return "TRACK#" }

// TrackGSI1PK and TrackGSI1SK are the current artist/title projection keys on
// the track row itself.
func TrackGSI1PK(stationID ID, artist string) string {
	return fmt.Sprintf("STATION#%s#ARTIST#%s", stationID, artist)
}

func TrackGSI1SK(title string) string {
	return "TITLE#" + title
}

// TrackMetadataKey locates a standalone artist/title lookup row, the scheme
// that predates the secondary-index projection on the track row. The lookup
// rows are a derived projection: they carry no independent state and can be
// rebuilt in full from the track rows.
func TrackMetadataKey(stationID ID, artist, title string) Key {
	return Key{
		PK: fmt.Sprintf("STATION#%s#ARTIST#%s", stationID, artist),
		SK: "TITLE#" + title,
	}
}

// PlaysPK is the date-bucketed partition holding one day of a station's plays.
func PlaysPK(stationID ID, partition string) string {
	return fmt.Sprintf("STATION#%s#PLAYS#%s", stationID, partition)
}

// PlayKey locates a play row within its daily partition.
func PlayKey(stationID ID, partition string, playID ID) Key {
	return Key{PK: PlaysPK(stationID, partition), SK: "PLAY#" + playID.String()}
}

// PlaySKPrefix matches every play row within a daily partition.
func PlaySKPrefix() string { return "PLAY#" }

// PlayGSI1PK is the current play secondary-index partition key, keyed by
// track alone. There is no dedicated secondary sort key; the index reuses the
// table's sk, so plays of a track come back in play-id order.
func PlayGSI1PK(trackID ID) string {
	return "TRACK#" + trackID.String()
}

// PlayGSI1PKv1 and PlayGSI1SKv1 are the superseded play secondary-index keys,
// still present on rows the gsi1pk-reuse migration has not reached.
func PlayGSI1PKv1(stationID, trackID ID) string {
	return fmt.Sprintf("STATION#%s#TRACK#%s", stationID, trackID)
}

func PlayGSI1SKv1(playID ID) string {
	return "PLAY#" + playID.String()
}
