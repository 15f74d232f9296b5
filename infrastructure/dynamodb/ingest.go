package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"radiojournal/domain"
)

// PlayInsert is one observed play to record.
type PlayInsert struct {
	Artist string
	Title  string
	IsSong bool
}

// AddPlayResult reports what the insert actually wrote.
type AddPlayResult struct {
	PlayID       domain.ID
	TrackID      domain.ID
	PlayCreated  bool
	TrackCreated bool
}

// PlayLogger is the live write path: it records observed plays, minting track
// identities on first sighting and maintaining the station's denormalized
// counters and latest-play summary in the same atomic group.
type PlayLogger struct {
	store    *Store
	tracks   *TrackRepository
	stations *StationRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewPlayLogger(store *Store, logger *zap.Logger) *PlayLogger {
	return &PlayLogger{
		store:    store,
		tracks:   NewTrackRepository(store, logger),
		stations: NewStationRepository(store, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// AddPlay records one observed play for a station. When the station's latest
// play already names the same artist and title the observation is a repeat of
// the current song and nothing is written. All writes of one insert go through
// a single transaction conditioned on the station's updated_ts, so two
// concurrent inserts for the same station cannot both land.
func (l *PlayLogger) AddPlay(ctx context.Context, stationID domain.ID, insert PlayInsert) (*AddPlayResult, error) {
	station, err := l.stations.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}

	if latest := station.LatestPlay; latest != nil &&
		latest.Artist == insert.Artist && latest.Title == insert.Title {
		return &AddPlayResult{PlayID: latest.ID, TrackID: latest.TrackID}, nil
	}

	now := l.now().UTC()
	track, err := l.tracks.FindByMetadata(ctx, stationID, insert.Artist, insert.Title)
	if err != nil {
		return nil, err
	}

	var items []types.TransactWriteItem
	var result AddPlayResult
	result.PlayCreated = true

	if track != nil {
		play := domain.NewPlayItem(stationID, track.ID, now)
		result.PlayID = play.ID
		result.TrackID = track.ID

		playPut, err := buildPlayPut(l.store.tableName, play)
		if err != nil {
			return nil, err
		}
		trackUpdate, err := buildTrackUpdate(l.store.tableName, stationID, track, play, now)
		if err != nil {
			return nil, err
		}
		stationUpdate, err := buildStationUpdate(l.store.tableName, station, track, play, insert, now, false)
		if err != nil {
			return nil, err
		}
		items = append(items, playPut, trackUpdate, stationUpdate)
	} else {
		newTrack := domain.NewTrackItem(stationID, insert.Artist, insert.Title, insert.IsSong, now)
		newTrack.PlayCount = 1
		play := domain.NewPlayItem(stationID, newTrack.ID, now)
		newTrack.LatestPlayID = &play.ID
		result.PlayID = play.ID
		result.TrackID = newTrack.ID
		result.TrackCreated = true

		trackPut, err := buildTrackPut(l.store.tableName, newTrack)
		if err != nil {
			return nil, err
		}
		metaPut, err := buildMetadataPut(l.store.tableName, domain.NewTrackMetadataItem(stationID, newTrack))
		if err != nil {
			return nil, err
		}
		playPut, err := buildPlayPut(l.store.tableName, play)
		if err != nil {
			return nil, err
		}
		stationUpdate, err := buildStationUpdate(l.store.tableName, station, &newTrack, play, insert, now, true)
		if err != nil {
			return nil, err
		}
		items = append(items, trackPut, metaPut, playPut, stationUpdate)
	}

	if err := l.store.TransactWrite(ctx, items); err != nil {
		return nil, err
	}

	l.logger.Info("added play",
		zap.String("station_id", stationID.String()),
		zap.String("play_id", result.PlayID.String()),
		zap.String("track_id", result.TrackID.String()),
		zap.Bool("track_created", result.TrackCreated),
	)
	return &result, nil
}

func buildPlayPut(tableName string, play domain.PlayItem) (types.TransactWriteItem, error) {
	return buildPut(tableName, play)
}

func buildTrackPut(tableName string, track domain.TrackItem) (types.TransactWriteItem, error) {
	return buildPut(tableName, track)
}

func buildMetadataPut(tableName string, meta domain.TrackMetadataItem) (types.TransactWriteItem, error) {
	return buildPut(tableName, meta)
}

func buildPut(tableName string, item any) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal put item: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(tableName),
			Item:      av,
		},
	}, nil
}

// buildTrackUpdate bumps an existing track's play counter and latest-play
// pointer, conditioned on the updated_ts observed during the lookup.
func buildTrackUpdate(tableName string, stationID domain.ID, track *domain.TrackItem, play domain.PlayItem, now time.Time) (types.TransactWriteItem, error) {
	update := expression.
		Set(expression.Name("updated_ts"), expression.Value(domain.Timestamp(now))).
		Set(expression.Name("latest_play_id"), expression.Value(play.ID)).
		Set(expression.Name("play_count"), expression.Name("play_count").Plus(expression.Value(1)))
	cond := expression.Name("updated_ts").Equal(expression.Value(track.UpdatedTS))

	return buildConditionalUpdate(tableName, domain.TrackKey(stationID, track.ID), update, cond)
}

// buildStationUpdate maintains the station's denormalized summary. The first
// play ever recorded also pins first_play_id, which is immutable afterwards;
// the updated_ts condition makes the whole insert lose cleanly to a
// concurrent one.
func buildStationUpdate(tableName string, station *domain.StationItem, track *domain.TrackItem, play domain.PlayItem, insert PlayInsert, now time.Time, trackCreated bool) (types.TransactWriteItem, error) {
	update := expression.
		Set(expression.Name("updated_ts"), expression.Value(domain.Timestamp(now))).
		Set(expression.Name("latest_play"), expression.Value(domain.LatestPlay{
			ID:      play.ID,
			TrackID: track.ID,
			Artist:  insert.Artist,
			Title:   insert.Title,
		})).
		Set(expression.Name("play_count"), expression.Name("play_count").Plus(expression.Value(1)))
	if trackCreated {
		update = update.Set(expression.Name("track_count"), expression.Name("track_count").Plus(expression.Value(1)))
	}
	if station.FirstPlayID == nil {
		update = update.Set(expression.Name("first_play_id"), expression.Value(play.ID))
	}
	cond := expression.Name("updated_ts").Equal(expression.Value(station.UpdatedTS))

	return buildConditionalUpdate(tableName, domain.StationKey(station.ID), update, cond)
}

func buildConditionalUpdate(tableName string, key domain.Key, update expression.UpdateBuilder, cond expression.ConditionBuilder) (types.TransactWriteItem, error) {
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("build update expression: %w", err)
	}
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(tableName),
			Key:                       keyAttributes(key.PK, key.SK),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}
