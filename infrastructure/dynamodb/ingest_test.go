package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"radiojournal/domain"
)

var ingestNow = time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

func newIngestLogger(t *testing.T, api *stubAPI) *PlayLogger {
	t.Helper()
	logger := NewPlayLogger(newTestStore(t, api), zap.NewNop())
	logger.now = func() time.Time { return ingestNow }
	return logger
}

// stubGetItem serves GetItem from a map keyed by pk/sk.
func stubGetItem(t *testing.T, rows map[domain.Key]any) func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	t.Helper()
	return func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
		key := domain.Key{
			PK: in.Key["pk"].(*types.AttributeValueMemberS).Value,
			SK: in.Key["sk"].(*types.AttributeValueMemberS).Value,
		}
		row, ok := rows[key]
		if !ok {
			return &dynamodb.GetItemOutput{}, nil
		}
		av, err := attributevalue.MarshalMap(row)
		require.NoError(t, err)
		return &dynamodb.GetItemOutput{Item: av}, nil
	}
}

func TestAddPlayRepeatOfCurrentSongWritesNothing(t *testing.T) {
	station := domain.NewStationItem(domain.StationCreate{Name: "test"}, ingestNow.Add(-time.Hour))
	trackID := domain.NewID(ingestNow.Add(-time.Hour))
	playID := domain.NewID(ingestNow.Add(-time.Minute))
	station.LatestPlay = &domain.LatestPlay{
		ID: playID, TrackID: trackID, Artist: "some artist", Title: "test song",
	}

	api := &stubAPI{t: t, getItemFn: stubGetItem(t, map[domain.Key]any{
		domain.StationKey(station.ID): station,
	})}
	logger := newIngestLogger(t, api)

	result, err := logger.AddPlay(context.Background(), station.ID, PlayInsert{
		Artist: "some artist", Title: "test song", IsSong: true,
	})
	require.NoError(t, err)
	assert.False(t, result.PlayCreated)
	assert.False(t, result.TrackCreated)
	assert.Equal(t, playID, result.PlayID)
	assert.Equal(t, trackID, result.TrackID)
}

func TestAddPlayNewTrack(t *testing.T) {
	station := domain.NewStationItem(domain.StationCreate{Name: "test"}, ingestNow.Add(-time.Hour))

	var transacted *dynamodb.TransactWriteItemsInput
	api := &stubAPI{
		t: t,
		getItemFn: stubGetItem(t, map[domain.Key]any{
			domain.StationKey(station.ID): station,
		}),
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			transacted = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}
	logger := newIngestLogger(t, api)

	result, err := logger.AddPlay(context.Background(), station.ID, PlayInsert{
		Artist: "some artist", Title: "test song", IsSong: true,
	})
	require.NoError(t, err)
	assert.True(t, result.PlayCreated)
	assert.True(t, result.TrackCreated)

	// track put, metadata put, play put, station update
	require.NotNil(t, transacted)
	require.Len(t, transacted.TransactItems, 4)
	assert.NotNil(t, transacted.TransactItems[0].Put)
	assert.NotNil(t, transacted.TransactItems[1].Put)
	assert.NotNil(t, transacted.TransactItems[2].Put)
	require.NotNil(t, transacted.TransactItems[3].Update)

	trackRow := transacted.TransactItems[0].Put.Item
	assert.Equal(t, domain.TracksPK(station.ID), trackRow["pk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, domain.TrackGSI1PK(station.ID, "some artist"), trackRow["gsi1pk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "TITLE#test song", trackRow["gsi1sk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1", trackRow["play_count"].(*types.AttributeValueMemberN).Value)

	metaRow := transacted.TransactItems[1].Put.Item
	assert.Equal(t, domain.TrackGSI1PK(station.ID, "some artist"), metaRow["pk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "TITLE#test song", metaRow["sk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, result.TrackID.String(), metaRow["track_id"].(*types.AttributeValueMemberS).Value)

	playRow := transacted.TransactItems[2].Put.Item
	assert.Equal(t, domain.PlaysPK(station.ID, "2023-06-01"), playRow["pk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, domain.PlayGSI1PK(result.TrackID), playRow["gsi1pk"].(*types.AttributeValueMemberS).Value)
	_, hasGSI1SK := playRow["gsi1sk"]
	assert.False(t, hasGSI1SK, "plays carry no dedicated secondary sort key")

	stationUpdate := transacted.TransactItems[3].Update
	assert.Contains(t, *stationUpdate.UpdateExpression, "SET")
	require.NotNil(t, stationUpdate.ConditionExpression)
	assertExprValue(t, stationUpdate, station.UpdatedTS)
	// First play ever recorded, so first_play_id is pinned and track_count bumped.
	assertExprValue(t, stationUpdate, result.PlayID.String())
	assertExprName(t, stationUpdate, "first_play_id")
	assertExprName(t, stationUpdate, "track_count")
}

func TestAddPlayExistingTrack(t *testing.T) {
	station := domain.NewStationItem(domain.StationCreate{Name: "test"}, ingestNow.Add(-time.Hour))
	firstPlayID := domain.NewID(ingestNow.Add(-30 * time.Minute))
	station.FirstPlayID = &firstPlayID
	station.PlayCount = 1
	station.TrackCount = 1

	track := domain.NewTrackItem(station.ID, "some artist", "test song", true, ingestNow.Add(-30*time.Minute))
	track.PlayCount = 1
	meta := domain.NewTrackMetadataItem(station.ID, track)

	var transacted *dynamodb.TransactWriteItemsInput
	api := &stubAPI{
		t: t,
		getItemFn: stubGetItem(t, map[domain.Key]any{
			domain.StationKey(station.ID):             station,
			{PK: meta.PK, SK: meta.SK}:                meta,
			domain.TrackKey(station.ID, track.ID):     track,
		}),
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			transacted = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}
	logger := newIngestLogger(t, api)

	result, err := logger.AddPlay(context.Background(), station.ID, PlayInsert{
		Artist: "some artist", Title: "test song", IsSong: true,
	})
	require.NoError(t, err)
	assert.True(t, result.PlayCreated)
	assert.False(t, result.TrackCreated)
	assert.Equal(t, track.ID, result.TrackID)

	// play put, track update, station update
	require.NotNil(t, transacted)
	require.Len(t, transacted.TransactItems, 3)
	assert.NotNil(t, transacted.TransactItems[0].Put)

	trackUpdate := transacted.TransactItems[1].Update
	require.NotNil(t, trackUpdate)
	assert.Equal(t, domain.TrackKey(station.ID, track.ID).SK, trackUpdate.Key["sk"].(*types.AttributeValueMemberS).Value)
	assertExprName(t, trackUpdate, "play_count")
	assertExprValue(t, trackUpdate, track.UpdatedTS)

	stationUpdate := transacted.TransactItems[2].Update
	require.NotNil(t, stationUpdate)
	// first_play_id is already pinned; it must never be touched again.
	assertNoExprName(t, stationUpdate, "first_play_id")
	assertNoExprName(t, stationUpdate, "track_count")
}

func TestAddPlayConcurrentInsertConflicts(t *testing.T) {
	station := domain.NewStationItem(domain.StationCreate{Name: "test"}, ingestNow.Add(-time.Hour))

	api := &stubAPI{
		t: t,
		getItemFn: stubGetItem(t, map[domain.Key]any{
			domain.StationKey(station.ID): station,
		}),
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: stringPtr("None")},
					{Code: stringPtr("None")},
					{Code: stringPtr("None")},
					{Code: stringPtr("ConditionalCheckFailed")},
				},
			}
		},
	}
	logger := newIngestLogger(t, api)

	_, err := logger.AddPlay(context.Background(), station.ID, PlayInsert{
		Artist: "some artist", Title: "test song", IsSong: true,
	})
	require.Error(t, err)
}

func stringPtr(s string) *string { return &s }

func assertExprName(t *testing.T, update *types.Update, name string) {
	t.Helper()
	for _, v := range update.ExpressionAttributeNames {
		if v == name {
			return
		}
	}
	t.Errorf("expected attribute name %q in update expression", name)
}

func assertNoExprName(t *testing.T, update *types.Update, name string) {
	t.Helper()
	for _, v := range update.ExpressionAttributeNames {
		if v == name {
			t.Errorf("unexpected attribute name %q in update expression", name)
		}
	}
}

func assertExprValue(t *testing.T, update *types.Update, want string) {
	t.Helper()
	for _, av := range update.ExpressionAttributeValues {
		if s, ok := av.(*types.AttributeValueMemberS); ok && s.Value == want {
			return
		}
	}
	t.Errorf("expected attribute value %q in update expression", want)
}
