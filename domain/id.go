// Package domain defines the radiojournal entities and the single-table key
// schema they are stored under.
package domain

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oklog/ulid/v2"
)

// ID is a time-sortable unique identifier. Its lexicographic order matches
// creation order and the embedded timestamp can be decoded back out, which is
// what the play-partition derivation relies on. Stored as the canonical
// 26-character string everywhere: table keys, attributes, and JSON.
type ID struct {
	ulid.ULID
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID generates an ID for the given creation time. IDs generated within one
// process are strictly monotonic.
func NewID(t time.Time) ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ID{ulid.MustNew(ulid.Timestamp(t.UTC()), entropy)}
}

// ParseID parses the canonical 26-character string form of an ID.
func ParseID(s string) (ID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ID{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID{id}, nil
}

// Compare returns -1, 0 or 1 depending on lexicographic (and therefore
// chronological) order.
func (id ID) Compare(other ID) int {
	return id.ULID.Compare(other.ULID)
}

// MarshalDynamoDBAttributeValue stores the ID as its canonical string.
func (id ID) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberS{Value: id.String()}, nil
}

// UnmarshalDynamoDBAttributeValue parses the canonical string form.
func (id *ID) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		parsed, err := ParseID(v.Value)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case *types.AttributeValueMemberNULL:
		*id = ID{}
		return nil
	default:
		return fmt.Errorf("cannot unmarshal %T into ID", av)
	}
}

// IDTime decodes the creation timestamp embedded in an ID.
func IDTime(id ID) time.Time {
	return ulid.Time(id.Time()).UTC()
}

// TruncateToDay drops everything below day granularity, in UTC.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PlayPartition derives the daily play partition (YYYY-MM-DD) for a timestamp.
func PlayPartition(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PlayPartitionOf derives the daily play partition a play belongs to from the
// timestamp embedded in its own ID.
func PlayPartitionOf(playID ID) string {
	return PlayPartition(IDTime(playID))
}

// Timestamp renders a time the way the live table stores created_ts and
// updated_ts: RFC3339 UTC with a Z suffix. The rendered string doubles as the
// optimistic-concurrency token, so it must stay byte-stable.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}
