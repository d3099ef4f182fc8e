package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
)

type recordingPublisher struct {
	events []profile.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev profile.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	first := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	last := &recordingPublisher{}

	f := NewFanout(first, nil, failing, last)
	require.Len(t, f, 3)

	ev := profile.Event{EventType: profile.EventItemAdded, UserID: uuid.New(), Version: 2}
	err := f.Publish(context.Background(), ev)

	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, first.events, 1)
	assert.Len(t, failing.events, 1)
	assert.Len(t, last.events, 1)
}

func TestDecodeEvent(t *testing.T) {
	userID := uuid.New()
	msg := kafka.Message{Value: []byte(`{"event_type":"item.deleted","user_id":"` + userID.String() + `","collection":"skills","item_id":"abc","version":7}`)}

	ev, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, profile.EventItemDeleted, ev.EventType)
	assert.Equal(t, userID, ev.UserID)
	assert.Equal(t, profile.CollectionSkills, ev.Collection)
	assert.Equal(t, "abc", ev.ItemID)
	assert.Equal(t, int64(7), ev.Version)

	_, err = DecodeEvent(kafka.Message{Value: []byte(`{"version":1}`)})
	assert.Error(t, err)

	_, err = DecodeEvent(kafka.Message{Value: []byte(`not json`)})
	assert.Error(t, err)
}
