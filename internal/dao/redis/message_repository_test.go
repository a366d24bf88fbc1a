package redis

import (
	"encoding/json"
	"testing"
	"time"

	"room_chat_server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	r := NewMessageRepository(nil, "")
	assert.Equal(t, "chat:room:general:messages", r.roomKey("general"))
	assert.Equal(t, "chat:message:42", r.messageKey("42"))

	r = NewMessageRepository(nil, "test")
	assert.Equal(t, "test:room:tech:messages", r.roomKey("tech"))
}

func TestScoreBefore(t *testing.T) {
	assert.Equal(t, "+inf", scoreBefore(nil))
	cursor := time.UnixMilli(1700000000123)
	assert.Equal(t, "(1700000000123", scoreBefore(&cursor))
}

func TestDecodeMessages_SkipsMissingAndBroken(t *testing.T) {
	body, err := json.Marshal(model.Message{ID: 7, Room: "general", Sender: "alice", Timestamp: time.UnixMilli(1000).UTC()})
	require.NoError(t, err)

	got := decodeMessages([]any{string(body), nil, "{broken"})
	require.Len(t, got, 1)
	assert.EqualValues(t, 7, got[0].ID)
	assert.Equal(t, []string{}, got[0].ReadBy)
}
