package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRequest_AcceptsBareUsername(t *testing.T) {
	var req JoinRequest
	require.NoError(t, json.Unmarshal([]byte(`"alice"`), &req))
	assert.Equal(t, JoinRequest{Username: "alice"}, req)

	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob","room":"tech"}`), &req))
	assert.Equal(t, JoinRequest{Username: "bob", Room: "tech"}, req)
}

func TestTypingRequest_AcceptsBareBool(t *testing.T) {
	var req TypingRequest
	require.NoError(t, json.Unmarshal([]byte(` true `), &req))
	assert.True(t, req.IsTyping)
	assert.Empty(t, req.Room)

	require.NoError(t, json.Unmarshal([]byte(`{"isTyping":false,"room":"gaming"}`), &req))
	assert.False(t, req.IsTyping)
	assert.Equal(t, "gaming", req.Room)
}

func TestSwitchRoomRequest_AcceptsBareRoom(t *testing.T) {
	var req SwitchRoomRequest
	require.NoError(t, json.Unmarshal([]byte(`"support"`), &req))
	assert.Equal(t, "support", req.Room)
}

func TestMessageReadRequest_AcceptsNumericAndStringID(t *testing.T) {
	var req MessageReadRequest
	require.NoError(t, json.Unmarshal([]byte(`{"messageId":"1234567890123456789"}`), &req))
	assert.EqualValues(t, 1234567890123456789, req.MessageID)

	require.NoError(t, json.Unmarshal([]byte(`{"messageId":42,"room":"general"}`), &req))
	assert.EqualValues(t, 42, req.MessageID)
}

func TestJoinRequest_RejectsGarbage(t *testing.T) {
	var req JoinRequest
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &req))
}
