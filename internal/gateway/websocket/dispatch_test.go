package websocket

import (
	"testing"

	"room_chat_server/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	req  any
}

type recordingHandler struct {
	calls []call
}

func (r *recordingHandler) add(name string, req any) { r.calls = append(r.calls, call{name, req}) }

func (r *recordingHandler) Connect(string)    { r.add("connect", nil) }
func (r *recordingHandler) Disconnect(string) { r.add("disconnect", nil) }
func (r *recordingHandler) Join(_ string, req request.JoinRequest) {
	r.add("join", req)
}
func (r *recordingHandler) SwitchRoom(_ string, req request.SwitchRoomRequest) {
	r.add("switch", req)
}
func (r *recordingHandler) SendMessage(_ string, req request.SendMessageRequest) {
	r.add("send", req)
}
func (r *recordingHandler) Typing(_ string, req request.TypingRequest) {
	r.add("typing", req)
}
func (r *recordingHandler) PrivateMessage(_ string, req request.PrivateMessageRequest) {
	r.add("private", req)
}
func (r *recordingHandler) MessageRead(_ string, req request.MessageReadRequest) {
	r.add("read", req)
}

func TestDispatch_RoutesEvents(t *testing.T) {
	h := &recordingHandler{}
	frames := []string{
		`{"event":"user_join","data":{"username":"alice","room":"tech"}}`,
		`{"event":"user_join","data":"bob"}`,
		`{"event":"switch_room","data":"gaming"}`,
		`{"event":"send_message","data":{"message":"hi"}}`,
		`{"event":"typing","data":true}`,
		`{"event":"private_message","data":{"to":"c2","message":"psst"}}`,
		`{"event":"message_read","data":{"messageId":"77"}}`,
	}
	for _, f := range frames {
		Dispatch(h, "c1", []byte(f))
	}

	require.Len(t, h.calls, 7)
	assert.Equal(t, call{"join", request.JoinRequest{Username: "alice", Room: "tech"}}, h.calls[0])
	assert.Equal(t, call{"join", request.JoinRequest{Username: "bob"}}, h.calls[1])
	assert.Equal(t, call{"switch", request.SwitchRoomRequest{Room: "gaming"}}, h.calls[2])
	assert.Equal(t, call{"send", request.SendMessageRequest{Message: "hi"}}, h.calls[3])
	assert.Equal(t, call{"typing", request.TypingRequest{IsTyping: true}}, h.calls[4])
	assert.Equal(t, call{"private", request.PrivateMessageRequest{To: "c2", Message: "psst"}}, h.calls[5])
	assert.Equal(t, call{"read", request.MessageReadRequest{MessageID: 77}}, h.calls[6])
}

func TestDispatch_IgnoresMalformedInput(t *testing.T) {
	h := &recordingHandler{}
	for _, f := range []string{
		`not json`,
		`{"event":"nope","data":{}}`,
		`{"event":"user_join","data":[1,2]}`,
		`{"event":"message_read","data":{"messageId":"abc"}}`,
		`{"event":"typing","data":"yes"}`,
	} {
		Dispatch(h, "c1", []byte(f))
	}
	assert.Empty(t, h.calls)
}
