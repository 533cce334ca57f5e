package engine

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virgil-serbanuta/kdebug/internal/debuglog"
	"github.com/virgil-serbanuta/kdebug/internal/protocol"
)

// synchronousPost runs actions immediately instead of queueing them, so
// Session's wiring can be exercised deterministically without a real
// dispatcher goroutine.
func synchronousPost(action func()) { action() }

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	var sent bytes.Buffer
	send := func(cmd string) { sent.WriteString(cmd) }
	s := newSession(send, synchronousPost, "/tmp/graph", 80, nil, nil)
	return s, &sent
}

// wireMarker is the 0x00 0xFF 0x00 frame the engine wraps every decimal
// number in on its stdout stream.
func wireMarker() []byte { return []byte{0x00, 0xFF, 0x00} }

func wireNum(n int) []byte {
	b := append([]byte{}, wireMarker()...)
	b = append(b, []byte(strconv.Itoa(n))...)
	b = append(b, wireMarker()...)
	return b
}

// promptBytes builds a full "\nKore (<id>)> " prompt line.
func promptBytes(id int) []byte {
	b := []byte("\nKore (")
	b = append(b, wireNum(id)...)
	b = append(b, []byte(")> ")...)
	return b
}

// konfigResponseBytes builds a konfig dump for nodeID followed immediately
// by the next prompt line, the shape the engine emits for a "konfig\n"
// command: "\nConfig at node <id> is:<body>\nKore (<id>)> ".
func konfigResponseBytes(nodeID int, body string) []byte {
	b := []byte("\nConfig at node ")
	b = append(b, wireNum(nodeID)...)
	b = append(b, []byte(" is:")...)
	b = append(b, []byte(body)...)
	b = append(b, '\n')
	b = append(b, []byte("Kore (")...)
	b = append(b, wireNum(nodeID)...)
	b = append(b, []byte(")> ")...)
	return b
}

func feedPrompt(s *Session, id int) {
	s.stdoutParser.FeedMany(promptBytes(id))
}

func feedKonfigResponse(s *Session, nodeID int, body string) {
	s.stdoutParser.FeedMany(konfigResponseBytes(nodeID, body))
}

func TestNewSessionStartsRootedAtZero(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, 0, s.Tree.ID())
}

func TestSessionFirstPromptRequestsRootKonfig(t *testing.T) {
	s, sent := newTestSession(t)

	feedPrompt(s, 0)

	assert.Equal(t, "konfig\n", sent.String())
}

func TestSessionKonfigResponseStoresKonfigAndRequestsSelect(t *testing.T) {
	s, sent := newTestSession(t)

	feedPrompt(s, 0)
	sent.Reset()
	feedKonfigResponse(s, 0, "a, b, c.")

	node, ok := s.Tree.FindNode(0)
	require.True(t, ok)
	lines, has := node.Konfig()
	require.True(t, has)
	assert.Equal(t, []string{"a, b, c."}, lines)

	assert.Equal(t, "select 0\n", sent.String())
}

func TestSessionFeedStdoutRecordsToDebugLog(t *testing.T) {
	var buf bytes.Buffer
	w, err := debuglog.NewWriter(&buf)
	require.NoError(t, err)

	send := func(string) {}
	s := newSession(send, synchronousPost, "/tmp/graph", 80, w, nil)

	s.FeedStdout(promptBytes(0))

	records, err := debuglog.ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, debuglog.KindBytesReceived, records[0].Kind)
	assert.Equal(t, debuglog.StreamStdout, records[0].Stream)
	assert.Equal(t, promptBytes(0), records[0].Bytes)
}

func TestSessionFeedStderrRecognizesStuckMarker(t *testing.T) {
	s, _ := newTestSession(t)
	s.FeedStderr([]byte("WarnStuckClaimState"))
	assert.Equal(t, protocol.EndStuck, s.EndState.Get())
}

func TestSessionFeedStderrRecordsToDebugLog(t *testing.T) {
	var buf bytes.Buffer
	w, err := debuglog.NewWriter(&buf)
	require.NoError(t, err)

	send := func(string) {}
	s := newSession(send, synchronousPost, "/tmp/graph", 80, w, nil)

	s.FeedStderr([]byte("ErrorException"))

	records, err := debuglog.ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, debuglog.StreamStderr, records[0].Stream)
}
