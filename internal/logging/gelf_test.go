package logging

import (
	"log/slog"
	"testing"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGelfHandler_ShipsRecords(t *testing.T) {
	reader, err := gelf.NewReader("127.0.0.1:0")
	require.NoError(t, err)

	h, w, err := NewGelfHandler(reader.Addr(), "info", "arena-sim")
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	assert.Equal(t, "arena-sim", w.Facility)

	slog.New(h).Info("match ended", "score", 250)

	msg, err := reader.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, msg.Short, `"msg":"match ended"`)
	assert.Contains(t, msg.Short, `"score":250`)
}

func TestNewGelfHandler_BadAddress(t *testing.T) {
	_, _, err := NewGelfHandler("not an address", "info", "")
	assert.Error(t, err)
}
