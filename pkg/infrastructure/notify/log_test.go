package notify

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()

	require.NoError(t, NewLogSender(logger).Send("alice@example.com", "Welcome", "Hi alice"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Hi alice", entry.Message)
	assert.Equal(t, "alice@example.com", entry.Data["recipient"])
	assert.Equal(t, "Welcome", entry.Data["subject"])
}
