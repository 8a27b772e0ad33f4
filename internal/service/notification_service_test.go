package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/events"
)

func TestNotificationHandleLogsStubs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewNotificationService(zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@staffsync.local",
		WebhookURL: "https://hooks.example/staffsync",
	})

	err := n.Handle(context.Background(), events.Event{Type: events.EventProfileChangeFinalized, MemberID: "m1"})
	require.NoError(t, err)

	messages := []string{}
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{"ProfileChangeFinalized", "sendEmailNotificationStub", "sendWebhookNotificationStub"}, messages)
	assert.Equal(t, "m1", logs.All()[0].ContextMap()["member_id"])
}

func TestNotificationSkipsUnconfiguredChannels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewNotificationService(zap.New(core), config.NotificationConfig{})

	require.NoError(t, n.Handle(context.Background(), events.Event{Type: events.EventProfileChangeSubmitted}))
	assert.Equal(t, 1, logs.Len())
	assert.Contains(t, n.EventTypes(), events.EventTierChanged)
}

func TestNotificationResetCodeNeverLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewNotificationService(zap.New(core), config.NotificationConfig{})

	err := n.Handle(context.Background(), events.Event{
		Type:     events.EventPasswordResetRequested,
		MemberID: "m1",
		Payload: events.PasswordResetRequestedPayload{
			Channel:     "cellphone",
			Destination: "+27821234567",
			Code:        "493021",
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "********4567", fields["destination"])
	for _, v := range fields {
		assert.NotContains(t, v, "493021")
	}
}
