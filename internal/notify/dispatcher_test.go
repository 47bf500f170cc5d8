package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charger-alert-service/internal/client"
)

type fakeSender struct {
	err   error
	calls int
	last  *client.Message
}

func (f *fakeSender) Send(ctx context.Context, msg *client.Message) error {
	f.calls++
	f.last = msg
	return f.err
}

func sampleInput() DispatchInput {
	return DispatchInput{
		Plate:      "AB12CDE",
		OwnerID:    "U1",
		ChargerID:  "C1",
		Location:   "Main St",
		Confidence: 0.91,
	}
}

func TestBuildMessage(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, "charger_alerts", zerolog.Nop())
	msg := d.BuildMessage(sampleInput())

	assert.Equal(t, "charger_alerts", msg.Topic)
	assert.Equal(t, "Vehicle at your charger", msg.Notification.Title)
	assert.Contains(t, msg.Notification.Body, "AB12CDE")
	assert.Contains(t, msg.Notification.Body, "C1")

	assert.Equal(t, "charger_alert", msg.Data["type"])
	assert.Equal(t, "AB12CDE", msg.Data["plate"])
	assert.Equal(t, "U1", msg.Data["ownerId"])
	assert.Equal(t, "C1", msg.Data["chargerId"])
	assert.Equal(t, "Main St", msg.Data["location"])
	assert.Equal(t, "0.91", msg.Data["confidence"])
	assert.NotEmpty(t, msg.Data["click_action"])

	assert.Equal(t, "high", msg.Android.Priority)
	assert.Equal(t, "charger_alerts", msg.Android.ChannelID)
	assert.Equal(t, "default", msg.Android.Sound)
	assert.Equal(t, 1, msg.APNS.Badge)
	assert.Equal(t, "default", msg.APNS.Sound)
}

func TestDispatchSuccess(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "charger_alerts", zerolog.Nop())

	result := d.Dispatch(context.Background(), sampleInput())
	assert.True(t, result.Delivered)
	assert.Empty(t, result.ErrorMessage)
	require.Equal(t, 1, sender.calls)
	assert.Equal(t, "U1", sender.last.Data["ownerId"])
}

func TestDispatchFailureIsContained(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	d := NewDispatcher(sender, "charger_alerts", zerolog.Nop())

	result := d.Dispatch(context.Background(), sampleInput())
	assert.False(t, result.Delivered)
	assert.Contains(t, result.ErrorMessage, "connection refused")
}
