package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"charger-alert-service/internal/client"
)

const DeliveryMethodTopicPush = "topic_push"

// Sender is the slice of the push client the dispatcher needs.
type Sender interface {
	Send(ctx context.Context, msg *client.Message) error
}

type DispatchInput struct {
	Plate      string
	OwnerID    string
	ChargerID  string
	Location   string
	Confidence float64
}

// DispatchResult contains a send failure as a value so the audit write can
// still happen; dispatch is best-effort, audit is mandatory.
type DispatchResult struct {
	Delivered    bool
	ErrorMessage string
}

// Dispatcher composes and sends charger alerts on the shared broadcast
// topic. The data payload's ownerId field is how receiving clients decide
// whether the alert is for them.
type Dispatcher struct {
	sender Sender
	topic  string
	log    zerolog.Logger
}

func NewDispatcher(sender Sender, topic string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		topic:  topic,
		log:    log,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) DispatchResult {
	msg := d.BuildMessage(in)

	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Error().
			Err(err).
			Str("plate", in.Plate).
			Str("owner_id", in.OwnerID).
			Str("topic", d.topic).
			Msg("failed to send charger alert")
		return DispatchResult{Delivered: false, ErrorMessage: err.Error()}
	}

	d.log.Info().
		Str("plate", in.Plate).
		Str("owner_id", in.OwnerID).
		Str("topic", d.topic).
		Msg("charger alert sent")
	return DispatchResult{Delivered: true}
}

func (d *Dispatcher) BuildMessage(in DispatchInput) *client.Message {
	return &client.Message{
		Topic: d.topic,
		Notification: client.Notification{
			Title: "Vehicle at your charger",
			Body:  fmt.Sprintf("Plate %s was reported at charger %s (%s)", in.Plate, in.ChargerID, in.Location),
		},
		Data: map[string]string{
			"type":         "charger_alert",
			"plate":        in.Plate,
			"ownerId":      in.OwnerID,
			"chargerId":    in.ChargerID,
			"location":     in.Location,
			"confidence":   strconv.FormatFloat(in.Confidence, 'f', -1, 64),
			"click_action": "OPEN_CHARGER_ALERT",
		},
		Android: client.AndroidHints{
			Priority:  "high",
			ChannelID: "charger_alerts",
			Sound:     "default",
		},
		APNS: client.APNSHints{
			Badge: 1,
			Sound: "default",
		},
	}
}
