package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"charger-alert-service/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// TopicMembership is the push-service topic management API.
type TopicMembership interface {
	Subscribe(ctx context.Context, token, topic string) error
	Unsubscribe(ctx context.Context, token, topic string) error
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	GetByUserID(ctx context.Context, userID string) (*model.PushSubscription, error)
}

type SubscriptionService struct {
	store  SubscriptionStore
	topics TopicMembership
	topic  string
	log    zerolog.Logger
}

func NewSubscriptionService(store SubscriptionStore, topics TopicMembership, topic string, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		store:  store,
		topics: topics,
		topic:  topic,
		log:    log,
	}
}

type ToggleInput struct {
	Token  string
	Action string
}

type ToggleResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

// Toggle joins or leaves the broadcast topic for the authenticated user and
// upserts the subscription record keyed by user ID.
func (s *SubscriptionService) Toggle(ctx context.Context, principal model.Principal, input ToggleInput) (*ToggleResult, error) {
	if input.Token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if input.Action != ActionSubscribe && input.Action != ActionUnsubscribe {
		return nil, fmt.Errorf("%w: action must be %q or %q", ErrInvalidInput, ActionSubscribe, ActionUnsubscribe)
	}

	subscribe := input.Action == ActionSubscribe
	if subscribe {
		if err := s.topics.Subscribe(ctx, input.Token, s.topic); err != nil {
			return nil, fmt.Errorf("failed to subscribe to topic: %w", err)
		}
	} else {
		if err := s.topics.Unsubscribe(ctx, input.Token, s.topic); err != nil {
			return nil, fmt.Errorf("failed to unsubscribe from topic: %w", err)
		}
	}

	sub := &model.PushSubscription{
		UserID: principal.UserID,
		Topic:  s.topic,
		Token:  input.Token,
		Active: subscribe,
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", principal.UserID).
		Str("action", input.Action).
		Str("topic", s.topic).
		Msg("subscription updated")

	message := "subscribed to topic"
	if !subscribe {
		message = "unsubscribed from topic"
	}
	return &ToggleResult{
		Status:  "ok",
		Message: message,
		Topic:   s.topic,
	}, nil
}
