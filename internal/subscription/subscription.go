// Package subscription keeps the quota plan cache in sync with the
// subscribers table through Supabase Realtime change events.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tokenhealth/internal/client"
	"tokenhealth/internal/quota"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const subscribersTable = "subscribers"

type Subscription struct {
	client *client.Client
	log    *logrus.Entry
}

// PostgresChange represents a single database change subscription configuration
type PostgresChange struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// SubscriptionPayload is the message sent to establish a real-time connection
type SubscriptionPayload struct {
	Event   string `json:"event"`
	Topic   string `json:"topic"`
	Payload struct {
		Config struct {
			Broadcast struct {
				Self bool `json:"self"`
			} `json:"broadcast"`
			PostgresChanges []PostgresChange `json:"postgres_changes"`
		} `json:"config"`
	} `json:"payload"`
	Ref string `json:"ref"`
}

// SubscriberRecord mirrors a row of the subscribers table in a change event.
type SubscriberRecord struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
}

// PostgresChanges represents a database change event received from Supabase
type PostgresChanges struct {
	Event   string `json:"event"`
	Payload struct {
		Data struct {
			Table     string           `json:"table"`
			Type      string           `json:"type"`
			Record    SubscriberRecord `json:"record"`
			OldRecord SubscriberRecord `json:"old_record"`
		} `json:"data"`
	} `json:"payload"`
}

// New creates a new Subscription instance
func New(client *client.Client) *Subscription {
	return &Subscription{
		client: client,
		log:    logrus.WithField("component", "subscription"),
	}
}

// Subscribe seeds the plan cache from the database, then listens for
// subscriber changes and applies them to the quota service.
func (s *Subscription) Subscribe(ctx context.Context, quotas *quota.Service) error {
	// Seed from the table first so events only have to keep us current.
	// A failed seed is not fatal: events still apply and missing users
	// default to the free plan.
	if err := quotas.Load(ctx); err != nil {
		s.log.WithError(err).Warn("initial subscriber load failed")
	}

	go s.listen(quotas)

	payload := SubscriptionPayload{
		Event: "phx_join",
		Topic: fmt.Sprintf("realtime:public:%s", subscribersTable),
		Ref:   uuid.New().String(),
	}
	payload.Payload.Config.Broadcast.Self = true
	payload.Payload.Config.PostgresChanges = []PostgresChange{
		{
			Event:  "*", // Listen to all events (INSERT, UPDATE, DELETE)
			Schema: "public",
			Table:  subscribersTable,
		},
	}

	if err := s.client.Conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	s.log.Info("subscribed to subscriber plan changes")
	return nil
}

// Stop closes the subscription connection
func (s *Subscription) Stop() {
	if err := s.client.Close(); err != nil {
		s.log.WithError(err).Warn("failed to close realtime connection")
	}
}

// listen is the read loop; it exits when the connection closes.
func (s *Subscription) listen(quotas *quota.Service) {
	for {
		_, message, err := s.client.Conn.ReadMessage()
		if err != nil {
			s.log.WithError(err).Warn("realtime read loop stopped")
			return
		}

		changes, err := parseChanges(message)
		if err != nil {
			s.log.WithError(err).Warn("failed to parse realtime message")
			continue
		}
		if changes.Event != "postgres_changes" {
			continue
		}
		if changes.Payload.Data.Table != subscribersTable {
			s.log.WithField("table", changes.Payload.Data.Table).Debug("unhandled table change")
			continue
		}
		s.apply(changes, quotas)
	}
}

func (s *Subscription) apply(changes *PostgresChanges, quotas *quota.Service) {
	data := changes.Payload.Data
	switch strings.ToUpper(data.Type) {
	case "INSERT", "UPDATE":
		if data.Record.UserID == "" {
			return
		}
		quotas.SetPlan(data.Record.UserID, data.Record.Plan)
		s.log.WithFields(logrus.Fields{
			"user": data.Record.UserID,
			"plan": data.Record.Plan,
		}).Info("subscriber plan updated")
	case "DELETE":
		userID := data.OldRecord.UserID
		if userID == "" {
			userID = data.Record.UserID
		}
		if userID == "" {
			return
		}
		quotas.RemovePlan(userID)
		s.log.WithField("user", userID).Info("subscriber plan removed")
	}
}

// parseChanges creates a PostgresChanges instance from a raw message
func parseChanges(message []byte) (*PostgresChanges, error) {
	var changes PostgresChanges
	if err := json.Unmarshal(message, &changes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &changes, nil
}
