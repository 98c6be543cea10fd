package chathub

import (
	"context"
	"encoding/json"
	"sync"

	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"

	"github.com/rs/zerolog"
)

// Relay orchestrates one admitted session: it joins the registry, opens a
// backbone subscription, and runs the two session duties until either ends.
// The inbound duty validates, persists and publishes client frames; the
// outbound duty rebroadcasts backbone traffic to every session in the room.
type Relay struct {
	registry *Registry
	backbone Backbone
	store    storage.Storage
	log      zerolog.Logger
}

// NewRelay wires a relay over its collaborators.
func NewRelay(registry *Registry, backbone Backbone, store storage.Storage, log zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		backbone: backbone,
		store:    store,
		log:      log.With().Str("component", "relay").Logger(),
	}
}

// ServePrivate runs the session lifecycle for a private conversation and
// blocks until the session is torn down. Each frame becomes a persisted
// PrivateMessage before its payload is published; a message is never on the
// backbone without being retrievable from history.
func (r *Relay) ServePrivate(ctx context.Context, sess Session, adm *Admission) {
	persist := func(content string) ([]byte, error) {
		msg := &models.PrivateMessage{
			SenderID:         adm.User.ID,
			SenderUsername:   adm.User.Username,
			ReceiverID:       adm.Friend.ID,
			ReceiverUsername: adm.Friend.Username,
			Content:          content,
		}
		if err := r.store.SaveMessage(msg); err != nil {
			return nil, err
		}
		return json.Marshal(models.NewPrivateMessageFrame(msg))
	}
	r.run(ctx, sess, adm.RoomKey, "Connected to private chat with "+adm.Friend.Username, persist)
}

// ServeGlobal runs the session lifecycle for the global broadcast room.
func (r *Relay) ServeGlobal(ctx context.Context, sess Session, user *models.User) {
	persist := func(content string) ([]byte, error) {
		msg := &models.ChatMessage{
			SenderID:       user.ID,
			SenderUsername: user.Username,
			Room:           GlobalRoom,
			Content:        content,
		}
		if err := r.store.SaveGlobalMessage(msg); err != nil {
			return nil, err
		}
		return json.Marshal(models.NewGlobalMessageFrame(msg))
	}
	r.run(ctx, sess, GlobalRoom, "Connected to global chat", persist)
}

// run joins, subscribes, greets, then drives the two duties. Teardown runs
// exactly once no matter which duty ends first or whether both fail at the
// same time.
func (r *Relay) run(ctx context.Context, sess Session, roomKey, welcome string, persist func(string) ([]byte, error)) {
	log := r.log.With().Str("room", roomKey).Str("user", sess.UserID()).Logger()
	topic := Topic(roomKey)

	n := r.registry.Join(roomKey, sess)
	log.Info().Int("members", n).Msg("session joined room")

	sub, err := r.backbone.Subscribe(ctx, topic)
	if err != nil {
		log.Error().Err(err).Msg("backbone subscribe failed")
		r.registry.Leave(roomKey, sess)
		sess.Close()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			_ = sub.Close()
			r.registry.Leave(roomKey, sess)
			sess.Close()
			log.Info().Msg("session closed")
		})
	}
	defer teardown()

	// Tear down as soon as either duty cancels the context, so the other
	// duty's blocking wait (transport read or subscription receive) is
	// released instead of leaking.
	go func() {
		<-ctx.Done()
		teardown()
	}()

	if payload, err := json.Marshal(models.NewSystemFrame(welcome)); err == nil {
		_ = sess.Send(payload)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		r.inbound(ctx, sess, topic, persist, log)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		r.outbound(ctx, sub, roomKey)
	}()
	wg.Wait()
}

// inbound drains client frames. Validation and persistence failures are
// local to the offending frame: the sender gets an error frame and the
// session stays up. A malformed frame or a backbone publish failure ends
// the session.
func (r *Relay) inbound(ctx context.Context, sess Session, topic string, persist func(string) ([]byte, error), log zerolog.Logger) {
	for {
		data, err := sess.ReadFrame()
		if err != nil {
			log.Debug().Err(err).Msg("transport read ended")
			return
		}

		frame, err := models.DecodeInbound(data)
		if err != nil {
			log.Warn().Err(err).Msg("malformed client frame")
			return
		}

		if err := models.ValidateContent(frame.Content); err != nil {
			r.sendError(sess, err.Error())
			continue
		}

		payload, err := persist(frame.Content)
		if err != nil {
			log.Error().Err(err).Msg("message persist failed, frame dropped")
			r.sendError(sess, "message could not be delivered")
			continue
		}

		if err := r.backbone.Publish(ctx, topic, payload); err != nil {
			log.Error().Err(err).Msg("backbone publish failed")
			return
		}
	}
}

// outbound relays backbone traffic into the room, the sender's own echo
// included; clients reconcile their own messages by sender_id.
func (r *Relay) outbound(ctx context.Context, sub Subscription, roomKey string) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub.Messages():
			if !ok {
				return
			}
			r.registry.Broadcast(roomKey, payload)
		}
	}
}

func (r *Relay) sendError(sess Session, msg string) {
	if payload, err := json.Marshal(models.NewErrorFrame(msg)); err == nil {
		_ = sess.Send(payload)
	}
}
