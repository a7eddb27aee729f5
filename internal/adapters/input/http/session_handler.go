package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/input"
	"restaurant-concierge/internal/ports/output"
	"restaurant-concierge/pkg/validator"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const writeWait = 10 * time.Second

// SessionConfig struct - per-connection limits. Zero values take defaults.
type SessionConfig struct {
	PingInterval    time.Duration
	PongTimeout     time.Duration
	MaxMessageBytes int64
	RateLimit       float64
	RateBurst       int
	InboundBuffer   int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.PongTimeout <= c.PingInterval {
		c.PongTimeout = c.PingInterval * 2
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 16 * 1024
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 2
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 5
	}
	if c.InboundBuffer <= 0 {
		c.InboundBuffer = 8
	}
	return c
}

// SessionHandler struct - Primary/Driving adapter serving one booking session per websocket connection
type SessionHandler struct {
	srv       input.ConversationService
	store     output.SessionStore
	validator validator.Validator
	cfg       SessionConfig
}

// NewSessionHandler func - Creates new websocket session handler
func NewSessionHandler(srv input.ConversationService, store output.SessionStore, cfg SessionConfig) *SessionHandler {
	return &SessionHandler{
		srv:       srv,
		store:     store,
		validator: validator.New(),
		cfg:       cfg.withDefaults(),
	}
}

// Upgrade func - only lets websocket handshakes through to the session route
func (h *SessionHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler func - fiber handler that serves the websocket session
func (h *SessionHandler) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

// serve owns the session for the lifetime of the connection. Only this goroutine
// mutates the session or writes data frames; the reader goroutine just queues
// frames and the heartbeat only sends control frames.
func (h *SessionHandler) serve(conn *websocket.Conn) {
	session, err := h.store.CreateSession(time.Now())
	if err != nil {
		logrus.Errorf("Failed to create session: %v", err)
		_ = h.write(conn, errorMessage("Unable to start a session, please reconnect."))
		return
	}
	log := logrus.WithField("session_id", session.ID)
	log.Infof("Connection opened from %s", conn.RemoteAddr())

	var wg sync.WaitGroup
	done := make(chan struct{})
	defer func() {
		close(done)
		// unblocks the reader; both helpers must exit before the conn is released
		_ = conn.Close()
		wg.Wait()
		h.srv.EndSession(context.Background(), session)
		if err := h.store.DeleteSession(session.ID); err != nil {
			log.Warnf("Failed to delete session: %v", err)
		}
		log.WithFields(logrus.Fields{
			"connected_for": time.Since(session.ConnectedAt).Round(time.Second).String(),
			"idle_for":      time.Since(session.LastActivity).Round(time.Second).String(),
		}).Info("Connection closed, session discarded")
	}()

	conn.SetReadLimit(h.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	inbound := make(chan []byte, h.cfg.InboundBuffer)
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.readLoop(conn, session, inbound, done)
	}()
	go func() {
		defer wg.Done()
		h.heartbeat(conn, session, done)
	}()

	if err := h.write(conn, OutboundMessage{Type: OutboundConnected, SessionID: session.ID}); err != nil {
		return
	}

	limiter := rate.NewLimiter(rate.Limit(h.cfg.RateLimit), h.cfg.RateBurst)
	for raw := range inbound {
		if session.Closed() {
			return
		}
		if !limiter.Allow() {
			log.Warn("Inbound rate limit exceeded, message dropped")
			if err := h.write(conn, errorMessage("Too many messages, please slow down.")); err != nil {
				return
			}
			continue
		}
		if err := h.dispatch(conn, session, raw); err != nil {
			return
		}
	}
}

// readLoop queues inbound frames until the connection fails, then marks the session closed
func (h *SessionHandler) readLoop(conn *websocket.Conn, session *domain.Session, inbound chan<- []byte, done <-chan struct{}) {
	defer close(inbound)
	defer session.MarkClosed()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithField("session_id", session.ID).Infof("Connection lost: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))

		select {
		case inbound <- data:
		case <-done:
			return
		}
	}
}

// heartbeat pings the client; a client that stops answering hits the read deadline
func (h *SessionHandler) heartbeat(conn *websocket.Conn, session *domain.Session, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if session.Closed() {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logrus.WithField("session_id", session.ID).Debugf("Ping failed: %v", err)
				return
			}
		}
	}
}

// dispatch handles one inbound message to completion. A returned error means the
// connection can no longer be written to.
func (h *SessionHandler) dispatch(conn *websocket.Conn, session *domain.Session, raw []byte) error {
	log := logrus.WithField("session_id", session.ID)

	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Warnf("%v: %v", domain.ErrMalformedMessage, err)
		return h.write(conn, errorMessage("Invalid message format."))
	}
	if err := h.validator.ValidateStruct(msg); err != nil {
		log.Warnf("%v: %v", domain.ErrMalformedMessage, err)
		return h.write(conn, OutboundMessage{
			Type:    OutboundError,
			Message: "Invalid message: " + strings.Join(validator.Describe(err), "; "),
		})
	}

	// External calls are not cancelled by a disconnect; their results are dropped instead
	ctx := context.Background()

	switch msg.Type {
	case InboundGreeting:
		reply := h.srv.Greet(ctx, session, msg.WeatherInfo)
		return h.reply(conn, session, OutboundGreeting, reply)

	case InboundNewBooking:
		reply := h.srv.StartOver(ctx, session)
		return h.reply(conn, session, OutboundGreeting, reply)

	case InboundUserMessage:
		text := strings.TrimSpace(msg.Message)
		if text == "" {
			return h.write(conn, errorMessage("Message must not be empty."))
		}
		if err := h.write(conn, OutboundMessage{Type: OutboundProcessing}); err != nil {
			return err
		}
		result := h.srv.HandleUserMessage(ctx, session, text, msg.ConversationState, msg.WeatherInfo)
		if session.Closed() {
			log.Info("Session closed during turn, reply discarded")
			return nil
		}
		outType := OutboundResponse
		if result.IsComplete {
			outType = OutboundBookingReady
		}
		state := result.Slots
		return h.write(conn, OutboundMessage{
			Type:              outType,
			Text:              result.Reply,
			ConversationState: &state,
			NextStep:          result.NextStep,
		})

	case InboundFinalizeBooking:
		if err := h.write(conn, OutboundMessage{Type: OutboundProcessing}); err != nil {
			return err
		}
		var data domain.SlotState
		if msg.BookingData != nil {
			data = *msg.BookingData
		}
		booking, err := h.srv.FinalizeBooking(ctx, session, data)
		if session.Closed() {
			return nil
		}
		if err != nil {
			return h.write(conn, finalizationFailure(err))
		}
		return h.write(conn, OutboundMessage{
			Type:    OutboundBookingConfirmed,
			Text:    confirmationText(booking),
			Booking: booking,
		})
	}

	return h.write(conn, errorMessage("Unknown message type."))
}

func (h *SessionHandler) reply(conn *websocket.Conn, session *domain.Session, outType string, reply domain.Reply) error {
	if session.Closed() {
		return nil
	}
	state := reply.Slots
	return h.write(conn, OutboundMessage{
		Type:              outType,
		Text:              reply.Text,
		ConversationState: &state,
		NextStep:          reply.NextStep,
	})
}

func (h *SessionHandler) write(conn *websocket.Conn, msg OutboundMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		logrus.Debugf("Write of %s message failed: %v", msg.Type, err)
		return err
	}
	return nil
}

func finalizationFailure(err error) OutboundMessage {
	out := OutboundMessage{Type: OutboundError, Message: "We couldn't complete your booking. Please try again."}

	var fe *domain.FinalizationError
	if !errors.As(err, &fe) {
		return out
	}
	out.Reason = string(fe.Reason)

	switch fe.Reason {
	case domain.FinalizationIncomplete:
		out.Missing = fe.Missing
		out.Message = "Some booking details are still missing: " + strings.Join(fe.Missing, ", ") + "."
	case domain.FinalizationUnresolvedDate:
		var ue *domain.UnresolvedDateError
		if errors.As(err, &ue) && ue.Past {
			out.Message = fmt.Sprintf("The date %q has already passed. Which upcoming date would you like?", ue.Input)
			break
		}
		expression := ""
		if ue != nil {
			expression = ue.Input
		}
		out.Message = fmt.Sprintf("I couldn't understand the date %q. Could you give it another way, like \"December 5th\" or \"tomorrow\"?", expression)
	case domain.FinalizationPersistence:
		out.Message = "We couldn't save your booking just now. Your details are kept, please try again."
	}
	return out
}

func confirmationText(b *domain.Booking) string {
	return fmt.Sprintf("Your table for %d is confirmed for %s at %s. Booking reference: %s.",
		b.NumberOfGuests, b.BookingDate.Format(domain.DisplayDate), b.BookingTime, b.ID)
}
