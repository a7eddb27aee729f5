package application

import (
	"context"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// DialogueEngine struct - runs one slot-filling turn against a session it does not own
type DialogueEngine struct {
	lm      output.LanguageModel
	weather *WeatherService
	now     func() time.Time
}

// EngineOption configures a DialogueEngine or BookingFinalizer
type EngineOption func(*engineOptions)

type engineOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for date resolution in tests
func WithClock(now func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.now = now
	}
}

func applyOptions(opts []EngineOption) engineOptions {
	o := engineOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewDialogueEngine func
func NewDialogueEngine(lm output.LanguageModel, weather *WeatherService, opts ...EngineOption) *DialogueEngine {
	o := applyOptions(opts)
	return &DialogueEngine{
		lm:      lm,
		weather: weather,
		now:     o.now,
	}
}

// ProcessTurn extracts slot values from the utterance, merges them first-write-wins,
// attaches weather once the date is known and asks the language model for the reply.
// It never fails: model outages degrade to an empty extraction or the fallback reply.
func (e *DialogueEngine) ProcessTurn(ctx context.Context, session *domain.Session, utterance string) domain.TurnResult {
	log := logrus.WithField("session_id", session.ID)
	today := e.now()

	patch, err := e.lm.Extract(ctx, domain.ExtractionRequest{
		SessionID: session.ID,
		Utterance: utterance,
		Existing:  session.Slots,
		Today:     today,
	})
	if err != nil {
		log.Warnf("Extraction failed, continuing without new fields: %v", err)
		patch = domain.SlotPatch{}
	}

	dateUnresolved := false
	if patch.BookingDate != "" && !session.Slots.IsSet(domain.SlotBookingDate) {
		if _, err := domain.ResolveDate(patch.BookingDate, today); err != nil {
			log.Infof("Extracted date not understood, asking to restate: %v", err)
			patch.BookingDate = ""
			dateUnresolved = true
		}
	}

	filled := session.Slots.Merge(patch)
	if len(filled) > 0 {
		log.Debugf("Filled slots: %v", filled)
	}
	e.ensureWeather(ctx, session, today)

	next := domain.NextStep(session.Slots)
	reply, err := e.lm.Generate(ctx, domain.GenerationRequest{
		SessionID:     session.ID,
		SystemContext: domain.BuildSystemContext(session.Slots, next, dateUnresolved),
		History:       session.History(),
		Utterance:     utterance,
	})
	if err != nil {
		log.Warnf("Generation failed, sending fallback reply: %v", err)
		reply = domain.FallbackReply
	}

	at := e.now()
	session.AddTurn(domain.TurnRoleUser, utterance, at)
	session.AddTurn(domain.TurnRoleAgent, reply, at)

	return domain.TurnResult{
		Reply:          reply,
		Slots:          session.Slots,
		NextStep:       next,
		IsComplete:     session.Slots.IsComplete(),
		Filled:         filled,
		DateUnresolved: dateUnresolved,
	}
}

// Greet asks the language model for the opening utterance and records it as an agent turn
func (e *DialogueEngine) Greet(ctx context.Context, session *domain.Session, weather *domain.WeatherObservation) domain.Reply {
	text, err := e.lm.Generate(ctx, domain.GenerationRequest{
		SessionID:     session.ID,
		SystemContext: domain.BuildGreetingContext(weather),
		History:       session.History(),
	})
	if err != nil {
		logrus.WithField("session_id", session.ID).Warnf("Greeting generation failed, sending fallback: %v", err)
		text = domain.FallbackGreeting
	}

	session.AddTurn(domain.TurnRoleAgent, text, e.now())
	return domain.Reply{
		Text:     text,
		Slots:    session.Slots,
		NextStep: domain.NextStep(session.Slots),
	}
}

// ensureWeather attaches an observation once a resolvable booking date is known.
// An observation already present is never replaced.
func (e *DialogueEngine) ensureWeather(ctx context.Context, session *domain.Session, today time.Time) {
	if session.Slots.WeatherInfo != nil || !session.Slots.IsSet(domain.SlotBookingDate) || e.weather == nil {
		return
	}
	date, err := domain.ResolveDate(session.Slots.BookingDate, today)
	if err != nil {
		return
	}
	session.Slots.AttachWeather(e.weather.ObservationOrDefault(ctx, date))
}
