package application

import (
	"context"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/input"
	"restaurant-concierge/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure ConversationService implements input.ConversationService
var _ input.ConversationService = (*ConversationService)(nil)

// ConversationService struct - Application service implementing the booking conversation use cases
type ConversationService struct {
	engine    *DialogueEngine
	finalizer *BookingFinalizer
	weather   *WeatherService
	lm        output.LanguageModel
}

// NewConversationService func - Creates new conversation service
func NewConversationService(lm output.LanguageModel, weather *WeatherService, repo output.BookingRepository, opts ...EngineOption) *ConversationService {
	return &ConversationService{
		engine:    NewDialogueEngine(lm, weather, opts...),
		finalizer: NewBookingFinalizer(repo, weather, lm, opts...),
		weather:   weather,
		lm:        lm,
	}
}

// Greet func - Use case: opening message, mentioning current weather when known
func (s *ConversationService) Greet(ctx context.Context, session *domain.Session, weather *domain.WeatherObservation) domain.Reply {
	if weather == nil && s.weather != nil {
		weather = s.weather.CurrentOrNil(ctx)
	}
	return s.engine.Greet(ctx, session, weather)
}

// HandleUserMessage func - Use case: one dialogue turn
func (s *ConversationService) HandleUserMessage(ctx context.Context, session *domain.Session, message string, clientState *domain.SlotState, weather *domain.WeatherObservation) domain.TurnResult {
	if clientState != nil {
		log := logrus.WithField("session_id", session.ID)
		patch := clientState.AsPatch()
		if patch.BookingDate != "" && !session.Slots.IsSet(domain.SlotBookingDate) {
			if _, err := domain.ResolveDate(patch.BookingDate, s.engine.now()); err != nil {
				log.Infof("Ignoring client booking date: %v", err)
				patch.BookingDate = ""
			}
		}
		if restored := session.Slots.Merge(patch); len(restored) > 0 {
			log.Infof("Restored slots from client state: %v", restored)
		}
		if weather == nil {
			weather = clientState.WeatherInfo
		}
	}
	// Client weather belongs to the booking date, so it only counts once a date is known
	if weather != nil && session.Slots.IsSet(domain.SlotBookingDate) {
		restored := *weather
		session.Slots.AttachWeather(domain.WithRecommendation(&restored))
	}
	return s.engine.ProcessTurn(ctx, session, message)
}

// FinalizeBooking func - Use case: commit the booking
func (s *ConversationService) FinalizeBooking(ctx context.Context, session *domain.Session, bookingData domain.SlotState) (*domain.Booking, error) {
	return s.finalizer.Finalize(ctx, session, bookingData)
}

// StartOver func - Use case: drop the booking under construction and greet again
func (s *ConversationService) StartOver(ctx context.Context, session *domain.Session) domain.Reply {
	session.Reset()
	if err := s.lm.ClearContext(ctx, session.ID); err != nil {
		logrus.WithField("session_id", session.ID).Warnf("Failed to clear language model context: %v", err)
	}
	return s.Greet(ctx, session, nil)
}

// EndSession func - Use case: connection gone, forget the language model context
func (s *ConversationService) EndSession(ctx context.Context, session *domain.Session) {
	if err := s.lm.ClearContext(ctx, session.ID); err != nil {
		logrus.WithField("session_id", session.ID).Warnf("Failed to clear language model context: %v", err)
	}
}
