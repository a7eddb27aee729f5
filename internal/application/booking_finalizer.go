package application

import (
	"context"
	"fmt"
	"time"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"
	"restaurant-concierge/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BookingFinalizer struct - turns a complete slot state into a persisted booking
type BookingFinalizer struct {
	repo      output.BookingRepository
	weather   *WeatherService
	lm        output.LanguageModel
	validator validator.Validator
	now       func() time.Time
}

// NewBookingFinalizer func
func NewBookingFinalizer(repo output.BookingRepository, weather *WeatherService, lm output.LanguageModel, opts ...EngineOption) *BookingFinalizer {
	o := applyOptions(opts)
	return &BookingFinalizer{
		repo:      repo,
		weather:   weather,
		lm:        lm,
		validator: validator.New(),
		now:       o.now,
	}
}

// Finalize commits a booking built from the session slots, completed by bookingData
// for any slot the session is missing. The session is only touched on success, when
// its slots are reset and the language model context is cleared.
func (f *BookingFinalizer) Finalize(ctx context.Context, session *domain.Session, bookingData domain.SlotState) (*domain.Booking, error) {
	log := logrus.WithField("session_id", session.ID)

	slots := session.Slots
	slots.Merge(bookingData.AsPatch())
	if slots.WeatherInfo == nil && bookingData.WeatherInfo != nil {
		slots.WeatherInfo = bookingData.WeatherInfo
	}

	if missing := slots.MissingRequired(); len(missing) > 0 {
		return nil, &domain.FinalizationError{Reason: domain.FinalizationIncomplete, Missing: missing}
	}

	date, err := domain.ResolveDate(slots.BookingDate, f.now())
	if err != nil {
		log.Warnf("Booking date not resolvable: %v", err)
		return nil, &domain.FinalizationError{Reason: domain.FinalizationUnresolvedDate, Err: err}
	}

	weather := slots.WeatherInfo
	if weather == nil && f.weather != nil {
		weather, err = f.weather.ObservationFor(ctx, date)
		if err != nil {
			log.Warnf("Weather unavailable for booking, storing without it: %v", err)
			weather = nil
		}
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, &domain.FinalizationError{Reason: domain.FinalizationPersistence, Err: err}
	}
	booking := domain.NewConfirmedBooking(id, slots, date, weather)
	if err := f.validator.ValidateStruct(booking); err != nil {
		log.Warnf("Booking failed validation: %v", err)
		return nil, &domain.FinalizationError{Reason: domain.FinalizationPersistence, Err: err}
	}

	if session.Closed() {
		log.Info("Session closed before commit, booking discarded")
		return nil, &domain.FinalizationError{Reason: domain.FinalizationAborted, Err: fmt.Errorf("session %s closed", session.ID)}
	}

	saved, err := f.repo.SaveBooking(ctx, booking)
	if err != nil {
		log.Errorf("Booking could not be saved: %v", err)
		return nil, &domain.FinalizationError{Reason: domain.FinalizationPersistence, Err: err}
	}

	session.Reset()
	if err := f.lm.ClearContext(ctx, session.ID); err != nil {
		log.Warnf("Failed to clear language model context: %v", err)
	}

	log.Infof("Booking %s confirmed", saved.ID)
	return saved, nil
}
