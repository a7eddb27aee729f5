package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"restaurant-concierge/internal/domain"

	"github.com/google/uuid"
	pgDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepository connects to POSTGRES_TEST_DSN; the tests are skipped when it is unset
func newTestRepository(t *testing.T) (*BookingRepository, *gorm.DB) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := gorm.Open(pgDriver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewBookingRepository(db), db
}

func testBooking() *domain.Booking {
	slots := domain.SlotState{
		CustomerName:      "Mani",
		NumberOfGuests:    4,
		BookingTime:       "7:30 PM",
		SeatingPreference: "indoor",
		SpecialRequests:   "birthday cake",
	}
	weather := domain.WithRecommendation(&domain.WeatherObservation{Condition: "Rain", Temperature: 24, Description: "light rain"})
	return domain.NewConfirmedBooking(uuid.New(), slots, time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), weather)
}

func TestSaveBooking(t *testing.T) {
	repo, db := newTestRepository(t)
	booking := testBooking()
	t.Cleanup(func() { db.Delete(&domain.Booking{}, "id = ?", booking.ID) })

	saved, err := repo.SaveBooking(context.Background(), booking)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if saved.ID != booking.ID {
		t.Errorf("expected id %s, got %s", booking.ID, saved.ID)
	}
	if saved.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected status confirmed, got %s", saved.Status)
	}
	if saved.BookingDate.Format(domain.OnlyDate) != "2025-12-05" {
		t.Errorf("expected booking date 2025-12-05, got %s", saved.BookingDate.Format(domain.OnlyDate))
	}
	if saved.WeatherInfo == nil || saved.WeatherInfo.Recommendation == nil || saved.WeatherInfo.Recommendation.Seating != domain.SeatingIndoor {
		t.Errorf("expected weather stored as json, got %+v", saved.WeatherInfo)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSaveBookingWithoutWeather(t *testing.T) {
	repo, db := newTestRepository(t)
	booking := testBooking()
	booking.WeatherInfo = nil
	t.Cleanup(func() { db.Delete(&domain.Booking{}, "id = ?", booking.ID) })

	saved, err := repo.SaveBooking(context.Background(), booking)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved.WeatherInfo != nil {
		t.Errorf("expected null weather, got %+v", saved.WeatherInfo)
	}
}

func TestSaveBookingDuplicateID(t *testing.T) {
	repo, db := newTestRepository(t)
	booking := testBooking()
	t.Cleanup(func() { db.Delete(&domain.Booking{}, "id = ?", booking.ID) })

	if _, err := repo.SaveBooking(context.Background(), booking); err != nil {
		t.Fatalf("expected first save to succeed, got %v", err)
	}
	duplicate := *booking
	if _, err := repo.SaveBooking(context.Background(), &duplicate); err == nil {
		t.Error("expected an error for a duplicate booking id")
	}
}
