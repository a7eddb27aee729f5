package postgres

import (
	"context"
	"fmt"

	"restaurant-concierge/internal/domain"
	"restaurant-concierge/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Compile-time check to ensure BookingRepository implements output.BookingRepository
var _ output.BookingRepository = (*BookingRepository)(nil)

// BookingRepository struct - Secondary/Driven adapter for PostgreSQL
type BookingRepository struct {
	dbGorm *gorm.DB
}

// NewBookingRepository func - Creates new PostgreSQL repository and migrates the bookings table
func NewBookingRepository(dbGorm *gorm.DB) *BookingRepository {
	logrus.Info("Migrate database ...")
	domain.MigrateDatabase(dbGorm)
	return &BookingRepository{
		dbGorm: dbGorm,
	}
}

// SaveBooking func - Inserts a booking and reads back the stored row
func (p *BookingRepository) SaveBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	var stored domain.Booking
	err := p.dbGorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", booking.ID).First(&stored).Error
	})
	if err != nil {
		logrus.Errorln(err)
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	logrus.Infof("Booking %s saved for %s on %s", stored.ID, stored.CustomerName, stored.BookingDate.Format(domain.OnlyDate))
	return &stored, nil
}
