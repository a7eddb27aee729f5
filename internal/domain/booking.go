package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BookingStatus type
type BookingStatus string

const (
	// BookingStatusConfirmed const
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusCancelled const
	BookingStatusCancelled BookingStatus = "cancelled"
	// BookingStatusCompleted const
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking struct - Persisted reservation record
type Booking struct {
	ID                uuid.UUID           `json:"bookingId" gorm:"type:uuid;primary_key;" validate:"required"`
	CustomerName      string              `json:"customerName" gorm:"type:varchar(100);not null;" validate:"required,max=100"`
	NumberOfGuests    int                 `json:"numberOfGuests" gorm:"not null;" validate:"gte=1,lte=50"`
	BookingDate       time.Time           `json:"bookingDate" gorm:"type:date;not null;index" validate:"required"`
	BookingTime       string              `json:"bookingTime" gorm:"type:varchar(50);not null;" validate:"required,max=50"`
	CuisinePreference string              `json:"cuisinePreference,omitempty" gorm:"type:varchar(100)" validate:"max=100"`
	SeatingPreference string              `json:"seatingPreference" gorm:"type:varchar(50);not null;" validate:"required,max=50"`
	SpecialRequests   string              `json:"specialRequests,omitempty" gorm:"type:text" validate:"max=1000"`
	WeatherInfo       *WeatherObservation `json:"weatherInfo" gorm:"type:jsonb;serializer:json"`
	Status            BookingStatus       `json:"status" gorm:"type:varchar(20);not null;index" validate:"required,oneof=confirmed cancelled completed"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// TableName func
func (b *Booking) TableName() string {
	return "bookings"
}

// BeforeCreate hook - generates UUID before creating if the caller did not
func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID != uuid.Nil {
		return nil
	}
	logrus.Debug("BeforeCreate: generating booking id")
	id, err := uuid.NewRandom() // v4
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// NewConfirmedBooking builds a booking record from a complete slot state and its resolved date
func NewConfirmedBooking(id uuid.UUID, slots SlotState, date time.Time, weather *WeatherObservation) *Booking {
	return &Booking{
		ID:                id,
		CustomerName:      slots.CustomerName,
		NumberOfGuests:    int(slots.NumberOfGuests),
		BookingDate:       StartOfDay(date),
		BookingTime:       slots.BookingTime,
		CuisinePreference: slots.CuisinePreference,
		SeatingPreference: slots.SeatingPreference,
		SpecialRequests:   slots.SpecialRequests,
		WeatherInfo:       weather,
		Status:            BookingStatusConfirmed,
	}
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) {
	if db == nil {
		panic("An error when connect database")
	}

	err := db.AutoMigrate(&Booking{})
	if err != nil {
		panic(err)
	}
}
