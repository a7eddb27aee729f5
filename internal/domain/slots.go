package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Slot names, in the order the dialogue asks for them.
const (
	SlotCustomerName      = "customerName"
	SlotNumberOfGuests    = "numberOfGuests"
	SlotBookingDate       = "bookingDate"
	SlotBookingTime       = "bookingTime"
	SlotCuisinePreference = "cuisinePreference"
	SlotSeatingPreference = "seatingPreference"
	SlotSpecialRequests   = "specialRequests"
)

// Step is the next thing the dialogue needs from the user
type Step string

const (
	StepAskName    Step = "ask_name"
	StepAskGuests  Step = "ask_guests"
	StepAskDate    Step = "ask_date"
	StepAskTime    Step = "ask_time"
	StepAskCuisine Step = "ask_cuisine"
	StepAskSeating Step = "ask_seating"
	StepConfirm    Step = "confirm"
)

// orderedSlots pairs every asked-for slot with the step that asks for it.
var orderedSlots = []struct {
	name string
	step Step
}{
	{SlotCustomerName, StepAskName},
	{SlotNumberOfGuests, StepAskGuests},
	{SlotBookingDate, StepAskDate},
	{SlotBookingTime, StepAskTime},
	{SlotCuisinePreference, StepAskCuisine},
	{SlotSeatingPreference, StepAskSeating},
}

// requiredSlots gate completion. Cuisine and special requests are optional.
var requiredSlots = []string{
	SlotCustomerName,
	SlotNumberOfGuests,
	SlotBookingDate,
	SlotBookingTime,
	SlotSeatingPreference,
}

// GuestCount accepts both JSON numbers and numeric strings ("4").
// Anything else decodes to zero, which counts as unset.
type GuestCount int

// UnmarshalJSON implements json.Unmarshaler
func (g *GuestCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*g = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f < 0 {
		*g = 0
		return nil
	}
	*g = GuestCount(int(f))
	return nil
}

// SlotState is the booking under construction
type SlotState struct {
	CustomerName      string              `json:"customerName,omitempty"`
	NumberOfGuests    GuestCount          `json:"numberOfGuests,omitempty"`
	BookingDate       string              `json:"bookingDate,omitempty"`
	BookingTime       string              `json:"bookingTime,omitempty"`
	CuisinePreference string              `json:"cuisinePreference,omitempty"`
	SeatingPreference string              `json:"seatingPreference,omitempty"`
	SpecialRequests   string              `json:"specialRequests,omitempty"`
	WeatherInfo       *WeatherObservation `json:"weatherInfo,omitempty"`
}

// SlotPatch is the typed partial field set produced by extraction.
// Zero values mean "not extracted".
type SlotPatch struct {
	CustomerName      string     `json:"customerName,omitempty"`
	NumberOfGuests    GuestCount `json:"numberOfGuests,omitempty"`
	BookingDate       string     `json:"bookingDate,omitempty"`
	BookingTime       string     `json:"bookingTime,omitempty"`
	CuisinePreference string     `json:"cuisinePreference,omitempty"`
	SeatingPreference string     `json:"seatingPreference,omitempty"`
	SpecialRequests   string     `json:"specialRequests,omitempty"`
}

// IsEmpty reports whether the patch carries no value at all
func (p SlotPatch) IsEmpty() bool {
	return p == SlotPatch{}
}

// AsPatch converts a full slot state (for example one echoed back by a client)
// into a patch so it can go through the same merge rule.
func (s SlotState) AsPatch() SlotPatch {
	return SlotPatch{
		CustomerName:      s.CustomerName,
		NumberOfGuests:    s.NumberOfGuests,
		BookingDate:       s.BookingDate,
		BookingTime:       s.BookingTime,
		CuisinePreference: s.CuisinePreference,
		SeatingPreference: s.SeatingPreference,
		SpecialRequests:   s.SpecialRequests,
	}
}

// Merge applies the patch under first-write-wins: only unset slots accept
// new values. It returns the names of the slots that became set.
func (s *SlotState) Merge(p SlotPatch) []string {
	var filled []string
	setString := func(name string, dst *string, v string) {
		v = strings.TrimSpace(v)
		if strings.TrimSpace(*dst) != "" || v == "" {
			return
		}
		*dst = v
		filled = append(filled, name)
	}

	setString(SlotCustomerName, &s.CustomerName, p.CustomerName)
	if s.NumberOfGuests <= 0 && p.NumberOfGuests > 0 {
		s.NumberOfGuests = p.NumberOfGuests
		filled = append(filled, SlotNumberOfGuests)
	}
	setString(SlotBookingDate, &s.BookingDate, p.BookingDate)
	setString(SlotBookingTime, &s.BookingTime, p.BookingTime)
	setString(SlotCuisinePreference, &s.CuisinePreference, p.CuisinePreference)
	setString(SlotSeatingPreference, &s.SeatingPreference, p.SeatingPreference)
	setString(SlotSpecialRequests, &s.SpecialRequests, p.SpecialRequests)

	return filled
}

// AttachWeather sets the weather observation unless one is already present.
// It reports whether the observation was attached.
func (s *SlotState) AttachWeather(w *WeatherObservation) bool {
	if s.WeatherInfo != nil || w == nil {
		return false
	}
	s.WeatherInfo = w
	return true
}

// IsSet reports whether the named slot holds a non-empty value
func (s SlotState) IsSet(name string) bool {
	switch name {
	case SlotCustomerName:
		return strings.TrimSpace(s.CustomerName) != ""
	case SlotNumberOfGuests:
		return s.NumberOfGuests > 0
	case SlotBookingDate:
		return strings.TrimSpace(s.BookingDate) != ""
	case SlotBookingTime:
		return strings.TrimSpace(s.BookingTime) != ""
	case SlotCuisinePreference:
		return strings.TrimSpace(s.CuisinePreference) != ""
	case SlotSeatingPreference:
		return strings.TrimSpace(s.SeatingPreference) != ""
	case SlotSpecialRequests:
		return strings.TrimSpace(s.SpecialRequests) != ""
	}
	return false
}

// IsComplete is the completion predicate: every required slot is set
func (s SlotState) IsComplete() bool {
	return len(s.MissingRequired()) == 0
}

// MissingRequired lists the required slots that are still empty, in ask order
func (s SlotState) MissingRequired() []string {
	var missing []string
	for _, name := range requiredSlots {
		if !s.IsSet(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// KnownSlots lists the asked-for slots (plus special requests) that already hold a value
func (s SlotState) KnownSlots() []string {
	var known []string
	for _, slot := range orderedSlots {
		if s.IsSet(slot.name) {
			known = append(known, slot.name)
		}
	}
	if s.IsSet(SlotSpecialRequests) {
		known = append(known, SlotSpecialRequests)
	}
	return known
}

// NextStep returns the step for the first unmet slot, or StepConfirm once the
// completion predicate holds.
func NextStep(s SlotState) Step {
	if s.IsComplete() {
		return StepConfirm
	}
	for _, slot := range orderedSlots {
		if !s.IsSet(slot.name) {
			return slot.step
		}
	}
	return StepConfirm
}
