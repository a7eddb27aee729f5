package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fixed utterances used when the language model cannot produce one
const (
	FallbackReply    = "I'm sorry, I'm having a little trouble right now. Could you please repeat that?"
	FallbackGreeting = "Hello! Welcome, I'd be happy to help you book a table. May I have your name, please?"
)

var slotDescriptions = map[string]string{
	SlotCustomerName:      "the name the booking is under",
	SlotNumberOfGuests:    "number of guests as an integer",
	SlotBookingDate:       "the date exactly as the user said it, e.g. \"tomorrow\" or \"December 5th\"",
	SlotBookingTime:       "the time, e.g. \"7:30 PM\"",
	SlotCuisinePreference: "preferred cuisine",
	SlotSeatingPreference: "\"indoor\" or \"outdoor\"",
	SlotSpecialRequests:   "any special requests",
}

var stepQuestions = map[Step]string{
	StepAskName:    "Ask for the name the booking should be under.",
	StepAskGuests:  "Ask how many guests will be dining.",
	StepAskDate:    "Ask which date they would like to book.",
	StepAskTime:    "Ask what time they would like to arrive.",
	StepAskCuisine: "Ask whether they have a cuisine preference.",
	StepAskSeating: "Ask whether they prefer indoor or outdoor seating, using the weather advice if available.",
	StepConfirm:    "Summarise every booking detail and ask the user to confirm the booking.",
}

// BuildExtractionPrompt instructs the model to return only the fields that are
// still missing from the existing state, as a single JSON object.
func BuildExtractionPrompt(existing SlotState, today time.Time) string {
	var b strings.Builder
	b.WriteString("You extract restaurant booking details from a user's message.\n")
	fmt.Fprintf(&b, "Today is %s.\n", today.Format(DisplayDate))

	known := existing.KnownSlots()
	if len(known) > 0 {
		b.WriteString("These fields are already known and must NOT be returned:\n")
		for _, name := range known {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	b.WriteString("Return a JSON object containing only fields the message clearly states, chosen from:\n")
	for _, name := range append(orderedSlotNames(), SlotSpecialRequests) {
		if existing.IsSet(name) {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, slotDescriptions[name])
	}
	b.WriteString("Return {} if nothing applies. Respond with JSON only, no explanation.")
	return b.String()
}

// ParseSlotPatch decodes a model response into a patch. Code fences and prose
// around the JSON object are tolerated.
func ParseSlotPatch(raw string) (SlotPatch, error) {
	var patch SlotPatch
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return patch, fmt.Errorf("%w: no JSON object in response", ErrExtractionFailure)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &patch); err != nil {
		return SlotPatch{}, fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}
	return patch, nil
}

// BuildSystemContext describes the booking state to the response generator.
// Known fields are listed explicitly so the model never asks for them again.
func BuildSystemContext(slots SlotState, next Step, dateUnresolved bool) string {
	var b strings.Builder
	b.WriteString("You are a friendly restaurant booking assistant. Keep replies short and conversational.\n")

	known := slots.KnownSlots()
	if len(known) > 0 {
		b.WriteString("Already known (never ask for these again):\n")
		for _, name := range known {
			fmt.Fprintf(&b, "- %s: %s\n", name, slotValue(slots, name))
		}
	}

	if dateUnresolved {
		b.WriteString("The user gave a date that could not be understood. Politely ask them to restate it, for example \"December 5th\" or \"tomorrow\".\n")
	}

	if w := slots.WeatherInfo; w != nil {
		fmt.Fprintf(&b, "Weather for the booking date: %s, %.0f°C (%s).\n", w.Condition, w.Temperature, w.Description)
		if w.Recommendation != nil && !slots.IsSet(SlotSeatingPreference) {
			fmt.Fprintf(&b, "Seating advice: %s (%s)\n", w.Recommendation.Seating, w.Recommendation.Message)
		}
	}

	fmt.Fprintf(&b, "Next step: %s", stepQuestions[next])
	return b.String()
}

// BuildGreetingContext is the system context for the opening message
func BuildGreetingContext(weather *WeatherObservation) string {
	var b strings.Builder
	b.WriteString("You are a friendly restaurant booking assistant. Greet the user warmly in one or two sentences and ask for their name.")
	if weather != nil && weather.Condition != DefaultWeatherCondition {
		fmt.Fprintf(&b, "\nCurrent weather: %s, %.0f°C. You may mention it briefly.", weather.Condition, weather.Temperature)
	}
	return b.String()
}

func orderedSlotNames() []string {
	names := make([]string, 0, len(orderedSlots))
	for _, slot := range orderedSlots {
		names = append(names, slot.name)
	}
	return names
}

func slotValue(s SlotState, name string) string {
	switch name {
	case SlotCustomerName:
		return s.CustomerName
	case SlotNumberOfGuests:
		return fmt.Sprintf("%d", s.NumberOfGuests)
	case SlotBookingDate:
		return s.BookingDate
	case SlotBookingTime:
		return s.BookingTime
	case SlotCuisinePreference:
		return s.CuisinePreference
	case SlotSeatingPreference:
		return s.SeatingPreference
	case SlotSpecialRequests:
		return s.SpecialRequests
	}
	return ""
}
