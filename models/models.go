package models

import (
	"fmt"
	"strings"
	"time"
)

const BusinessStatusOperational = "OPERATIONAL"

// Venue is one candidate restaurant returned by the places search, enriched
// with its high-rating review texts before formatting.
type Venue struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Rating         float64  `json:"rating,omitempty"`
	Address        string   `json:"formatted_address,omitempty"`
	BusinessStatus string   `json:"business_status"`
	OpenNow        *bool    `json:"open_now,omitempty"`
	Reviews        []string `json:"reviews,omitempty"`
}

func (v *Venue) Operational() bool {
	return v.BusinessStatus == BusinessStatusOperational
}

func (v *Venue) Stringify() string {
	return fmt.Sprintf("Venue: %s, Rating: %.1f, Address: %s, Reviews: %d", v.Name, v.Rating, v.Address, len(v.Reviews))
}

// ReviewEntry is a single customer review from the place details API.
type ReviewEntry struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// ConversationEntry is one message of a user's conversation history.
type ConversationEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

func (e *ConversationEntry) Stringify() string {
	return fmt.Sprintf("%s: %s", e.Role, strings.TrimSpace(e.Content))
}
