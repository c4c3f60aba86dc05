package domain

import "time"

// Email is a message read from the user's inbox.
type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	ReceivedAt time.Time `json:"received_at"`
	Preview    string    `json:"preview,omitempty"`
	IsRead     bool      `json:"is_read"`
}

// Event is a calendar entry created on the user's behalf.
type Event struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees"`
	WebLink   string   `json:"web_link,omitempty"`
}
