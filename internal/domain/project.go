package domain

import "time"

// Project is a tracker project the credential can see.
type Project struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	State          string     `json:"state"`
	Visibility     string     `json:"visibility,omitempty"`
	LastUpdateTime *time.Time `json:"lastUpdateTime,omitempty"`
}
