package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventSource string

const (
	SourceMeetup        EventSource = "Meetup"
	SourceEventbrite    EventSource = "Eventbrite"
	SourceLuma          EventSource = "Luma"
	SourceHub           EventSource = "T-Hub"
	SourceInstitutional EventSource = "Institutional"
)

// Event is a discoverable ecosystem event. Saved and registered event ids
// live in the user's profile metadata, not here.
type Event struct {
	ID          string         `json:"id" gorm:"primaryKey;size:64"`
	Title       string         `json:"title" gorm:"not null;size:255"`
	Type        string         `json:"type" gorm:"size:64"`
	Date        time.Time      `json:"date"`
	Location    string         `json:"location" gorm:"size:255"`
	Description string         `json:"description" gorm:"type:text"`
	ImageURL    string         `json:"img" gorm:"size:500"`
	Source      EventSource    `json:"source" gorm:"size:32"`
	URL         string         `json:"url" gorm:"size:500"`
	Tags        datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	Domain      string         `json:"domain,omitempty" gorm:"size:64"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Event) TableName() string {
	return "events"
}
