// Package model holds the JSON documents of the pcrm HTTP API. It is importable by clients.
package model

import "time"

// Contact is the data structure for a person that we know, as exchanged with the HTTP API.
// All fields with the exception of the Id field are optional on updates.
type Contact struct {
	Id              int64      `json:"id"`
	FirstName       *string    `json:"firstname,omitempty"       binding:"omitempty,min=1"`
	LastName        *string    `json:"lastname,omitempty"`
	Email           *string    `json:"email,omitempty"           binding:"omitempty,email"`
	Birthday        *string    `json:"birthday,omitempty"        binding:"omitempty,datetime=2006-01-02"`
	DateMet         *string    `json:"datemet,omitempty"         binding:"omitempty,datetime=2006-01-02"`
	HowMet          *string    `json:"howmet,omitempty"`
	FavoriteColor   *string    `json:"favoritecolor,omitempty"`
	LastContactedAt *time.Time `json:"lastcontactedat,omitempty"`
}

// Note is the body for adding a note or logging an interaction.
type Note struct {
	Text string `json:"text" binding:"required"`
}

// Reminder is the body for adding a reminder.
type Reminder struct {
	Message string `json:"message" binding:"required"`
	Date    string `json:"date"    binding:"required,datetime=2006-01-02"`
	Sync    bool   `json:"sync,omitempty"`
}

// Tag is the body for tagging a contact.
type Tag struct {
	Name string `json:"name" binding:"required"`
}

// Phone is the body for adding a phone number.
type Phone struct {
	Number string `json:"number"         binding:"required"`
	Type   string `json:"type,omitempty"`
}

// Named is the body for adding a pet or a partner.
type Named struct {
	Name string `json:"name" binding:"required"`
}

// Relationship is the body for relating two contacts.
type Relationship struct {
	OtherId int64  `json:"otherid" binding:"required"`
	Type    string `json:"type"    binding:"required"`
}

// Occasion is the body for adding a special occasion.
type Occasion struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Sync bool   `json:"sync,omitempty"`
}

// Gift is the body for adding a gift.
type Gift struct {
	Description string `json:"description"          binding:"required"`
	Direction   string `json:"direction"            binding:"required,oneof=given received"`
	Date        string `json:"date,omitempty"       binding:"omitempty,datetime=2006-01-02"`
	OccasionId  *int64 `json:"occasionid,omitempty"`
}

// Candidate is one entry of the numbered list returned when a name is ambiguous.
type Candidate struct {
	Number int    `json:"number"`
	Id     int64  `json:"id"`
	Name   string `json:"name"`
}

// Ambiguous is the response body for a name that matches several contacts.
type Ambiguous struct {
	Message    string      `json:"message"`
	Candidates []Candidate `json:"candidates"`
}

// Resolved is the response body for a name that was resolved to a single contact.
type Resolved struct {
	Id int64 `json:"id"`
}
