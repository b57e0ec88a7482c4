package model

import (
	"strings"
	"time"
)

// DateLayout is the layout of all calendar dates (birthdays, reminder dates, occasions). Dates are
// stored as text in this layout so that they compare correctly as strings on every dialect.
const DateLayout = "2006-01-02"

// Contact is the data structure for a person that we know.
// All fields with the exception of the Id and FirstName fields are optional.
type Contact struct {
	Id              int64      `json:"id"                        db:"id"`
	FirstName       string     `json:"firstname"                 db:"first_name"`
	LastName        *string    `json:"lastname,omitempty"        db:"last_name"`
	Email           *string    `json:"email,omitempty"           db:"email"`
	Birthday        *string    `json:"birthday,omitempty"        db:"birthday"`
	DateMet         *string    `json:"datemet,omitempty"         db:"date_met"`
	HowMet          *string    `json:"howmet,omitempty"          db:"how_met"`
	FavoriteColor   *string    `json:"favoritecolor,omitempty"   db:"favorite_color"`
	LastContactedAt *time.Time `json:"lastcontactedat,omitempty" db:"last_contacted_at"`
	CreatedAt       time.Time  `json:"createdat"                 db:"created_at"`
}

// FullName joins the first and the last name of the contact.
func (c Contact) FullName() string {
	return JoinName(c.FirstName, c.LastName)
}

// JoinName builds a display name from a first name and an optional last name.
func JoinName(first string, last *string) string {
	if last == nil || *last == "" {
		return first
	}
	return strings.TrimSpace(first + " " + *last)
}

// Candidate is a contact that matched a name lookup.
type Candidate struct {
	Id        int64   `json:"id"                 db:"id"`
	FirstName string  `json:"firstname"          db:"first_name"`
	LastName  *string `json:"lastname,omitempty" db:"last_name"`
}

func (c Candidate) FullName() string {
	return JoinName(c.FirstName, c.LastName)
}

type Note struct {
	Id        int64     `json:"id"        db:"id"`
	ContactId int64     `json:"contactid" db:"contact_id"`
	Text      string    `json:"text"      db:"note_text"`
	CreatedAt time.Time `json:"createdat" db:"created_at"`
}

type Reminder struct {
	Id           int64     `json:"id"           db:"id"`
	ContactId    int64     `json:"contactid"    db:"contact_id"`
	Message      string    `json:"message"      db:"message"`
	ReminderDate string    `json:"reminderdate" db:"reminder_date"`
	CreatedAt    time.Time `json:"createdat"    db:"created_at"`
}

// ReminderEntry is a reminder joined with the name of its contact.
type ReminderEntry struct {
	Id           int64   `json:"id"                 db:"id"`
	ContactId    int64   `json:"contactid"          db:"contact_id"`
	ReminderDate string  `json:"reminderdate"       db:"reminder_date"`
	Message      string  `json:"message"            db:"message"`
	FirstName    string  `json:"firstname"          db:"first_name"`
	LastName     *string `json:"lastname,omitempty" db:"last_name"`
}

func (r ReminderEntry) FullName() string {
	return JoinName(r.FirstName, r.LastName)
}

type Tag struct {
	Id   int64  `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

type Phone struct {
	Id        int64   `json:"id"             db:"id"`
	ContactId int64   `json:"contactid"      db:"contact_id"`
	Number    string  `json:"number"         db:"phone_number"`
	Type      *string `json:"type,omitempty" db:"phone_type"`
}

type Pet struct {
	Id        int64  `json:"id"        db:"id"`
	ContactId int64  `json:"contactid" db:"contact_id"`
	Name      string `json:"name"      db:"name"`
}

type Partner struct {
	Id        int64  `json:"id"        db:"id"`
	ContactId int64  `json:"contactid" db:"contact_id"`
	Name      string `json:"name"      db:"name"`
}

// Relationship is an undirected, typed edge between two contacts.
type Relationship struct {
	Id         int64  `json:"id"         db:"id"`
	Contact1Id int64  `json:"contact1id" db:"contact1_id"`
	Contact2Id int64  `json:"contact2id" db:"contact2_id"`
	Type       string `json:"type"       db:"relationship_type"`
}

// RelatedContact is the other side of a relationship, seen from one contact.
type RelatedContact struct {
	ContactId int64   `json:"contactid"          db:"contact_id"`
	FirstName string  `json:"firstname"          db:"first_name"`
	LastName  *string `json:"lastname,omitempty" db:"last_name"`
	Type      string  `json:"type"               db:"relationship_type"`
}

func (r RelatedContact) FullName() string {
	return JoinName(r.FirstName, r.LastName)
}

type Occasion struct {
	Id        int64  `json:"id"        db:"id"`
	ContactId int64  `json:"contactid" db:"contact_id"`
	Name      string `json:"name"      db:"name"`
	Date      string `json:"date"      db:"date"`
}

// OccasionEntry is an occasion joined with the name of its contact.
type OccasionEntry struct {
	Occasion
	FirstName string  `json:"firstname"          db:"first_name"`
	LastName  *string `json:"lastname,omitempty" db:"last_name"`
}

func (o OccasionEntry) FullName() string {
	return JoinName(o.FirstName, o.LastName)
}

// Gift directions.
const (
	GiftGiven    = "given"
	GiftReceived = "received"
)

type Gift struct {
	Id           int64   `json:"id"                     db:"id"`
	ContactId    int64   `json:"contactid"              db:"contact_id"`
	OccasionId   *int64  `json:"occasionid,omitempty"   db:"occasion_id"`
	Description  string  `json:"description"            db:"description"`
	Direction    string  `json:"direction"              db:"direction"`
	Date         *string `json:"date,omitempty"         db:"date"`
	OccasionName *string `json:"occasionname,omitempty" db:"occasion_name"`
}

// ContactDetails is everything we know about a single contact.
type ContactDetails struct {
	Contact       Contact          `json:"contact"`
	Tags          []string         `json:"tags"`
	Notes         []Note           `json:"notes"`
	Reminders     []Reminder       `json:"reminders"`
	Phones        []Phone          `json:"phones"`
	Pets          []Pet            `json:"pets"`
	Partners      []Partner        `json:"partners"`
	Relationships []RelatedContact `json:"relationships"`
	Occasions     []Occasion       `json:"occasions"`
	Gifts         []Gift           `json:"gifts"`
}

// Suggestion is a contact that has not been contacted recently. A nil LastContactedAt means the
// contact was never contacted.
type Suggestion struct {
	Id              int64      `json:"id"                        db:"id"`
	FirstName       string     `json:"firstname"                 db:"first_name"`
	LastName        *string    `json:"lastname,omitempty"        db:"last_name"`
	LastContactedAt *time.Time `json:"lastcontactedat,omitempty" db:"last_contacted_at"`
}

func (s Suggestion) FullName() string {
	return JoinName(s.FirstName, s.LastName)
}

// Dashboard is the status overview: overdue reminders, reminders of the next seven days, and the
// contacts that should be reached out to.
type Dashboard struct {
	Overdue     []ReminderEntry `json:"overdue"`
	Upcoming    []ReminderEntry `json:"upcoming"`
	Suggestions []Suggestion    `json:"suggestions"`
}

// GraphNode and GraphEdge describe the relationship graph as plain data.
type GraphNode struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type GraphEdge struct {
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Type string `json:"type"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
