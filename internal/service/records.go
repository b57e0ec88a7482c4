package service

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	"gitlab.com/dirk.krummacker/pcrm/internal/transfer"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// addNote stores a note for the contact and marks the contact as contacted.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/notes --request "POST" --header "Content-Type: application/json" --data '{"text": "Met for coffee"}'
func (h *Handler) addNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Note
	if !bind(c, &input) {
		return
	}
	note, err := h.crm.AddNote(c.Request.Context(), id, input.Text)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, note)
}

// logInteraction records an interaction as a note prefixed with "Logged interaction: ".
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/interactions --request "POST" --header "Content-Type: application/json" --data '{"text": "Phone call"}'
func (h *Handler) logInteraction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Note
	if !bind(c, &input) {
		return
	}
	note, err := h.crm.LogInteraction(c.Request.Context(), id, input.Text)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, note)
}

// addReminder schedules a reminder for the contact. With "sync" set, the reminder is also pushed
// to the calendar.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/reminders --request "POST" --header "Content-Type: application/json" --data '{"message": "Call back", "date": "2025-04-01"}'
func (h *Handler) addReminder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Reminder
	if !bind(c, &input) {
		return
	}
	reminder, err := h.crm.AddReminder(c.Request.Context(), id, input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, reminder)
}

// tagContact attaches a tag to the contact. The tag is created if it does not exist yet.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/tags --request "POST" --header "Content-Type: application/json" --data '{"name": "family"}'
func (h *Handler) tagContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Tag
	if !bind(c, &input) {
		return
	}
	if err := h.crm.TagContact(c.Request.Context(), id, input.Name); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, gin.H{"message": "contact tagged"})
}

// untagContact removes a tag from the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/tags/family --request "DELETE"
func (h *Handler) untagContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.crm.UntagContact(c.Request.Context(), id, c.Param("tag")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "tag removed"})
}

func (h *Handler) addPhone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Phone
	if !bind(c, &input) {
		return
	}
	phone, err := h.crm.AddPhone(c.Request.Context(), id, input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, phone)
}

func (h *Handler) addPet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Named
	if !bind(c, &input) {
		return
	}
	pet, err := h.crm.AddPet(c.Request.Context(), id, input.Name)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, pet)
}

func (h *Handler) addPartner(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Named
	if !bind(c, &input) {
		return
	}
	partner, err := h.crm.AddPartner(c.Request.Context(), id, input.Name)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, partner)
}

// relationships lists the contacts related to the contact, in both directions.
func (h *Handler) relationships(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	related, err := h.crm.Relationships(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, related)
}

// addRelationship relates the contact to another one.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/relationships --request "POST" --header "Content-Type: application/json" --data '{"otherid": 57, "type": "sibling"}'
func (h *Handler) addRelationship(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Relationship
	if !bind(c, &input) {
		return
	}
	relationship, err := h.crm.AddRelationship(c.Request.Context(), id, input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, relationship)
}

func (h *Handler) removeRelationship(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	other, ok := parseID(c, "other")
	if !ok {
		return
	}
	if err := h.crm.RemoveRelationship(c.Request.Context(), id, other); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "relationship removed"})
}

func (h *Handler) occasions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	occasions, err := h.crm.ListOccasions(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, occasions)
}

// addOccasion stores a special occasion such as an anniversary.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/occasions --request "POST" --header "Content-Type: application/json" --data '{"name": "Anniversary", "date": "2010-06-12", "sync": true}'
func (h *Handler) addOccasion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Occasion
	if !bind(c, &input) {
		return
	}
	occasion, err := h.crm.AddOccasion(c.Request.Context(), id, input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, occasion)
}

func (h *Handler) gifts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	gifts, err := h.crm.ListGifts(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gifts)
}

// addGift records a gift given to or received from the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56/gifts --request "POST" --header "Content-Type: application/json" --data '{"description": "Book", "direction": "given", "date": "2024-12-24"}'
func (h *Handler) addGift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input api.Gift
	if !bind(c, &input) {
		return
	}
	gift, err := h.crm.AddGift(c.Request.Context(), id, input)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, gift)
}

// reminders lists all reminders from today on, soonest first.
func (h *Handler) reminders(c *gin.Context) {
	reminders, err := h.crm.ListReminders(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, reminders)
}

func (h *Handler) tags(c *gin.Context) {
	tags, err := h.crm.ListTags(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, tags)
}

// suggestions lists the contacts not contacted for the given number of days. Contacts that were
// never contacted come first.
//
// REST API calls:
//
//	> curl http://localhost:8080/suggestions
//	> curl http://localhost:8080/suggestions?days=90
func (h *Handler) suggestions(c *gin.Context) {
	days := 0
	if value := c.Query("days"); value != "" {
		var err error
		if days, err = strconv.Atoi(value); err != nil || days < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid days parameter"})
			return
		}
	}
	suggestions, err := h.crm.Suggest(c.Request.Context(), days)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, suggestions)
}

// dashboard responds with overdue reminders, the reminders of the next days, and suggestions.
func (h *Handler) dashboard(c *gin.Context) {
	dashboard, err := h.crm.Dashboard(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, dashboard)
}

func (h *Handler) graph(c *gin.Context) {
	graph, err := h.crm.RelationshipGraph(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, graph)
}

// syncCalendar pushes reminders and occasions to the configured calendar. Without a calendar the
// response is SERVICE UNAVAILABLE.
func (h *Handler) syncCalendar(c *gin.Context) {
	result, err := h.crm.SyncCalendar(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

// export writes all contacts as CSV (the default) or JSON.
//
// REST API calls:
//
//	> curl http://localhost:8080/export > contacts.csv
//	> curl "http://localhost:8080/export?format=json" > contacts.json
func (h *Handler) export(c *gin.Context) {
	format := c.DefaultQuery("format", transfer.CSV)
	contentType := "text/csv; charset=utf-8"
	if format == transfer.JSON {
		contentType = "application/json; charset=utf-8"
	} else if format != transfer.CSV {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": transfer.ErrFormat.Error()})
		return
	}
	var buffer bytes.Buffer
	if _, err := transfer.Export(c.Request.Context(), format, &buffer, h.crm); err != nil {
		h.abortWithError(c, err)
		return
	}
	if format == transfer.CSV {
		c.Header("Content-Disposition", `attachment; filename="contacts.csv"`)
	}
	c.Data(http.StatusOK, contentType, buffer.Bytes())
}

// importContacts reads contacts from the request body, CSV by default.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/import?format=csv" --request "POST" --data-binary @contacts.csv
func (h *Handler) importContacts(c *gin.Context) {
	format := c.DefaultQuery("format", transfer.CSV)
	if format != transfer.CSV && format != transfer.JSON {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": transfer.ErrFormat.Error()})
		return
	}
	report, err := transfer.Import(c.Request.Context(), format, c.Request.Body, h.crm)
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		h.abortWithError(c, err)
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message":  err.Error(),
			"imported": report.Imported,
			"skipped":  report.Skipped,
		})
		return
	}
	c.IndentedJSON(http.StatusOK, report)
}
