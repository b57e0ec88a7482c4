package service

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gitlab.com/dirk.krummacker/pcrm/internal/resolver"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// allowedAscending are the allowed values for the 'ascending' URL parameter.
var allowedAscending = []string{"true", "false"}

// findContacts responds with a list of contacts as JSON.
//
// The URL parameters 'firstname' and 'lastname' are interpreted as the beginning of the first name
// or last name of the contact.
//
// The URL parameter 'birthday' consists of a month part and a day part, separated by '-'. The call
// returns all contacts that have their birthday on this month and day, regardless of the year.
//
// The URL parameter 'tag' restricts the result to contacts with this tag. The URL parameter 'q' is
// searched for anywhere in the first name, last name and email.
//
// The URL parameter 'limit' specifies how many contacts matching the search criteria are returned.
// The URL parameter 'offset' specifies how many items from the sorted list of results are skipped
// in the beginning. Together with the 'limit' parameter, one can implement search result paging.
//
// The URL parameter 'orderby' specifies the contact property by which the results shall be sorted.
// Valid values are 'id', 'firstname', 'lastname', 'email', 'birthday' and 'lastcontacted'. If this
// URL parameter is not specified, the contacts will be sorted by id.
//
// If the URL parameter 'ascending' is set to 'false' then the sort order is reversed, starting
// with the 'highest' value. If it is set to 'true', or if this URL parameter is omitted, the
// result starts with the lowest value.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?firstname=Ji"
//	> curl "http://localhost:8080/contacts?lastname=Smi"
//	> curl "http://localhost:8080/contacts?birthday=11-29"
//	> curl "http://localhost:8080/contacts?tag=family"
//	> curl "http://localhost:8080/contacts?limit=20&offset=60"
//	> curl "http://localhost:8080/contacts?orderby=lastcontacted&ascending=false"
func (h *Handler) findContacts(c *gin.Context) {
	filter := store.Filter{
		FirstName: c.Query("firstname"),
		LastName:  c.Query("lastname"),
		Tag:       c.Query("tag"),
		Query:     c.Query("q"),
	}
	if !parseBirthday(c, &filter) || !parseLimitAndOffset(c, &filter) || !parseOrderbyAndAscending(c, &filter) {
		return
	}
	contacts, err := h.crm.FindContacts(c.Request.Context(), filter)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	} else {
		c.IndentedJSON(http.StatusOK, contacts)
	}
}

// parseBirthday inspects the 'birthday' URL parameter and determines day and month of the
// contact's birthday.
func parseBirthday(c *gin.Context, filter *store.Filter) bool {
	birthday := c.Query("birthday")
	if birthday == "" {
		return true
	}
	before, after, found := strings.Cut(birthday, "-")
	if !found {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid birthday URL parameter"})
		return false
	}
	month, errMonth := strconv.Atoi(before)
	day, errDay := strconv.Atoi(after)
	if errMonth != nil || errDay != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid birthday URL parameter"})
		return false
	}
	filter.BirthMonth = month
	filter.BirthDay = day
	return true
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set.
func parseLimitAndOffset(c *gin.Context, filter *store.Filter) bool {
	if limit := c.Query("limit"); limit != "" {
		limitAsInt, errConv := strconv.Atoi(limit)
		if errConv != nil || limitAsInt < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return false
		}
		filter.Limit = limitAsInt
	}
	if offset := c.Query("offset"); offset != "" {
		offsetAsInt, errConv := strconv.Atoi(offset)
		if errConv != nil || offsetAsInt < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return false
		}
		filter.Offset = offsetAsInt
	}
	return true
}

// parseOrderbyAndAscending inspects the URL parameters and determines values for the orderby and
// ascending values of the result set.
func parseOrderbyAndAscending(c *gin.Context, filter *store.Filter) bool {
	orderby := c.DefaultQuery("orderby", "id")
	if _, ok := store.OrderColumns[orderby]; !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid orderby parameter"})
		return false
	}
	ascending := c.DefaultQuery("ascending", "true")
	if !contains(allowedAscending, ascending) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid ascending parameter"})
		return false
	}
	filter.OrderBy = orderby
	filter.Descending = ascending == "false"
	return true
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}

// searchContacts responds with the contacts where every given field contains the given text. The
// URL parameters are column names such as 'how_met' or 'favorite_color'.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/search?how_met=conference&favorite_color=blue"
func (h *Handler) searchContacts(c *gin.Context) {
	criteria := map[string]string{}
	for field, values := range c.Request.URL.Query() {
		if !contains(store.SearchableFields, field) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid search field " + field})
			return
		}
		criteria[field] = values[0]
	}
	contacts, err := h.crm.AdvancedSearch(c.Request.Context(), criteria)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// resolveContact maps a name to a contact id. If several contacts carry the name, the response
// is CONFLICT with the numbered candidates; the request is then repeated with the chosen number
// in the 'choice' parameter, or 'q' to cancel.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts/resolve?name=Jane"
//	> curl "http://localhost:8080/contacts/resolve?name=Jane&choice=2"
func (h *Handler) resolveContact(c *gin.Context) {
	id, err := h.crm.Resolve(c.Request.Context(), c.Query("name"), resolver.Selection(c.Query("choice")))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, api.Resolved{Id: id})
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"firstname": "Hans", "lastname": "Wurst", "email": "hans@example.com", "birthday": "1969-03-02"}'
func (h *Handler) createContact(c *gin.Context) {
	var newContact api.Contact
	if !bind(c, &newContact) {
		return
	}
	contact, err := h.crm.AddContact(c.Request.Context(), newContact)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, contact)
}

// viewContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact together with its notes, reminders, tags and other records.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56
func (h *Handler) viewContactByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	details, err := h.crm.ViewContact(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, details)
}

// updateContactByID updates the contact whose ID value matches the id parameter of the request
// URL, updates the values specified in the JSON (and only those), and finally responds with the
// new version of the contact. An empty string removes an optional value.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"email": "new@example.com"}'
//	> curl http://localhost:8080/contacts/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"birthday": "1972-06-06"}'
func (h *Handler) updateContactByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var submitted api.Contact
	if !bind(c, &submitted) {
		return
	}
	if submitted.FirstName == nil && submitted.LastName == nil && submitted.Email == nil &&
		submitted.Birthday == nil && submitted.DateMet == nil && submitted.HowMet == nil &&
		submitted.FavoriteColor == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}
	contact, err := h.crm.EditContact(c.Request.Context(), id, submitted)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database, together with everything that belongs to it.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/56 --request "DELETE"
func (h *Handler) deleteContactByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.crm.DeleteContact(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
}
