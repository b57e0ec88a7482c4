// Package transfer imports contacts from CSV and JSON files and exports them again.
package transfer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// Formats.
const (
	CSV  = "csv"
	JSON = "json"
)

// ErrFormat is returned for an unknown file format.
var ErrFormat = errors.New("format must be 'csv' or 'json'")

// ErrMissingColumn is returned for a CSV file without a first_name column.
var ErrMissingColumn = errors.New("CSV file must have a 'first_name' column")

// Importer creates contacts and their details.
type Importer interface {
	AddContact(ctx context.Context, input api.Contact) (model.Contact, error)
	AddPhone(ctx context.Context, id int64, input api.Phone) (model.Phone, error)
	AddPet(ctx context.Context, id int64, name string) (model.Pet, error)
}

// Exporter reads contacts with their details.
type Exporter interface {
	ListContacts(ctx context.Context, tag string) ([]model.Contact, error)
	ViewContact(ctx context.Context, id int64) (model.ContactDetails, error)
}

// Report summarises an import. Imported counts every stored contact, also one whose phones or
// pets failed to import.
type Report struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ExportHeader is the header row of CSV exports.
var ExportHeader = []string{"contact_id", "first_name", "last_name", "notes", "tags"}

// Import reads contacts in the given format.
func Import(ctx context.Context, format string, r io.Reader, imp Importer) (Report, error) {
	switch format {
	case CSV:
		return ImportCSV(ctx, r, imp)
	case JSON:
		return ImportJSON(ctx, r, imp)
	}
	return Report{}, ErrFormat
}

// Export writes all contacts in the given format.
func Export(ctx context.Context, format string, w io.Writer, exp Exporter) (int, error) {
	switch format {
	case CSV:
		return ExportCSV(ctx, w, exp)
	case JSON:
		return ExportJSON(ctx, w, exp)
	}
	return 0, ErrFormat
}

// ImportCSV reads one contact per row. The header names the columns: first_name is required, and
// last_name, email, birthday, date_met, how_met, favorite_color, phones and pets are optional.
// Phones are separated by '|' and may carry their type in parentheses, as in
// "555-0100(mobile)|555-0199(work)". Pets are separated by '|'. Rows without a first name are
// skipped.
func ImportCSV(ctx context.Context, r io.Reader, imp Importer) (Report, error) {
	var report Report
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return report, ErrMissingColumn
	}
	if err != nil {
		return report, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := columns["first_name"]; !ok {
		return report, ErrMissingColumn
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("failed to read CSV line: %w", err)
		}
		value := func(column string) *string {
			i, ok := columns[column]
			if !ok || i >= len(record) || strings.TrimSpace(record[i]) == "" {
				return nil
			}
			v := strings.TrimSpace(record[i])
			return &v
		}

		input := api.Contact{
			FirstName:     value("first_name"),
			LastName:      value("last_name"),
			Email:         value("email"),
			Birthday:      value("birthday"),
			DateMet:       value("date_met"),
			HowMet:        value("how_met"),
			FavoriteColor: value("favorite_color"),
		}
		if input.FirstName == nil {
			report.Skipped++
			continue
		}
		line, _ := reader.FieldPos(0)
		contact, err := imp.AddContact(ctx, input)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		report.Imported++
		if phones := value("phones"); phones != nil {
			for _, phone := range parsePhones(*phones) {
				if _, err := imp.AddPhone(ctx, contact.Id, phone); err != nil {
					return report, fmt.Errorf("line %d: %w", line, err)
				}
			}
		}
		if pets := value("pets"); pets != nil {
			for _, pet := range splitList(*pets) {
				if _, err := imp.AddPet(ctx, contact.Id, pet); err != nil {
					return report, fmt.Errorf("line %d: %w", line, err)
				}
			}
		}
	}
}

// parsePhones splits "number(type)|number" into phones.
func parsePhones(list string) []api.Phone {
	var phones []api.Phone
	for _, entry := range splitList(list) {
		phone := api.Phone{Number: entry}
		if open := strings.LastIndex(entry, "("); open > 0 && strings.HasSuffix(entry, ")") {
			phone.Number = strings.TrimSpace(entry[:open])
			phone.Type = strings.TrimSpace(entry[open+1 : len(entry)-1])
		}
		phones = append(phones, phone)
	}
	return phones
}

func splitList(list string) []string {
	var values []string
	for _, v := range strings.Split(list, "|") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// ImportJSON reads an array of contacts as accepted by the web API.
func ImportJSON(ctx context.Context, r io.Reader, imp Importer) (Report, error) {
	var report Report
	var inputs []api.Contact
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return report, fmt.Errorf("failed to parse JSON: %w", err)
	}
	for i, input := range inputs {
		if input.FirstName == nil || strings.TrimSpace(*input.FirstName) == "" {
			report.Skipped++
			continue
		}
		if _, err := imp.AddContact(ctx, input); err != nil {
			return report, fmt.Errorf("contact %d: %w", i+1, err)
		}
		report.Imported++
	}
	return report, nil
}

// ExportCSV writes one row per contact with its notes, oldest first and joined by " | ", and its
// tags joined by ", ". It returns the number of contacts written.
func ExportCSV(ctx context.Context, w io.Writer, exp Exporter) (int, error) {
	contacts, err := exp.ListContacts(ctx, "")
	if err != nil {
		return 0, err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return 0, err
	}
	for _, contact := range contacts {
		details, err := exp.ViewContact(ctx, contact.Id)
		if err != nil {
			return 0, err
		}
		notes := make([]string, 0, len(details.Notes))
		for i := len(details.Notes) - 1; i >= 0; i-- {
			notes = append(notes, details.Notes[i].Text)
		}
		lastName := ""
		if contact.LastName != nil {
			lastName = *contact.LastName
		}
		err = writer.Write([]string{
			strconv.FormatInt(contact.Id, 10),
			contact.FirstName,
			lastName,
			strings.Join(notes, " | "),
			strings.Join(details.Tags, ", "),
		})
		if err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(contacts), writer.Error()
}

// ExportJSON writes the full details of every contact as an indented JSON array.
func ExportJSON(ctx context.Context, w io.Writer, exp Exporter) (int, error) {
	contacts, err := exp.ListContacts(ctx, "")
	if err != nil {
		return 0, err
	}
	all := make([]model.ContactDetails, 0, len(contacts))
	for _, contact := range contacts {
		details, err := exp.ViewContact(ctx, contact.Id)
		if err != nil {
			return 0, err
		}
		all = append(all, details)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return len(all), encoder.Encode(all)
}
