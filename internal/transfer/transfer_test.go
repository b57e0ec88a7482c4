package transfer_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/storetest"
	"gitlab.com/dirk.krummacker/pcrm/internal/transfer"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

func newService(t *testing.T) *crm.Service {
	return crm.New(storetest.Open(t), zap.NewNop())
}

func apiContact(first, last string) api.Contact {
	return api.Contact{FirstName: &first, LastName: &last}
}

// TestImportCSV expects that rows without first name are skipped and that phones and pets are
// attached to their contact.
func TestImportCSV(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	input := "first_name,last_name,email,phones,pets\n" +
		"Jane,Doe,jane@example.com,555-0100(mobile)|555-0199,Rex\n" +
		",Nobody,,,\n" +
		"Sam,,,,\n"

	report, err := transfer.Import(ctx, transfer.CSV, strings.NewReader(input), svc)
	require.NoError(t, err)
	assert.Equal(t, transfer.Report{Imported: 2, Skipped: 1}, report)

	id, err := svc.Resolve(ctx, "Jane Doe", nil)
	require.NoError(t, err)
	details, err := svc.ViewContact(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", *details.Contact.Email)
	require.Len(t, details.Phones, 2)
	assert.Equal(t, "555-0100", details.Phones[0].Number)
	assert.Equal(t, "mobile", *details.Phones[0].Type)
	assert.Nil(t, details.Phones[1].Type)
	require.Len(t, details.Pets, 1)
	assert.Equal(t, "Rex", details.Pets[0].Name)

	sam, err := svc.Resolve(ctx, "Sam", nil)
	require.NoError(t, err)
	contact, err := svc.Contact(ctx, sam)
	require.NoError(t, err)
	assert.Nil(t, contact.LastName)
}

func TestImportCSVMissingColumn(t *testing.T) {
	svc := newService(t)
	_, err := transfer.ImportCSV(context.Background(), strings.NewReader("name\nJane\n"), svc)
	assert.ErrorIs(t, err, transfer.ErrMissingColumn)
	_, err = transfer.ImportCSV(context.Background(), strings.NewReader(""), svc)
	assert.ErrorIs(t, err, transfer.ErrMissingColumn)
}

// TestImportCSVInvalidValue expects that a validation error names the line.
func TestImportCSVInvalidValue(t *testing.T) {
	svc := newService(t)
	input := "first_name,birthday\nJane,1990-01-01\nSam,yesterday\n"
	report, err := transfer.ImportCSV(context.Background(), strings.NewReader(input), svc)
	assert.ErrorIs(t, err, crm.ErrInvalidDate)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, 1, report.Imported)
}

// failingPhones stores contacts but rejects every phone.
type failingPhones struct {
	*crm.Service
}

func (failingPhones) AddPhone(context.Context, int64, api.Phone) (model.Phone, error) {
	return model.Phone{}, errors.New("disk full")
}

// TestImportCSVDetailError expects that a contact stored before its phone failed is counted as
// imported and that the error names the line.
func TestImportCSVDetailError(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	input := `first_name,phones
Jane,555-0100
Sam,555-0199
`

	report, err := transfer.ImportCSV(ctx, strings.NewReader(input), failingPhones{svc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, transfer.Report{Imported: 1}, report)

	_, err = svc.Resolve(ctx, "Jane", nil)
	assert.NoError(t, err)
}

func TestImportJSON(t *testing.T) {
	svc := newService(t)
	input := `[{"firstname": "Jane", "lastname": "Doe"}, {"lastname": "Nobody"}]`
	report, err := transfer.Import(context.Background(), transfer.JSON, strings.NewReader(input), svc)
	require.NoError(t, err)
	assert.Equal(t, transfer.Report{Imported: 1, Skipped: 1}, report)

	_, err = transfer.Import(context.Background(), "xml", strings.NewReader(input), svc)
	assert.ErrorIs(t, err, transfer.ErrFormat)
}

// TestExportCSV expects one row per contact with notes in the order they were written and tags.
func TestExportCSV(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	jane, err := svc.AddContact(ctx, apiContact("Jane", "Doe"))
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, jane.Id, "first")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, jane.Id, "second")
	require.NoError(t, err)
	require.NoError(t, svc.TagContact(ctx, jane.Id, "family"))
	require.NoError(t, svc.TagContact(ctx, jane.Id, "book club"))

	var out bytes.Buffer
	count, err := transfer.Export(ctx, transfer.CSV, &out, svc)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, transfer.ExportHeader, records[0])
	assert.Equal(t, []string{"1", "Jane", "Doe", "first | second", "book club, family"}, records[1])
}

func TestExportJSON(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.AddContact(ctx, apiContact("Sam", "Lee"))
	require.NoError(t, err)

	var out bytes.Buffer
	count, err := transfer.ExportJSON(ctx, &out, svc)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var details []model.ContactDetails
	require.NoError(t, json.Unmarshal(out.Bytes(), &details))
	require.Len(t, details, 1)
	assert.Equal(t, "Sam Lee", details[0].Contact.FullName())
}
