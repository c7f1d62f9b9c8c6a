// ABOUTME: Contact record normalizer between contact_c rows and models.Contact
// ABOUTME: Resolves the company lookup and the legacy camelCase aliases
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const ContactTable = "contact_c"

// ContactFields is the projection requested for contact reads.
var ContactFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: "first_name_c"},
	{Name: "last_name_c"},
	{Name: "email_c"},
	{Name: "phone_c"},
	{Name: "company_id_c", Reference: &apper.Reference{Table: CompanyTable, Fields: []string{"name_c"}}},
	{Name: "title_c"},
	{Name: "notes_c"},
	{Name: "created_at_c"},
	{Name: "updated_at_c"},
}

// ContactSearchFields are matched server-side by a search term.
var ContactSearchFields = []string{"first_name_c", "last_name_c", "email_c", "phone_c", "title_c"}

func ContactFromRecord(rec apper.Record) models.Contact {
	company := LookupOf(rec, "company_id_c", "companyId")
	return models.Contact{
		ID:          Int(rec, apper.FieldID),
		FirstName:   String(rec, "first_name_c", "firstName"),
		LastName:    String(rec, "last_name_c", "lastName"),
		Email:       String(rec, "email_c", "email"),
		Phone:       String(rec, "phone_c", "phone"),
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Title:       String(rec, "title_c", "title"),
		Notes:       String(rec, "notes_c", "notes"),
		CreatedAt:   String(rec, "created_at_c", "createdAt"),
		UpdatedAt:   String(rec, "updated_at_c", "updatedAt"),
	}
}

func ContactToRecord(c models.Contact) apper.Record {
	rec := apper.Record{
		"first_name_c": c.FirstName,
		"last_name_c":  c.LastName,
		"email_c":      c.Email,
		"phone_c":      c.Phone,
		"company_id_c": NullableID(c.CompanyID),
		"title_c":      c.Title,
		"notes_c":      c.Notes,
	}
	putIfSet(rec, "created_at_c", c.CreatedAt)
	putIfSet(rec, "updated_at_c", c.UpdatedAt)
	return rec
}
