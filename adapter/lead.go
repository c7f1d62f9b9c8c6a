// ABOUTME: Lead record normalizer between leads_c rows and models.Lead
// ABOUTME: The company column is free text but tolerates an expanded lookup object
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const LeadTable = "leads_c"

var LeadFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: apper.FieldName},
	{Name: "Tags"},
	{Name: "first_name_c"},
	{Name: "last_name_c"},
	{Name: "email_c"},
	{Name: "phone_c"},
	{Name: "company_c"},
	{Name: "status_c"},
	{Name: "lead_source_c"},
	{Name: apper.FieldCreatedOn},
	{Name: apper.FieldModifiedOn},
}

var LeadSearchFields = []string{"first_name_c", "last_name_c", "email_c", "phone_c", "company_c", "status_c", "lead_source_c"}

func LeadFromRecord(rec apper.Record) models.Lead {
	return models.Lead{
		ID:         Int(rec, apper.FieldID),
		Name:       String(rec, apper.FieldName, "name"),
		Tags:       String(rec, "Tags", "tags"),
		FirstName:  String(rec, "first_name_c", "firstName"),
		LastName:   String(rec, "last_name_c", "lastName"),
		Email:      String(rec, "email_c", "email"),
		Phone:      String(rec, "phone_c", "phone"),
		Company:    String(rec, "company_c", "company"),
		Status:     String(rec, "status_c", "status"),
		LeadSource: String(rec, "lead_source_c", "leadSource"),
		CreatedOn:  String(rec, apper.FieldCreatedOn, "createdOn"),
		ModifiedOn: String(rec, apper.FieldModifiedOn, "modifiedOn"),
	}
}

// LeadToRecord leaves out CreatedOn and ModifiedOn; the backend owns them.
func LeadToRecord(l models.Lead) apper.Record {
	return apper.Record{
		apper.FieldName: l.Name,
		"Tags":          l.Tags,
		"first_name_c":  l.FirstName,
		"last_name_c":   l.LastName,
		"email_c":       l.Email,
		"phone_c":       l.Phone,
		"company_c":     l.Company,
		"status_c":      l.Status,
		"lead_source_c": l.LeadSource,
	}
}
