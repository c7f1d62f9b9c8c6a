// ABOUTME: Deal record normalizer between deals_c rows and models.Deal
// ABOUTME: Supports full payloads for create and sparse payloads for patches
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const DealTable = "deals_c"

var DealFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: "Name_c"},
	{Name: "Value_c"},
	{Name: "probability_c"},
	{Name: "Status_c"},
	{Name: "CloseDate_c"},
	{Name: "Tags"},
	{Name: "company_id_c", Reference: &apper.Reference{Table: CompanyTable, Fields: []string{"name_c"}}},
	{Name: "contact_id_c", Reference: &apper.Reference{Table: ContactTable, Fields: []string{"first_name_c", "last_name_c"}}},
	// Sales reps live outside the backend, so this lookup is never expanded.
	{Name: "sales_rep_id_c"},
	{Name: "Owner"},
	{Name: apper.FieldCreatedOn},
	{Name: apper.FieldModifiedOn},
}

var DealSearchFields = []string{"Name_c", "Tags", "Status_c"}

func DealFromRecord(rec apper.Record) models.Deal {
	company := LookupOf(rec, "company_id_c", "company")
	contact := LookupOf(rec, "contact_id_c", "contactId")
	rep := LookupOf(rec, "sales_rep_id_c", "salesRepId")
	return models.Deal{
		ID:                Int(rec, apper.FieldID),
		Name:              String(rec, "Name_c", "dealName"),
		CompanyID:         company.ID,
		CompanyName:       company.Name,
		ContactID:         contact.ID,
		ContactName:       contact.Name,
		SalesRepID:        rep.ID,
		SalesRepName:      rep.Name,
		Value:             Float(rec, "Value_c", "dealValue"),
		Probability:       Int(rec, "probability_c", "probability"),
		Stage:             String(rec, "Status_c", "stage"),
		ExpectedCloseDate: String(rec, "CloseDate_c", "expectedCloseDate"),
		Tags:              String(rec, "Tags", "tags"),
		OwnerName:         String(rec, "Owner"),
		CreatedOn:         String(rec, apper.FieldCreatedOn),
		ModifiedOn:        String(rec, apper.FieldModifiedOn),
	}
}

// DealToRecord builds the full writable payload. An empty stage defaults to Prospecting.
func DealToRecord(d models.Deal) apper.Record {
	stage := d.Stage
	if stage == "" {
		stage = models.StageProspecting
	}
	return apper.Record{
		"Name_c":         d.Name,
		"Value_c":        d.Value,
		"probability_c":  d.Probability,
		"Status_c":       stage,
		"CloseDate_c":    NullableString(d.ExpectedCloseDate),
		"Tags":           d.Tags,
		"company_id_c":   NullableID(d.CompanyID),
		"contact_id_c":   NullableID(d.ContactID),
		"sales_rep_id_c": NullableID(d.SalesRepID),
	}
}

// DealPatchToRecord includes only the fields set on p.
func DealPatchToRecord(p models.DealPatch) apper.Record {
	rec := apper.Record{}
	if p.Name != nil {
		rec["Name_c"] = *p.Name
	}
	if p.Value != nil {
		rec["Value_c"] = *p.Value
	}
	if p.Probability != nil {
		rec["probability_c"] = *p.Probability
	}
	if p.Stage != nil {
		rec["Status_c"] = *p.Stage
	}
	if p.ExpectedCloseDate != nil {
		rec["CloseDate_c"] = NullableString(*p.ExpectedCloseDate)
	}
	if p.Tags != nil {
		rec["Tags"] = *p.Tags
	}
	if p.CompanyID != nil {
		rec["company_id_c"] = NullableID(*p.CompanyID)
	}
	if p.ContactID != nil {
		rec["contact_id_c"] = NullableID(*p.ContactID)
	}
	if p.SalesRepID != nil {
		rec["sales_rep_id_c"] = NullableID(*p.SalesRepID)
	}
	return rec
}

// DealPatchFrom turns a whole deal into a patch touching every writable field.
func DealPatchFrom(d models.Deal) models.DealPatch {
	return models.DealPatch{
		Name:              &d.Name,
		CompanyID:         &d.CompanyID,
		ContactID:         &d.ContactID,
		SalesRepID:        &d.SalesRepID,
		Value:             &d.Value,
		Probability:       &d.Probability,
		Stage:             &d.Stage,
		ExpectedCloseDate: &d.ExpectedCloseDate,
		Tags:              &d.Tags,
	}
}
