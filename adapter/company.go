// ABOUTME: Company record normalizer between company_c rows and models.Company
// ABOUTME: The contact id list travels as a comma-joined string
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const CompanyTable = "company_c"

var CompanyFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: "name_c"},
	{Name: "industry_c"},
	{Name: "size_c"},
	{Name: "website_c"},
	{Name: "description_c"},
	{Name: "contact_ids_c"},
	{Name: "created_at_c"},
	{Name: "updated_at_c"},
}

var CompanySearchFields = []string{"name_c", "industry_c", "description_c", "website_c"}

func CompanyFromRecord(rec apper.Record) models.Company {
	return models.Company{
		ID:          Int(rec, apper.FieldID),
		Name:        String(rec, "name_c", "name"),
		Industry:    String(rec, "industry_c", "industry"),
		Size:        String(rec, "size_c", "size"),
		Website:     String(rec, "website_c", "website"),
		Description: String(rec, "description_c", "description"),
		ContactIDs:  splitIDs(rec, "contact_ids_c", "contactIds"),
		CreatedAt:   String(rec, "created_at_c", "createdAt"),
		UpdatedAt:   String(rec, "updated_at_c", "updatedAt"),
	}
}

func CompanyToRecord(c models.Company) apper.Record {
	rec := apper.Record{
		"name_c":        c.Name,
		"industry_c":    c.Industry,
		"size_c":        c.Size,
		"website_c":     c.Website,
		"description_c": c.Description,
		"contact_ids_c": joinIDs(c.ContactIDs),
	}
	putIfSet(rec, "created_at_c", c.CreatedAt)
	putIfSet(rec, "updated_at_c", c.UpdatedAt)
	return rec
}
