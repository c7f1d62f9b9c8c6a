// ABOUTME: Sales rep record normalizer plus the user directory record shape
// ABOUTME: Sales reps reference a user; patches carry only the changed fields
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const (
	SalesRepTable = "sales_rep_c"
	UserTable     = "user_c"
)

var SalesRepFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: "user_id_c", Reference: &apper.Reference{Table: UserTable, Fields: []string{apper.FieldName}}},
	{Name: "territory_c"},
	{Name: "region_c"},
	{Name: "target_amount_c"},
	{Name: "achievement_percentage_c"},
	{Name: "start_date_c"},
	{Name: "is_active_c"},
	{Name: "created_at_c"},
	{Name: "updated_at_c"},
}

var SalesRepSearchFields = []string{"territory_c", "region_c"}

func SalesRepFromRecord(rec apper.Record) models.SalesRep {
	user := LookupOf(rec, "user_id_c", "userId")
	return models.SalesRep{
		ID:                    Int(rec, apper.FieldID),
		UserID:                user.ID,
		UserName:              user.Name,
		Territory:             String(rec, "territory_c", "territory"),
		Region:                String(rec, "region_c", "region"),
		TargetAmount:          Float(rec, "target_amount_c", "targetAmount"),
		AchievementPercentage: Float(rec, "achievement_percentage_c", "achievementPercentage"),
		StartDate:             String(rec, "start_date_c", "startDate"),
		IsActive:              Bool(rec, "is_active_c", "isActive"),
		CreatedAt:             String(rec, "created_at_c", "createdAt"),
		UpdatedAt:             String(rec, "updated_at_c", "updatedAt"),
	}
}

func SalesRepToRecord(s models.SalesRep) apper.Record {
	rec := apper.Record{
		"user_id_c":                NullableID(s.UserID),
		"territory_c":              s.Territory,
		"region_c":                 s.Region,
		"target_amount_c":          s.TargetAmount,
		"achievement_percentage_c": s.AchievementPercentage,
		"start_date_c":             NullableString(s.StartDate),
		"is_active_c":              s.IsActive,
	}
	putIfSet(rec, "created_at_c", s.CreatedAt)
	putIfSet(rec, "updated_at_c", s.UpdatedAt)
	return rec
}

// SalesRepPatchToRecord includes only the fields set on p.
func SalesRepPatchToRecord(p models.SalesRepPatch) apper.Record {
	rec := apper.Record{}
	if p.UserID != nil {
		rec["user_id_c"] = NullableID(*p.UserID)
	}
	if p.Territory != nil {
		rec["territory_c"] = *p.Territory
	}
	if p.Region != nil {
		rec["region_c"] = *p.Region
	}
	if p.TargetAmount != nil {
		rec["target_amount_c"] = *p.TargetAmount
	}
	if p.AchievementPercentage != nil {
		rec["achievement_percentage_c"] = *p.AchievementPercentage
	}
	if p.StartDate != nil {
		rec["start_date_c"] = NullableString(*p.StartDate)
	}
	if p.IsActive != nil {
		rec["is_active_c"] = *p.IsActive
	}
	return rec
}

// SalesRepPatchFrom turns a whole sales rep into a patch touching every writable field.
func SalesRepPatchFrom(s models.SalesRep) models.SalesRepPatch {
	return models.SalesRepPatch{
		UserID:                &s.UserID,
		Territory:             &s.Territory,
		Region:                &s.Region,
		TargetAmount:          &s.TargetAmount,
		AchievementPercentage: &s.AchievementPercentage,
		StartDate:             &s.StartDate,
		IsActive:              &s.IsActive,
	}
}

var UserFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: apper.FieldName},
	{Name: "email_c"},
}

func UserFromRecord(rec apper.Record) models.User {
	return models.User{
		ID:    Int(rec, apper.FieldID),
		Name:  String(rec, apper.FieldName, "name"),
		Email: String(rec, "email_c", "email"),
	}
}
