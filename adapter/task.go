// ABOUTME: Task record normalizer between task_c rows and models.Task
// ABOUTME: Applies priority and status defaults on write
package adapter

import (
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

const TaskTable = "task_c"

var TaskFields = []apper.FieldSpec{
	{Name: apper.FieldID},
	{Name: apper.FieldName},
	{Name: "Tags"},
	{Name: "subject_c"},
	{Name: "due_date_c"},
	{Name: "priority_c"},
	{Name: "status_c"},
	{Name: "notes_c"},
	{Name: "call_details_c"},
	{Name: "meeting_details_c"},
	{Name: "follow_up_c"},
	{Name: "company_id_c", Reference: &apper.Reference{Table: CompanyTable, Fields: []string{"name_c"}}},
	{Name: "contact_id_c", Reference: &apper.Reference{Table: ContactTable, Fields: []string{"first_name_c", "last_name_c"}}},
	{Name: "Owner"},
	{Name: apper.FieldCreatedOn},
	{Name: apper.FieldModifiedOn},
}

var TaskSearchFields = []string{apper.FieldName, "subject_c", "Tags"}

func TaskFromRecord(rec apper.Record) models.Task {
	company := LookupOf(rec, "company_id_c", "companyId")
	contact := LookupOf(rec, "contact_id_c", "contactId")
	return models.Task{
		ID:             Int(rec, apper.FieldID),
		Name:           String(rec, apper.FieldName, "name"),
		Tags:           String(rec, "Tags", "tags"),
		Subject:        String(rec, "subject_c", "subject"),
		DueDate:        String(rec, "due_date_c", "dueDate"),
		Priority:       String(rec, "priority_c", "priority"),
		Status:         String(rec, "status_c", "status"),
		Notes:          String(rec, "notes_c", "notes"),
		CallDetails:    String(rec, "call_details_c", "callDetails"),
		MeetingDetails: String(rec, "meeting_details_c", "meetingDetails"),
		FollowUp:       Bool(rec, "follow_up_c", "followUp"),
		CompanyID:      company.ID,
		CompanyName:    company.Name,
		ContactID:      contact.ID,
		ContactName:    contact.Name,
		OwnerName:      String(rec, "Owner"),
		CreatedOn:      String(rec, apper.FieldCreatedOn),
		ModifiedOn:     String(rec, apper.FieldModifiedOn),
	}
}

func TaskToRecord(t models.Task) apper.Record {
	priority := t.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	status := t.Status
	if status == "" {
		status = models.TaskNotStarted
	}
	return apper.Record{
		apper.FieldName:     t.Name,
		"Tags":              t.Tags,
		"subject_c":         t.Subject,
		"due_date_c":        NullableString(t.DueDate),
		"priority_c":        priority,
		"status_c":          status,
		"notes_c":           t.Notes,
		"call_details_c":    t.CallDetails,
		"meeting_details_c": t.MeetingDetails,
		"follow_up_c":       t.FollowUp,
		"company_id_c":      NullableID(t.CompanyID),
		"contact_id_c":      NullableID(t.ContactID),
	}
}
