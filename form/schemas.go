// ABOUTME: Field definitions and draft conversions for every CRM entity form
// ABOUTME: Rules and messages mirror what users see next to each input
package form

import (
	"strconv"
	"strings"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/models"
)

func idText(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func numText(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func flag(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func required(msg string) Rule { return Rule{Tag: "required", Message: msg} }

const invalidEmail = "Please enter a valid email address"

var ContactSchema = Schema[models.Contact]{
	Entity: "Contact",
	Fields: []Field{
		{Key: "firstName", Label: "First Name", Rules: []Rule{required("First name is required")}},
		{Key: "lastName", Label: "Last Name", Rules: []Rule{required("Last name is required")}},
		{Key: "email", Label: "Email", Placeholder: "name@example.com", Rules: []Rule{{Tag: "omitempty,loose_email", Message: invalidEmail}}},
		{Key: "phone", Label: "Phone"},
		{Key: "companyId", Label: "Company ID", Rules: []Rule{{Tag: "omitempty,ref", Message: "Please select a valid company"}}},
		{Key: "title", Label: "Title"},
		{Key: "notes", Label: "Notes", Multiline: true},
	},
	ID: func(c models.Contact) int { return c.ID },
	ToDraft: func(c models.Contact) Draft {
		return Draft{
			"firstName": c.FirstName,
			"lastName":  c.LastName,
			"email":     c.Email,
			"phone":     c.Phone,
			"companyId": idText(c.CompanyID),
			"title":     c.Title,
			"notes":     c.Notes,
		}
	},
	FromDraft: func(c models.Contact, d Draft) models.Contact {
		c.FirstName = d.Get("firstName")
		c.LastName = d.Get("lastName")
		c.Email = d.Get("email")
		c.Phone = d.Get("phone")
		if id := adapter.ParseID(d.Get("companyId")); id != c.CompanyID {
			c.CompanyID = id
			c.CompanyName = ""
		}
		c.Title = d.Get("title")
		c.Notes = d.Get("notes")
		return c
	},
}

var CompanySchema = Schema[models.Company]{
	Entity: "Company",
	Fields: []Field{
		{Key: "name", Label: "Company Name", Rules: []Rule{required("Company name is required")}},
		{Key: "industry", Label: "Industry", Options: models.Industries},
		{Key: "size", Label: "Company Size", Options: models.CompanySizes},
		{Key: "website", Label: "Website", Placeholder: "example.com", Rules: []Rule{{Tag: "omitempty,website", Message: "Please enter a valid website URL"}}},
		{Key: "description", Label: "Description", Multiline: true},
	},
	ID: func(c models.Company) int { return c.ID },
	ToDraft: func(c models.Company) Draft {
		return Draft{
			"name":        c.Name,
			"industry":    c.Industry,
			"size":        c.Size,
			"website":     c.Website,
			"description": c.Description,
		}
	},
	FromDraft: func(c models.Company, d Draft) models.Company {
		c.Name = d.Get("name")
		c.Industry = d.Get("industry")
		c.Size = d.Get("size")
		c.Website = NormalizeWebsite(d.Get("website"))
		c.Description = d.Get("description")
		return c
	},
}

var DealSchema = Schema[models.Deal]{
	Entity: "Deal",
	Fields: []Field{
		{Key: "name", Label: "Deal Name", Rules: []Rule{required("Deal name is required")}},
		{Key: "companyId", Label: "Company ID", Rules: []Rule{required("Company is required"), {Tag: "ref", Message: "Company is required"}}},
		{Key: "contactId", Label: "Contact ID", Rules: []Rule{{Tag: "omitempty,ref", Message: "Please select a valid contact"}}},
		{Key: "salesRepId", Label: "Sales Rep ID", Rules: []Rule{{Tag: "omitempty,ref", Message: "Please select a valid sales rep"}}},
		{Key: "value", Label: "Deal Value", Placeholder: "0.00", Rules: []Rule{
			required("Deal value must be greater than 0"),
			{Tag: "positive", Message: "Deal value must be greater than 0"},
		}},
		{Key: "probability", Label: "Probability (%)", Rules: []Rule{{Tag: "omitempty,percent", Message: "Probability must be between 0 and 100"}}},
		{Key: "stage", Label: "Stage", Default: models.StageProspecting, Options: models.DealStages, Rules: []Rule{required("Status is required")}},
		{Key: "expectedCloseDate", Label: "Expected Close Date", Placeholder: "YYYY-MM-DD", Rules: []Rule{required("Expected close date is required")}},
		{Key: "tags", Label: "Tags"},
	},
	ID: func(d models.Deal) int { return d.ID },
	ToDraft: func(d models.Deal) Draft {
		return Draft{
			"name":              d.Name,
			"companyId":         idText(d.CompanyID),
			"contactId":         idText(d.ContactID),
			"salesRepId":        idText(d.SalesRepID),
			"value":             numText(d.Value),
			"probability":       numText(float64(d.Probability)),
			"stage":             d.Stage,
			"expectedCloseDate": d.ExpectedCloseDate,
			"tags":              d.Tags,
		}
	},
	FromDraft: func(d models.Deal, in Draft) models.Deal {
		d.Name = in.Get("name")
		if id := adapter.ParseID(in.Get("companyId")); id != d.CompanyID {
			d.CompanyID = id
			d.CompanyName = ""
		}
		if id := adapter.ParseID(in.Get("contactId")); id != d.ContactID {
			d.ContactID = id
			d.ContactName = ""
		}
		if id := adapter.ParseID(in.Get("salesRepId")); id != d.SalesRepID {
			d.SalesRepID = id
			d.SalesRepName = ""
		}
		d.Value = adapter.ParseAmount(in.Get("value"))
		d.Probability = int(adapter.ParseAmount(in.Get("probability")))
		d.Stage = in.Get("stage")
		d.ExpectedCloseDate = in.Get("expectedCloseDate")
		d.Tags = in.Get("tags")
		return d
	},
}

var LeadSchema = Schema[models.Lead]{
	Entity: "Lead",
	Fields: []Field{
		{Key: "firstName", Label: "First Name", Rules: []Rule{required("First name is required")}},
		{Key: "lastName", Label: "Last Name", Rules: []Rule{required("Last name is required")}},
		{Key: "email", Label: "Email", Rules: []Rule{required("Email is required"), {Tag: "loose_email", Message: invalidEmail}}},
		{Key: "phone", Label: "Phone"},
		{Key: "company", Label: "Company"},
		{Key: "status", Label: "Status", Default: models.LeadStatusNew, Options: models.LeadStatuses, Rules: []Rule{required("Status is required")}},
		{Key: "leadSource", Label: "Lead Source", Default: models.LeadSources[0], Options: models.LeadSources},
		{Key: "tags", Label: "Tags"},
	},
	ID: func(l models.Lead) int { return l.ID },
	ToDraft: func(l models.Lead) Draft {
		return Draft{
			"firstName":  l.FirstName,
			"lastName":   l.LastName,
			"email":      l.Email,
			"phone":      l.Phone,
			"company":    l.Company,
			"status":     l.Status,
			"leadSource": l.LeadSource,
			"tags":       l.Tags,
		}
	},
	FromDraft: func(l models.Lead, d Draft) models.Lead {
		l.FirstName = d.Get("firstName")
		l.LastName = d.Get("lastName")
		l.Email = d.Get("email")
		l.Phone = d.Get("phone")
		l.Company = d.Get("company")
		l.Status = d.Get("status")
		l.LeadSource = d.Get("leadSource")
		l.Tags = d.Get("tags")
		return l
	},
}

var TaskSchema = Schema[models.Task]{
	Entity: "Task",
	Fields: []Field{
		{Key: "subject", Label: "Subject", Rules: []Rule{required("Subject is required")}},
		{Key: "name", Label: "Name"},
		{Key: "dueDate", Label: "Due Date", Placeholder: "YYYY-MM-DDTHH:MM", SkipUnchanged: true, Rules: []Rule{
			{Tag: "omitempty,not_past", Message: "Due date cannot be in the past"},
		}},
		{Key: "priority", Label: "Priority", Default: models.PriorityMedium, Options: models.TaskPriorities},
		{Key: "status", Label: "Status", Default: models.TaskNotStarted, Options: models.TaskStatuses},
		{Key: "companyId", Label: "Company ID", Rules: []Rule{{Tag: "omitempty,ref", Message: "Please select a valid company"}}},
		{Key: "contactId", Label: "Contact ID", Rules: []Rule{{Tag: "omitempty,ref", Message: "Please select a valid contact"}}},
		{Key: "followUp", Label: "Follow Up", Default: "false", Options: []string{"false", "true"}, Rules: []Rule{{Tag: "omitempty,flag", Message: "Follow up must be true or false"}}},
		{Key: "notes", Label: "Notes", Multiline: true},
		{Key: "callDetails", Label: "Call Details", Multiline: true},
		{Key: "meetingDetails", Label: "Meeting Details", Multiline: true},
		{Key: "tags", Label: "Tags"},
	},
	ID: func(t models.Task) int { return t.ID },
	ToDraft: func(t models.Task) Draft {
		return Draft{
			"subject":        t.Subject,
			"name":           t.Name,
			"dueDate":        t.DueDate,
			"priority":       t.Priority,
			"status":         t.Status,
			"companyId":      idText(t.CompanyID),
			"contactId":      idText(t.ContactID),
			"followUp":       strconv.FormatBool(t.FollowUp),
			"notes":          t.Notes,
			"callDetails":    t.CallDetails,
			"meetingDetails": t.MeetingDetails,
			"tags":           t.Tags,
		}
	},
	FromDraft: func(t models.Task, d Draft) models.Task {
		t.Subject = d.Get("subject")
		t.Name = d.Get("name")
		if t.Name == "" {
			t.Name = t.Subject
		}
		t.DueDate = d.Get("dueDate")
		t.Priority = d.Get("priority")
		t.Status = d.Get("status")
		if id := adapter.ParseID(d.Get("companyId")); id != t.CompanyID {
			t.CompanyID = id
			t.CompanyName = ""
		}
		if id := adapter.ParseID(d.Get("contactId")); id != t.ContactID {
			t.ContactID = id
			t.ContactName = ""
		}
		t.FollowUp = flag(d.Get("followUp"))
		t.Notes = d.Get("notes")
		t.CallDetails = d.Get("callDetails")
		t.MeetingDetails = d.Get("meetingDetails")
		t.Tags = d.Get("tags")
		return t
	},
}

var SalesRepSchema = Schema[models.SalesRep]{
	Entity: "Sales Rep",
	Fields: []Field{
		{Key: "userId", Label: "User ID", Rules: []Rule{required("User selection is required"), {Tag: "ref", Message: "User selection is required"}}},
		{Key: "territory", Label: "Territory", Rules: []Rule{required("Territory is required")}},
		{Key: "region", Label: "Region", Rules: []Rule{required("Region is required")}},
		{Key: "targetAmount", Label: "Target Amount", Rules: []Rule{{Tag: "omitempty,nonneg", Message: "Target amount must be a positive number"}}},
		{Key: "achievementPercentage", Label: "Achievement (%)", Rules: []Rule{{Tag: "omitempty,percent", Message: "Achievement must be between 0 and 100"}}},
		{Key: "startDate", Label: "Start Date", Placeholder: "YYYY-MM-DD"},
		{Key: "isActive", Label: "Active", Default: "true", Options: []string{"true", "false"}, Rules: []Rule{{Tag: "omitempty,flag", Message: "Active must be true or false"}}},
	},
	ID: func(r models.SalesRep) int { return r.ID },
	ToDraft: func(r models.SalesRep) Draft {
		return Draft{
			"userId":                idText(r.UserID),
			"territory":             r.Territory,
			"region":                r.Region,
			"targetAmount":          numText(r.TargetAmount),
			"achievementPercentage": numText(r.AchievementPercentage),
			"startDate":             r.StartDate,
			"isActive":              strconv.FormatBool(r.IsActive),
		}
	},
	FromDraft: func(r models.SalesRep, d Draft) models.SalesRep {
		if id := adapter.ParseID(d.Get("userId")); id != r.UserID {
			r.UserID = id
			r.UserName = ""
		}
		r.Territory = d.Get("territory")
		r.Region = d.Get("region")
		r.TargetAmount = adapter.ParseAmount(d.Get("targetAmount"))
		r.AchievementPercentage = adapter.ParseAmount(d.Get("achievementPercentage"))
		r.StartDate = d.Get("startDate")
		r.IsActive = flag(d.Get("isActive"))
		return r
	},
}
