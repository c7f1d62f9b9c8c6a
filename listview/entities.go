// ABOUTME: List view definitions for the six CRM entities
// ABOUTME: Columns, searchable values, delete prompts and export layouts per entity
package listview

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/harperreed/crmdesk/models"
	"github.com/harperreed/crmdesk/services"
)

func fixedName(name string) func(time.Time) string {
	return func(time.Time) string { return name }
}

func datedName(prefix string) func(time.Time) string {
	return func(now time.Time) string {
		return prefix + "-export-" + now.UTC().Format("2006-01-02") + ".csv"
	}
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Active"
	}
	return "Inactive"
}

type deleter interface {
	Delete(ctx context.Context, id int) error
}

func deleteByID[T any](svc deleter, id func(T) int) Remover[T] {
	return func(ctx context.Context, rec T, _ Joins) error {
		return svc.Delete(ctx, id(rec))
	}
}

// Lookup cells fall back to Unknown when only a bare or dangling id is known.
func contactCompany(c models.Contact, j Joins) string {
	return models.DisplayName(c.CompanyID, j.CompanyName(c.CompanyID), c.CompanyName)
}

func dealCompany(d models.Deal) string { return models.DisplayName(d.CompanyID, d.CompanyName) }

func taskCompany(t models.Task) string { return models.DisplayName(t.CompanyID, t.CompanyName) }

func taskContact(t models.Task) string { return models.DisplayName(t.ContactID, t.ContactName) }

func repUser(r models.SalesRep) string { return models.DisplayName(r.UserID, r.UserName) }

var contactSpec = Spec[models.Contact]{
	Entity: "Contact",
	Plural: "contacts",
	Columns: []Column{
		{Title: "Name", Width: 24}, {Title: "Email", Width: 28}, {Title: "Phone", Width: 16},
		{Title: "Company", Width: 20}, {Title: "Title", Width: 18},
	},
	ID: func(c models.Contact) int { return c.ID },
	Cells: func(c models.Contact, j Joins) []string {
		return []string{c.FullName(), c.Email, c.Phone, contactCompany(c, j), c.Title}
	},
	Search: func(c models.Contact, j Joins) []string {
		return []string{c.FullName(), c.Email, c.Phone, c.Title, contactCompany(c, j)}
	},
	Prompt: func(c models.Contact, _ Joins) string {
		return fmt.Sprintf("Are you sure you want to delete %s?", c.FullName())
	},
	Export: Export[models.Contact]{
		Filename: fixedName("contacts.csv"),
		Header:   []string{"First Name", "Last Name", "Email", "Phone", "Company", "Title", "Notes"},
		Row: func(c models.Contact, j Joins) []string {
			return []string{c.FirstName, c.LastName, c.Email, c.Phone, contactCompany(c, j), c.Title, c.Notes}
		},
	},
}

// Contacts lists contacts joined against companies for display names.
func Contacts(contacts *services.ContactService, companies *services.CompanyService, opts ...Option) *View[models.Contact] {
	return New(contactSpec, contacts, deleteByID(contacts, contactSpec.ID),
		Sources{Companies: companies}, opts...)
}

func companySize(c models.Company) string {
	if c.Size == "" {
		return ""
	}
	return c.Size + " employees"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

var companySpec = Spec[models.Company]{
	Entity: "Company",
	Plural: "companies",
	Columns: []Column{
		{Title: "Name", Width: 24}, {Title: "Industry", Width: 16}, {Title: "Size", Width: 10},
		{Title: "Website", Width: 26}, {Title: "Contacts", Width: 8},
	},
	ID: func(c models.Company) int { return c.ID },
	Cells: func(c models.Company, j Joins) []string {
		return []string{c.Name, c.Industry, c.Size, c.Website, strconv.Itoa(len(j.ContactsOf(c.ID)))}
	},
	Search: func(c models.Company, _ Joins) []string {
		return []string{c.Name, c.Industry, c.Description, c.Website}
	},
	Prompt: func(c models.Company, j Joins) string {
		prompt := fmt.Sprintf("Are you sure you want to delete %s?", c.Name)
		if n := len(j.ContactsOf(c.ID)); n > 0 {
			prompt += " This will also remove the company association from " + plural(n, "contact") + "."
		}
		return prompt
	},
	Export: Export[models.Company]{
		Filename: fixedName("companies.csv"),
		Header:   []string{"Company Name", "Industry", "Size", "Website", "Description", "Contact Count"},
		Row: func(c models.Company, j Joins) []string {
			return []string{c.Name, c.Industry, companySize(c), c.Website, c.Description, strconv.Itoa(len(j.ContactsOf(c.ID)))}
		},
	},
}

// Companies lists companies joined against contacts. Deleting a company
// detaches its joined contacts first.
func Companies(companies *services.CompanyService, contacts *services.ContactService, cascade *services.CompanyCascade, opts ...Option) *View[models.Company] {
	remove := func(ctx context.Context, c models.Company, j Joins) error {
		return cascade.Delete(ctx, c.ID, j.ContactsOf(c.ID))
	}
	return New(companySpec, companies, remove, Sources{Contacts: contacts}, opts...)
}

var dealSpec = Spec[models.Deal]{
	Entity: "Deal",
	Plural: "deals",
	Columns: []Column{
		{Title: "Deal", Width: 24}, {Title: "Company", Width: 20}, {Title: "Value", Width: 12},
		{Title: "Prob.", Width: 6}, {Title: "Stage", Width: 14}, {Title: "Close", Width: 12},
	},
	ID: func(d models.Deal) int { return d.ID },
	Cells: func(d models.Deal, _ Joins) []string {
		return []string{d.Name, dealCompany(d), money(d.Value), strconv.Itoa(d.Probability) + "%", d.Stage, d.ExpectedCloseDate}
	},
	Search: func(d models.Deal, _ Joins) []string {
		return []string{d.Name, dealCompany(d), d.Stage, d.OwnerName, d.Tags}
	},
	Prompt: func(d models.Deal, _ Joins) string {
		return fmt.Sprintf("Are you sure you want to delete %q?", d.Name)
	},
	Export: Export[models.Deal]{
		Filename: datedName("deals"),
		Header:   []string{"Deal Name", "Company", "Deal Value", "Probability", "Expected Close Date", "Stage", "Assigned Rep", "Tags"},
		Row: func(d models.Deal, _ Joins) []string {
			return []string{d.Name, dealCompany(d), money(d.Value), strconv.Itoa(d.Probability), d.ExpectedCloseDate, d.Stage, d.OwnerName, d.Tags}
		},
	},
}

func Deals(deals *services.DealService, opts ...Option) *View[models.Deal] {
	return New(dealSpec, deals, deleteByID(deals, dealSpec.ID), Sources{}, opts...)
}

var leadSpec = Spec[models.Lead]{
	Entity: "Lead",
	Plural: "leads",
	Columns: []Column{
		{Title: "Name", Width: 22}, {Title: "Email", Width: 26}, {Title: "Company", Width: 18},
		{Title: "Status", Width: 10}, {Title: "Source", Width: 14},
	},
	ID: func(l models.Lead) int { return l.ID },
	Cells: func(l models.Lead, _ Joins) []string {
		return []string{l.FullName(), l.Email, l.Company, l.Status, l.LeadSource}
	},
	Search: func(l models.Lead, _ Joins) []string {
		return []string{l.FullName(), l.Email, l.Phone, l.Company, l.Status, l.LeadSource}
	},
	Prompt: func(l models.Lead, _ Joins) string {
		return fmt.Sprintf("Are you sure you want to delete %s?", l.FullName())
	},
	Export: Export[models.Lead]{
		Filename: datedName("leads"),
		Header:   []string{"Name", "First Name", "Last Name", "Email", "Phone", "Company", "Status", "Lead Source"},
		Row: func(l models.Lead, _ Joins) []string {
			return []string{l.Name, l.FirstName, l.LastName, l.Email, l.Phone, l.Company, l.Status, l.LeadSource}
		},
	},
}

func Leads(leads *services.LeadService, opts ...Option) *View[models.Lead] {
	return New(leadSpec, leads, deleteByID(leads, leadSpec.ID), Sources{}, opts...)
}

func taskTitle(t models.Task) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Subject
}

var taskSpec = Spec[models.Task]{
	Entity: "Task",
	Plural: "tasks",
	Columns: []Column{
		{Title: "Task", Width: 26}, {Title: "Due", Width: 16}, {Title: "Priority", Width: 8},
		{Title: "Status", Width: 12}, {Title: "Company", Width: 18},
	},
	ID: func(t models.Task) int { return t.ID },
	Cells: func(t models.Task, _ Joins) []string {
		return []string{taskTitle(t), t.DueDate, t.Priority, t.Status, taskCompany(t)}
	},
	Search: func(t models.Task, _ Joins) []string {
		return []string{t.Name, t.Subject, t.Tags}
	},
	Filters: map[string]func(models.Task) string{
		"status":   func(t models.Task) string { return t.Status },
		"priority": func(t models.Task) string { return t.Priority },
	},
	Prompt: func(t models.Task, _ Joins) string {
		return fmt.Sprintf("Are you sure you want to delete %q?", taskTitle(t))
	},
	Export: Export[models.Task]{
		Filename: datedName("tasks"),
		Header:   []string{"Name", "Subject", "Due Date", "Priority", "Status", "Company", "Contact", "Tags"},
		Row: func(t models.Task, _ Joins) []string {
			return []string{t.Name, t.Subject, t.DueDate, t.Priority, t.Status, taskCompany(t), taskContact(t), t.Tags}
		},
	},
}

func Tasks(tasks *services.TaskService, opts ...Option) *View[models.Task] {
	return New(taskSpec, tasks, deleteByID(tasks, taskSpec.ID), Sources{}, opts...)
}

var salesRepSpec = Spec[models.SalesRep]{
	Entity: "Sales representative",
	Plural: "sales representatives",
	Columns: []Column{
		{Title: "Rep", Width: 20}, {Title: "Territory", Width: 16}, {Title: "Region", Width: 14},
		{Title: "Target", Width: 12}, {Title: "Achieved", Width: 9}, {Title: "Status", Width: 9},
	},
	ID: func(r models.SalesRep) int { return r.ID },
	Cells: func(r models.SalesRep, _ Joins) []string {
		return []string{repUser(r), r.Territory, r.Region, money(r.TargetAmount), money(r.AchievementPercentage) + "%", yesNo(r.IsActive)}
	},
	Search: func(r models.SalesRep, _ Joins) []string {
		return []string{repUser(r), r.Territory, r.Region}
	},
	Prompt: func(models.SalesRep, Joins) string {
		return "Are you sure you want to delete this sales representative?"
	},
	Export: Export[models.SalesRep]{
		Filename: datedName("salesreps"),
		Header:   []string{"Sales Rep", "Territory", "Region", "Target Amount", "Achievement %", "Start Date", "Status"},
		Row: func(r models.SalesRep, _ Joins) []string {
			return []string{repUser(r), r.Territory, r.Region, money(r.TargetAmount), money(r.AchievementPercentage), r.StartDate, yesNo(r.IsActive)}
		},
	},
}

func SalesReps(reps *services.SalesRepService, opts ...Option) *View[models.SalesRep] {
	return New(salesRepSpec, reps, deleteByID(reps, salesRepSpec.ID), Sources{}, opts...)
}
