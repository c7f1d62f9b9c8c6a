// ABOUTME: UI-shaped data models for CRM entities
// ABOUTME: Defines Contact, Company, Lead, Deal, Task, SalesRep and User records
package models

import "strings"

type Contact struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyID   int    `json:"companyId"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// FullName joins first and last name, skipping blanks.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Size        string `json:"size"`
	Website     string `json:"website"`
	Description string `json:"description"`
	ContactIDs  []int  `json:"contactIds"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type Lead struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Tags       string `json:"tags"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Status     string `json:"status"`
	LeadSource string `json:"leadSource"`
	CreatedOn  string `json:"createdOn"`
	ModifiedOn string `json:"modifiedOn"`
}

// FullName joins first and last name, skipping blanks.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

type Deal struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	CompanyID         int     `json:"companyId"`
	CompanyName       string  `json:"companyName"`
	ContactID         int     `json:"contactId"`
	ContactName       string  `json:"contactName"`
	SalesRepID        int     `json:"salesRepId"`
	SalesRepName      string  `json:"salesRepName"`
	Value             float64 `json:"value"`
	Probability       int     `json:"probability"`
	Stage             string  `json:"stage"`
	ExpectedCloseDate string  `json:"expectedCloseDate"`
	Tags              string  `json:"tags"`
	OwnerName         string  `json:"ownerName"`
	CreatedOn         string  `json:"createdOn"`
	ModifiedOn        string  `json:"modifiedOn"`
}

// DealPatch carries only the fields a caller wants to change. Nil means untouched.
type DealPatch struct {
	Name              *string
	CompanyID         *int
	ContactID         *int
	SalesRepID        *int
	Value             *float64
	Probability       *int
	Stage             *string
	ExpectedCloseDate *string
	Tags              *string
}

type Task struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Tags           string `json:"tags"`
	Subject        string `json:"subject"`
	DueDate        string `json:"dueDate"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
	CallDetails    string `json:"callDetails"`
	MeetingDetails string `json:"meetingDetails"`
	FollowUp       bool   `json:"followUp"`
	CompanyID      int    `json:"companyId"`
	CompanyName    string `json:"companyName"`
	ContactID      int    `json:"contactId"`
	ContactName    string `json:"contactName"`
	OwnerName      string `json:"ownerName"`
	CreatedOn      string `json:"createdOn"`
	ModifiedOn     string `json:"modifiedOn"`
}

type SalesRep struct {
	ID                    int     `json:"id"`
	UserID                int     `json:"userId"`
	UserName              string  `json:"userName"`
	Territory             string  `json:"territory"`
	Region                string  `json:"region"`
	TargetAmount          float64 `json:"targetAmount"`
	AchievementPercentage float64 `json:"achievementPercentage"`
	StartDate             string  `json:"startDate"`
	IsActive              bool    `json:"isActive"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

// SalesRepPatch carries only the fields a caller wants to change. Nil means untouched.
type SalesRepPatch struct {
	UserID                *int
	Territory             *string
	Region                *string
	TargetAmount          *float64
	AchievementPercentage *float64
	StartDate             *string
	IsActive              *bool
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnknownName is shown when a lookup carries only a bare id.
const UnknownName = "Unknown"

// Deal stage constants.
const (
	StageProspecting = "Prospecting"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

// Lead status constants.
const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
	LeadStatusQualified = "Qualified"
	LeadStatusLost      = "Lost"
	LeadStatusWon       = "Won"
)

// Task priority constants.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task status constants.
const (
	TaskNotStarted = "Not Started"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
	TaskDeferred   = "Deferred"
)

var (
	DealStages     = []string{StageProspecting, StageNegotiation, StageClosedWon, StageClosedLost}
	LeadStatuses   = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost, LeadStatusWon}
	LeadSources    = []string{"Web", "Referral", "Trade Show", "Advertisement"}
	TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	TaskStatuses   = []string{TaskNotStarted, TaskInProgress, TaskCompleted, TaskDeferred}
	Industries     = []string{"Technology", "Healthcare", "Finance", "Manufacturing", "Retail", "Education", "Real Estate", "Consulting", "Other"}
	CompanySizes   = []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}
)

// DisplayName picks the expanded lookup name, then a fallback, then Unknown.
// A zero id has no display name at all.
func DisplayName(id int, names ...string) string {
	if id == 0 {
		return ""
	}
	for _, n := range names {
		if n != "" {
			return n
		}
	}
	return UnknownName
}
