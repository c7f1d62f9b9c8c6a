// ABOUTME: Remote record protocol types and the Client interface
// ABOUTME: Backend records are loose maps keyed by backend column names
package apper

import "context"

// Record is one backend row. Values are JSON scalars, nil, or an expanded
// lookup object of the form {"Id": 7, "Name": "Acme"}.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Reference asks the backend to expand a lookup column into {Id, Name}.
// Name is the referenced record's Fields joined with spaces.
type Reference struct {
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
}

// FieldSpec selects a column, optionally expanding it as a lookup.
type FieldSpec struct {
	Name      string     `json:"name"`
	Reference *Reference `json:"reference,omitempty"`
}

// Operator constants for conditions.
const (
	OpEqualTo    = "EqualTo"
	OpNotEqualTo = "NotEqualTo"
	OpContains   = "Contains"
)

// Condition matches a field against any of Values.
type Condition struct {
	Field    string `json:"fieldName"`
	Operator string `json:"operator"`
	Values   []any  `json:"values"`
}

// WhereGroup combines conditions with "AND" or "OR".
type WhereGroup struct {
	Operator   string      `json:"operator"`
	Conditions []Condition `json:"conditions"`
}

// OrderBy direction constants.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

type OrderBy struct {
	Field     string `json:"fieldName"`
	Direction string `json:"sorttype"`
}

type Paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Query describes a fetch. Where conditions are ANDed together and with every group.
type Query struct {
	Fields      []FieldSpec  `json:"fields,omitempty"`
	Where       []Condition  `json:"where,omitempty"`
	WhereGroups []WhereGroup `json:"whereGroups,omitempty"`
	OrderBy     []OrderBy    `json:"orderBy,omitempty"`
	Paging      Paging       `json:"pagingInfo"`
}

type ListResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    []Record `json:"data"`
	Total   int      `json:"total"`
}

// RecordResponse carries a nil Data when the id does not exist.
type RecordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    Record `json:"data"`
}

type RecordsRequest struct {
	Records []Record `json:"records"`
}

type DeleteRequest struct {
	RecordIDs []int `json:"RecordIds"`
}

type FieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

// Result is the per-row outcome of a mutation.
type Result struct {
	Success bool         `json:"success"`
	Data    Record       `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// MutationResponse reports table-level Success plus one Result per row.
type MutationResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Results []Result `json:"results"`
}

// Client is the remote record service. A non-nil error means the call never
// produced a response; Success=false means the backend refused the call.
type Client interface {
	FetchRecords(ctx context.Context, table string, q Query) (*ListResponse, error)
	GetRecordByID(ctx context.Context, table string, id int, q Query) (*RecordResponse, error)
	CreateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error)
	UpdateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error)
	DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*MutationResponse, error)
}

// System column names maintained by the backend.
const (
	FieldID         = "Id"
	FieldName       = "Name"
	FieldCreatedOn  = "CreatedOn"
	FieldModifiedOn = "ModifiedOn"
)
