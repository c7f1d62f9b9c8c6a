// ABOUTME: Client wrapper that records every call and can inject failures
// ABOUTME: Lets tests assert call order and exercise each failure kind
package apper

import (
	"context"
	"sync"
)

// Operation names recorded by Recorder and used in metrics labels.
const (
	OpFetch  = "fetch"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Call is one recorded client invocation.
type Call struct {
	Op      string
	Table   string
	IDs     []int
	Records []Record
}

// Recorder forwards to Client and remembers what it was asked to do.
//
// Fail returns a transport error for a call. Refuse returns a non-empty
// message to make the backend answer Success=false. Reject returns a
// non-empty message to fail every row of a mutation. All hooks are optional.
type Recorder struct {
	Client Client

	Fail   func(Call) error
	Refuse func(Call) string
	Reject func(Call) string

	mu    sync.Mutex
	calls []Call
}

// NewRecorder wraps c.
func NewRecorder(c Client) *Recorder {
	return &Recorder{Client: c}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns "op:table" for each recorded call.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Op + ":" + c.Table
	}
	return out
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

type outcome struct {
	err      error
	refused  string
	rejected string
}

func (r *Recorder) record(c Call) outcome {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	var o outcome
	if r.Fail != nil {
		o.err = r.Fail(c)
	}
	if r.Refuse != nil {
		o.refused = r.Refuse(c)
	}
	if r.Reject != nil {
		o.rejected = r.Reject(c)
	}
	return o
}

func recordIDs(records []Record) []int {
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		if id, ok := IntValue(rec[FieldID]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func rejectAll(n int, msg string) *MutationResponse {
	resp := &MutationResponse{Success: true, Results: make([]Result, n)}
	for i := range resp.Results {
		resp.Results[i] = Result{Success: false, Message: msg}
	}
	return resp
}

func (r *Recorder) FetchRecords(ctx context.Context, table string, q Query) (*ListResponse, error) {
	o := r.record(Call{Op: OpFetch, Table: table})
	if o.err != nil {
		return nil, o.err
	}
	if o.refused != "" {
		return &ListResponse{Success: false, Message: o.refused}, nil
	}
	return r.Client.FetchRecords(ctx, table, q)
}

func (r *Recorder) GetRecordByID(ctx context.Context, table string, id int, q Query) (*RecordResponse, error) {
	o := r.record(Call{Op: OpGet, Table: table, IDs: []int{id}})
	if o.err != nil {
		return nil, o.err
	}
	if o.refused != "" {
		return &RecordResponse{Success: false, Message: o.refused}, nil
	}
	return r.Client.GetRecordByID(ctx, table, id, q)
}

func (r *Recorder) CreateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	o := r.record(Call{Op: OpCreate, Table: table, Records: req.Records})
	if o.err != nil {
		return nil, o.err
	}
	if o.refused != "" {
		return &MutationResponse{Success: false, Message: o.refused}, nil
	}
	if o.rejected != "" {
		return rejectAll(len(req.Records), o.rejected), nil
	}
	return r.Client.CreateRecord(ctx, table, req)
}

func (r *Recorder) UpdateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	o := r.record(Call{Op: OpUpdate, Table: table, IDs: recordIDs(req.Records), Records: req.Records})
	if o.err != nil {
		return nil, o.err
	}
	if o.refused != "" {
		return &MutationResponse{Success: false, Message: o.refused}, nil
	}
	if o.rejected != "" {
		return rejectAll(len(req.Records), o.rejected), nil
	}
	return r.Client.UpdateRecord(ctx, table, req)
}

func (r *Recorder) DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*MutationResponse, error) {
	o := r.record(Call{Op: OpDelete, Table: table, IDs: req.RecordIDs})
	if o.err != nil {
		return nil, o.err
	}
	if o.refused != "" {
		return &MutationResponse{Success: false, Message: o.refused}, nil
	}
	if o.rejected != "" {
		return rejectAll(len(req.RecordIDs), o.rejected), nil
	}
	return r.Client.DeleteRecord(ctx, table, req)
}
