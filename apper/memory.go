// ABOUTME: In-memory implementation of the record Client
// ABOUTME: Backs the sales rep directory and every test that needs a backend
package apper

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryClient keeps tables in process memory. Ids are assigned per client
// and never reused.
type MemoryClient struct {
	mu     sync.RWMutex
	tables map[string]map[int]Record
	nextID int
	now    func() time.Time
}

// NewMemoryClient returns an empty client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables: make(map[string]map[int]Record),
		nextID: 1,
		now:    time.Now,
	}
}

// Seed inserts records verbatim. Records carrying an Id keep it; the rest get
// a fresh one. It returns the ids in order.
func (m *MemoryClient) Seed(table string, records ...Record) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int, 0, len(records))
	for _, r := range records {
		rec := r.Clone()
		id, ok := IntValue(rec[FieldID])
		if !ok || id == 0 {
			id = m.nextID
		}
		if id >= m.nextID {
			m.nextID = id + 1
		}
		rec[FieldID] = id
		m.table(table)[id] = rec
		ids = append(ids, id)
	}
	return ids
}

func (m *MemoryClient) table(name string) map[int]Record {
	t, ok := m.tables[name]
	if !ok {
		t = make(map[int]Record)
		m.tables[name] = t
	}
	return t
}

func (m *MemoryClient) resolve(table string, id int) (Record, bool) {
	rec, ok := m.tables[table][id]
	return rec, ok
}

func (m *MemoryClient) FetchRecords(ctx context.Context, table string, q Query) (*ListResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := m.tables[table]
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	all := make([]Record, 0, len(ids))
	for _, id := range ids {
		all = append(all, t[id])
	}

	page, total := Apply(all, q)
	data := make([]Record, 0, len(page))
	for _, r := range page {
		data = append(data, Project(r, q.Fields, m.resolve))
	}
	return &ListResponse{Success: true, Data: data, Total: total}, nil
}

func (m *MemoryClient) GetRecordByID(ctx context.Context, table string, id int, q Query) (*RecordResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tables[table][id]
	if !ok {
		return &RecordResponse{Success: true}, nil
	}
	return &RecordResponse{Success: true, Data: Project(rec, q.Fields, m.resolve)}, nil
}

func (m *MemoryClient) CreateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := m.now().UTC().Format(time.RFC3339)
	resp := &MutationResponse{Success: true, Results: make([]Result, 0, len(req.Records))}
	for _, r := range req.Records {
		rec := r.Clone()
		id := m.nextID
		m.nextID++
		rec[FieldID] = id
		rec[FieldCreatedOn] = stamp
		rec[FieldModifiedOn] = stamp
		m.table(table)[id] = rec
		resp.Results = append(resp.Results, Result{Success: true, Data: rec.Clone()})
	}
	return resp, nil
}

func (m *MemoryClient) UpdateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := m.now().UTC().Format(time.RFC3339)
	resp := &MutationResponse{Success: true, Results: make([]Result, 0, len(req.Records))}
	for _, r := range req.Records {
		id, _ := IntValue(r[FieldID])
		existing, ok := m.tables[table][id]
		if !ok {
			resp.Results = append(resp.Results, Result{Success: false, Message: "Record not found"})
			continue
		}
		for k, v := range r {
			existing[k] = v
		}
		existing[FieldID] = id
		existing[FieldModifiedOn] = stamp
		resp.Results = append(resp.Results, Result{Success: true, Data: existing.Clone()})
	}
	return resp, nil
}

func (m *MemoryClient) DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*MutationResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	resp := &MutationResponse{Success: true, Results: make([]Result, 0, len(req.RecordIDs))}
	for _, id := range req.RecordIDs {
		if _, ok := m.tables[table][id]; !ok {
			resp.Results = append(resp.Results, Result{Success: false, Message: "Record not found"})
			continue
		}
		delete(m.tables[table], id)
		resp.Results = append(resp.Results, Result{Success: true})
	}
	return resp, nil
}
