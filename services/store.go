// ABOUTME: Generic CRUD plumbing shared by every entity service
// ABOUTME: Turns remote responses into typed records or RemoteError values
package services

import (
	"context"
	"strings"
	"time"

	"github.com/harperreed/crmdesk/apper"
	"go.uber.org/zap"
)

// DefaultPageSize caps GetAll reads.
const DefaultPageSize = 100

// Options carries the ambient dependencies of a service.
type Options struct {
	Logger   *zap.Logger
	PageSize int
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) stamp() string {
	return o.Now().UTC().Format(time.RFC3339)
}

// ListOptions narrows a GetAll call.
type ListOptions struct {
	// Search matches any of the entity's search columns, case-insensitively.
	Search string
	// Where adds exact-match conditions.
	Where []apper.Condition
}

type store[T any] struct {
	client   apper.Client
	table    string
	entity   string
	fields   []apper.FieldSpec
	search   []string
	orderBy  []apper.OrderBy
	decode   func(apper.Record) T
	logger   *zap.Logger
	pageSize int
}

func (s *store[T]) query(opts ListOptions) apper.Query {
	q := apper.Query{
		Fields:  s.fields,
		Where:   opts.Where,
		OrderBy: s.orderBy,
		Paging:  apper.Paging{Limit: s.pageSize},
	}
	if term := strings.TrimSpace(opts.Search); term != "" && len(s.search) > 0 {
		group := apper.WhereGroup{Operator: "OR"}
		for _, f := range s.search {
			group.Conditions = append(group.Conditions, apper.Condition{Field: f, Operator: apper.OpContains, Values: []any{term}})
		}
		q.WhereGroups = []apper.WhereGroup{group}
	}
	return q
}

func (s *store[T]) fetch(ctx context.Context, q apper.Query) (*apper.ListResponse, error) {
	resp, err := s.client.FetchRecords(ctx, s.table, q)
	if err != nil {
		s.logger.Error("failed to fetch records", zap.String("table", s.table), zap.Error(err))
		return nil, &RemoteError{Op: "fetch", Entity: s.entity, Kind: KindTransport, Err: err}
	}
	if !resp.Success {
		s.logger.Error("backend refused fetch", zap.String("table", s.table), zap.String("message", resp.Message))
		return nil, &RemoteError{Op: "fetch", Entity: s.entity, Kind: KindRejected, Message: resp.Message}
	}
	return resp, nil
}

// list fetches one page. It never returns a nil slice, so callers can
// render even on error.
func (s *store[T]) list(ctx context.Context, opts ListOptions) ([]T, error) {
	resp, err := s.fetch(ctx, s.query(opts))
	if err != nil {
		return []T{}, err
	}
	out := make([]T, 0, len(resp.Data))
	for _, rec := range resp.Data {
		out = append(out, s.decode(rec))
	}
	return out, nil
}

// listAll pages through every match. It stops on an empty or short page, or
// once the reported total is reached.
func (s *store[T]) listAll(ctx context.Context, opts ListOptions) ([]T, error) {
	q := s.query(opts)
	out := []T{}
	for {
		resp, err := s.fetch(ctx, q)
		if err != nil {
			return []T{}, err
		}
		for _, rec := range resp.Data {
			out = append(out, s.decode(rec))
		}
		n := len(resp.Data)
		if n == 0 || n < q.Paging.Limit || (resp.Total > 0 && len(out) >= resp.Total) {
			return out, nil
		}
		q.Paging.Offset += n
	}
}

func (s *store[T]) get(ctx context.Context, id int) (T, error) {
	var zero T
	resp, err := s.client.GetRecordByID(ctx, s.table, id, apper.Query{Fields: s.fields})
	if err != nil {
		s.logger.Error("failed to fetch record", zap.String("table", s.table), zap.Int("id", id), zap.Error(err))
		return zero, &RemoteError{Op: "fetch", Entity: s.entity, Kind: KindTransport, Err: err}
	}
	if !resp.Success {
		return zero, &RemoteError{Op: "fetch", Entity: s.entity, Kind: KindRejected, Message: resp.Message}
	}
	if resp.Data == nil {
		return zero, &NotFoundError{Entity: s.entity, ID: id}
	}
	return s.decode(resp.Data), nil
}

// firstRowFailure returns the message of the first failed row, if any.
func firstRowFailure(results []apper.Result) (string, bool) {
	for _, r := range results {
		if r.Success {
			continue
		}
		parts := make([]string, 0, len(r.Errors)+1)
		if r.Message != "" {
			parts = append(parts, r.Message)
		}
		for _, fe := range r.Errors {
			parts = append(parts, fe.FieldLabel+": "+fe.Message)
		}
		return strings.Join(parts, "; "), true
	}
	return "", false
}

func (s *store[T]) mutation(op string, id int, resp *apper.MutationResponse, err error) (apper.Record, error) {
	if err != nil {
		s.logger.Error("failed to "+op+" record", zap.String("table", s.table), zap.Int("id", id), zap.Error(err))
		return nil, &RemoteError{Op: op, Entity: s.entity, Kind: KindTransport, Err: err}
	}
	if !resp.Success {
		s.logger.Error("backend refused "+op, zap.String("table", s.table), zap.Int("id", id), zap.String("message", resp.Message))
		return nil, &RemoteError{Op: op, Entity: s.entity, Kind: KindRejected, Message: resp.Message}
	}
	if msg, failed := firstRowFailure(resp.Results); failed {
		if msg == "" {
			msg = "Failed to " + op + " " + s.entity
		}
		s.logger.Warn("row "+op+" failed", zap.String("table", s.table), zap.Int("id", id), zap.String("message", msg))
		return nil, &RemoteError{Op: op, Entity: s.entity, Kind: KindRow, Message: msg}
	}
	if len(resp.Results) == 0 {
		return nil, &RemoteError{Op: op, Entity: s.entity, Kind: KindRow, Message: "Failed to " + op + " " + s.entity}
	}
	return resp.Results[0].Data, nil
}

func (s *store[T]) create(ctx context.Context, rec apper.Record) (T, error) {
	var zero T
	resp, err := s.client.CreateRecord(ctx, s.table, apper.RecordsRequest{Records: []apper.Record{rec}})
	data, err := s.mutation("create", 0, resp, err)
	if err != nil {
		return zero, err
	}
	return s.decode(data), nil
}

func (s *store[T]) update(ctx context.Context, id int, rec apper.Record) (T, error) {
	var zero T
	rec = rec.Clone()
	rec[apper.FieldID] = id
	resp, err := s.client.UpdateRecord(ctx, s.table, apper.RecordsRequest{Records: []apper.Record{rec}})
	data, err := s.mutation("update", id, resp, err)
	if err != nil {
		return zero, err
	}
	return s.decode(data), nil
}

func (s *store[T]) delete(ctx context.Context, id int) error {
	resp, err := s.client.DeleteRecord(ctx, s.table, apper.DeleteRequest{RecordIDs: []int{id}})
	_, err = s.mutation("delete", id, resp, err)
	if err != nil {
		return err
	}
	s.logger.Info("record deleted", zap.String("table", s.table), zap.Int("id", id))
	return nil
}
