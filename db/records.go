// ABOUTME: SQLite-backed implementation of the remote record client
// ABOUTME: Applies the same query, projection and lookup expansion rules as the hosted backend
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/crmdesk/apper"
	"go.uber.org/zap"
)

const notFoundMessage = "Record not found"

// RecordStore serves apper.Client calls from the records table.
type RecordStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordStore wraps an opened database.
func NewRecordStore(db *sql.DB, logger *zap.Logger) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore{db: db, logger: logger.Named("sqlite"), now: time.Now}
}

func (s *RecordStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// row decodes one stored record, restoring the system columns.
func row(id int, fields []byte, createdOn, modifiedOn string) (apper.Record, error) {
	rec := apper.Record{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
		}
	}
	rec[apper.FieldID] = id
	rec[apper.FieldCreatedOn] = createdOn
	rec[apper.FieldModifiedOn] = modifiedOn
	return rec, nil
}

// encode strips the system columns and serializes the rest.
func encode(rec apper.Record) ([]byte, error) {
	fields := rec.Clone()
	delete(fields, apper.FieldID)
	delete(fields, apper.FieldCreatedOn)
	delete(fields, apper.FieldModifiedOn)
	return json.Marshal(fields)
}

func (s *RecordStore) load(ctx context.Context, table string) ([]apper.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields, created_on, modified_on
		FROM records
		WHERE table_name = ?
		ORDER BY id
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []apper.Record
	for rows.Next() {
		var (
			id                    int
			fields                []byte
			createdOn, modifiedOn string
		)
		if err := rows.Scan(&id, &fields, &createdOn, &modifiedOn); err != nil {
			return nil, err
		}
		rec, err := row(id, fields, createdOn, modifiedOn)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *RecordStore) get(ctx context.Context, table string, id int) (apper.Record, error) {
	var (
		fields                []byte
		createdOn, modifiedOn string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fields, created_on, modified_on
		FROM records
		WHERE table_name = ? AND id = ?
	`, table, id).Scan(&fields, &createdOn, &modifiedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row(id, fields, createdOn, modifiedOn)
}

// resolver expands lookups with point reads. It must not run while a
// result set is open because the pool holds a single connection.
func (s *RecordStore) resolver(ctx context.Context) apper.Resolver {
	return func(table string, id int) (apper.Record, bool) {
		rec, err := s.get(ctx, table, id)
		if err != nil {
			s.logger.Warn("failed to resolve lookup", zap.String("table", table), zap.Int("id", id), zap.Error(err))
			return nil, false
		}
		return rec, rec != nil
	}
}

func (s *RecordStore) FetchRecords(ctx context.Context, table string, q apper.Query) (*apper.ListResponse, error) {
	all, err := s.load(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	page, total := apper.Apply(all, q)
	resolve := s.resolver(ctx)
	data := make([]apper.Record, 0, len(page))
	for _, rec := range page {
		data = append(data, apper.Project(rec, q.Fields, resolve))
	}
	return &apper.ListResponse{Success: true, Data: data, Total: total}, nil
}

func (s *RecordStore) GetRecordByID(ctx context.Context, table string, id int, q apper.Query) (*apper.RecordResponse, error) {
	rec, err := s.get(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", table, id, err)
	}
	if rec == nil {
		return &apper.RecordResponse{Success: true}, nil
	}
	return &apper.RecordResponse{Success: true, Data: apper.Project(rec, q.Fields, s.resolver(ctx))}, nil
}

func (s *RecordStore) CreateRecord(ctx context.Context, table string, req apper.RecordsRequest) (*apper.MutationResponse, error) {
	stamp := s.stamp()
	resp := &apper.MutationResponse{Success: true, Results: make([]apper.Result, 0, len(req.Records))}
	for _, rec := range req.Records {
		fields, err := encode(rec)
		if err != nil {
			resp.Results = append(resp.Results, apper.Result{Success: false, Message: err.Error()})
			continue
		}
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO records (table_name, fields, created_on, modified_on)
			VALUES (?, ?, ?, ?)
		`, table, fields, stamp, stamp)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s record: %w", table, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		saved, err := row(int(id), fields, stamp, stamp)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, apper.Result{Success: true, Data: saved})
	}
	return resp, nil
}

// UpdateRecord merges the given fields into each stored row.
func (s *RecordStore) UpdateRecord(ctx context.Context, table string, req apper.RecordsRequest) (*apper.MutationResponse, error) {
	stamp := s.stamp()
	resp := &apper.MutationResponse{Success: true, Results: make([]apper.Result, 0, len(req.Records))}
	for _, patch := range req.Records {
		id, _ := apper.IntValue(patch[apper.FieldID])
		existing, err := s.get(ctx, table, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update %s %d: %w", table, id, err)
		}
		if existing == nil {
			resp.Results = append(resp.Results, apper.Result{Success: false, Message: notFoundMessage})
			continue
		}
		for k, v := range patch {
			existing[k] = v
		}
		fields, err := encode(existing)
		if err != nil {
			resp.Results = append(resp.Results, apper.Result{Success: false, Message: err.Error()})
			continue
		}
		if _, err := s.db.ExecContext(ctx, `
			UPDATE records SET fields = ?, modified_on = ?
			WHERE table_name = ? AND id = ?
		`, fields, stamp, table, id); err != nil {
			return nil, fmt.Errorf("failed to update %s %d: %w", table, id, err)
		}
		existing[apper.FieldID] = id
		existing[apper.FieldModifiedOn] = stamp
		resp.Results = append(resp.Results, apper.Result{Success: true, Data: existing})
	}
	return resp, nil
}

func (s *RecordStore) DeleteRecord(ctx context.Context, table string, req apper.DeleteRequest) (*apper.MutationResponse, error) {
	resp := &apper.MutationResponse{Success: true, Results: make([]apper.Result, 0, len(req.RecordIDs))}
	for _, id := range req.RecordIDs {
		res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE table_name = ? AND id = ?`, table, id)
		if err != nil {
			return nil, fmt.Errorf("failed to delete %s %d: %w", table, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			resp.Results = append(resp.Results, apper.Result{Success: false, Message: notFoundMessage})
			continue
		}
		resp.Results = append(resp.Results, apper.Result{Success: true})
	}
	return resp, nil
}

// Count returns the number of rows stored for table.
func (s *RecordStore) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE table_name = ?`, table).Scan(&n)
	return n, err
}
