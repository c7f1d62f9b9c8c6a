// ABOUTME: Task service over the task_c table
// ABOUTME: Lists by due date and supports exact status and priority filters
package services

import (
	"context"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

type TaskService struct {
	store *store[models.Task]
}

func NewTaskService(client apper.Client, opts Options) *TaskService {
	opts = opts.withDefaults()
	return &TaskService{
		store: &store[models.Task]{
			client:   client,
			table:    adapter.TaskTable,
			entity:   "Task",
			fields:   adapter.TaskFields,
			search:   adapter.TaskSearchFields,
			orderBy:  []apper.OrderBy{{Field: "due_date_c", Direction: apper.Asc}},
			decode:   adapter.TaskFromRecord,
			logger:   opts.Logger.Named("tasks"),
			pageSize: opts.PageSize,
		},
	}
}

// TaskFilter builds exact-match conditions; blank values are ignored.
func TaskFilter(status, priority string) []apper.Condition {
	var where []apper.Condition
	if status != "" {
		where = append(where, apper.Condition{Field: "status_c", Operator: apper.OpEqualTo, Values: []any{status}})
	}
	if priority != "" {
		where = append(where, apper.Condition{Field: "priority_c", Operator: apper.OpEqualTo, Values: []any{priority}})
	}
	return where
}

func (s *TaskService) GetAll(ctx context.Context, opts ListOptions) ([]models.Task, error) {
	return s.store.list(ctx, opts)
}

func (s *TaskService) GetByID(ctx context.Context, id int) (models.Task, error) {
	return s.store.get(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, t models.Task) (models.Task, error) {
	return s.store.create(ctx, adapter.TaskToRecord(t))
}

// Update replaces every writable field of the task.
func (s *TaskService) Update(ctx context.Context, id int, t models.Task) (models.Task, error) {
	return s.store.update(ctx, id, adapter.TaskToRecord(t))
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
