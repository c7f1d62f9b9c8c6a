// ABOUTME: Generic list view: parallel load with joins, search and filters, delete and CSV export
// ABOUTME: Keeps loading, error, empty and ready states distinct so front-ends can render each
package listview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/models"
	"github.com/harperreed/crmdesk/observability"
	"github.com/harperreed/crmdesk/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State of a list view.
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

var (
	ErrUnknownRecord   = errors.New("record is not in the list")
	ErrUnknownFilter   = errors.New("unknown filter")
	ErrNothingToExport = errors.New("nothing to export")
	ErrNotLoaded       = errors.New("list is not loaded")
)

// Column of the rendered table.
type Column struct {
	Title string
	Width int
}

// Row is one rendered record.
type Row struct {
	ID    int      `json:"id"`
	Cells []string `json:"cells"`
}

// Joins holds the related entities loaded next to the primary set.
type Joins struct {
	Companies []models.Company
	Contacts  []models.Contact
}

// CompanyName resolves a company id against the joined companies.
func (j Joins) CompanyName(id int) string {
	if id == 0 {
		return ""
	}
	for _, c := range j.Companies {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// ContactsOf returns the joined contacts attached to a company.
func (j Joins) ContactsOf(companyID int) []models.Contact {
	out := []models.Contact{}
	for _, c := range j.Contacts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out
}

// Sources names the services a view joins against. Nil entries are skipped.
type Sources struct {
	Companies *services.CompanyService
	Contacts  *services.ContactService
}

// Export describes the CSV download for an entity.
type Export[T any] struct {
	// Filename is either fixed or date-stamped from the export time.
	Filename func(now time.Time) string
	Header   []string
	Row      func(rec T, j Joins) []string
}

// File is a finished export.
type File struct {
	Name  string
	Data  []byte
	Count int
}

// Spec binds a record type to how it is listed.
type Spec[T any] struct {
	// Entity is the singular display name, e.g. "Contact".
	Entity string
	// Plural is the lower-case collection name, e.g. "contacts".
	Plural  string
	Columns []Column
	ID      func(T) int
	Cells   func(rec T, j Joins) []string
	// Search returns the values the search term is matched against.
	Search func(rec T, j Joins) []string
	// Filters are exact-match predicates keyed by name, e.g. task status.
	Filters map[string]func(T) string
	// Prompt is the confirmation question asked before deleting.
	Prompt func(rec T, j Joins) string
	Export Export[T]
}

// Lister loads the primary set.
type Lister[T any] interface {
	GetAll(ctx context.Context, opts services.ListOptions) ([]T, error)
}

// Remover deletes one record, given what the view has joined.
type Remover[T any] func(ctx context.Context, rec T, j Joins) error

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// Table is the type-erased view used by front-ends.
type Table interface {
	Entity() string
	Plural() string
	Columns() []Column
	Load(ctx context.Context) error
	Retry(ctx context.Context) error
	State() State
	Err() error
	SetSearch(term string)
	Search() string
	FilterKeys() []string
	SetFilter(key, value string) error
	Rows() []Row
	Count() (shown, total int)
	Prompt(id int) (string, error)
	Delete(ctx context.Context, id int, confirm Confirm) (bool, error)
	Export() (File, error)
}

// Option configures a View.
type Option func(*options)

type options struct {
	notifier form.Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func WithNotifier(n form.Notifier) Option { return func(o *options) { o.notifier = n } }

func WithLogger(logger *zap.Logger) Option { return func(o *options) { o.logger = logger } }

func WithMetrics(m *observability.Metrics) Option { return func(o *options) { o.metrics = m } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// View is the list state for one entity.
type View[T any] struct {
	spec    Spec[T]
	lister  Lister[T]
	remove  Remover[T]
	sources Sources

	notifier form.Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time

	mu      sync.Mutex
	state   State
	err     error
	items   []T
	joins   Joins
	search  string
	filters map[string]string
}

// New builds a view in the loading state. Call Load to populate it.
func New[T any](spec Spec[T], lister Lister[T], remove Remover[T], sources Sources, opts ...Option) *View[T] {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = form.LogNotifier(o.logger)
	}
	return &View[T]{
		spec:     spec,
		lister:   lister,
		remove:   remove,
		sources:  sources,
		notifier: o.notifier,
		logger:   o.logger.Named("listview").With(zap.String("entity", spec.Plural)),
		metrics:  o.metrics,
		now:      o.now,
		state:    StateLoading,
		filters:  map[string]string{},
	}
}

func (v *View[T]) Entity() string    { return v.spec.Entity }
func (v *View[T]) Plural() string    { return v.spec.Plural }
func (v *View[T]) Columns() []Column { return v.spec.Columns }

// Load fetches the primary set and every joined source in parallel and
// waits for all of them. Any failure leaves the view in StateError.
func (v *View[T]) Load(ctx context.Context) error {
	v.mu.Lock()
	v.state = StateLoading
	v.err = nil
	v.mu.Unlock()

	var (
		items []T
		joins Joins
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = v.lister.GetAll(gctx, services.ListOptions{})
		return err
	})
	if v.sources.Companies != nil {
		g.Go(func() error {
			var err error
			joins.Companies, err = v.sources.Companies.GetAll(gctx, services.ListOptions{})
			return err
		})
	}
	if v.sources.Contacts != nil {
		g.Go(func() error {
			var err error
			joins.Contacts, err = v.sources.Contacts.GetAll(gctx, services.ListOptions{})
			return err
		})
	}
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = StateError
		v.err = err
		v.items = nil
		v.joins = Joins{}
		v.logger.Warn("failed to load list", zap.Error(err))
		v.metrics.RecordListLoad(v.spec.Plural, v.state.String())
		return fmt.Errorf("failed to load %s: %w", v.spec.Plural, err)
	}
	v.items = items
	v.joins = joins
	v.settle()
	v.logger.Debug("list loaded", zap.Int("count", len(items)))
	v.metrics.RecordListLoad(v.spec.Plural, v.state.String())
	return nil
}

// Retry reloads after an error.
func (v *View[T]) Retry(ctx context.Context) error {
	return v.Load(ctx)
}

// settle derives empty or ready from the loaded set. Caller holds mu.
func (v *View[T]) settle() {
	if len(v.items) == 0 {
		v.state = StateEmpty
		return
	}
	v.state = StateReady
}

func (v *View[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
}

func (v *View[T]) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// FilterKeys lists the exact-match filters this view supports.
func (v *View[T]) FilterKeys() []string {
	keys := make([]string, 0, len(v.spec.Filters))
	for k := range v.spec.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetFilter sets an exact-match filter. An empty value clears it.
func (v *View[T]) SetFilter(key, value string) error {
	if _, ok := v.spec.Filters[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, key)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if value == "" {
		delete(v.filters, key)
		return nil
	}
	v.filters[key] = value
	return nil
}

// Items returns the full loaded set in load order.
func (v *View[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]T(nil), v.items...)
}

// Joined returns the related entities loaded with the set.
func (v *View[T]) Joined() Joins {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.joins
}

// Filtered returns the records matching the search term and filters, in load order.
func (v *View[T]) Filtered() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered()
}

func (v *View[T]) filtered() []T {
	term := strings.ToLower(strings.TrimSpace(v.search))
	out := make([]T, 0, len(v.items))
	for _, rec := range v.items {
		if !v.passes(rec) {
			continue
		}
		if term != "" && !containsTerm(v.spec.Search(rec, v.joins), term) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (v *View[T]) passes(rec T) bool {
	for key, want := range v.filters {
		if v.spec.Filters[key](rec) != want {
			return false
		}
	}
	return true
}

func containsTerm(values []string, term string) bool {
	for _, s := range values {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Rows renders the filtered set.
func (v *View[T]) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	recs := v.filtered()
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Row{ID: v.spec.ID(rec), Cells: v.spec.Cells(rec, v.joins)})
	}
	return rows
}

// Count reports how many records are shown out of the loaded total.
func (v *View[T]) Count() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.filtered()), len(v.items)
}

// lookup finds a loaded record by id along with the joins it renders against.
func (v *View[T]) lookup(id int) (T, Joins, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, rec := range v.items {
		if v.spec.ID(rec) == id {
			return rec, v.joins, nil
		}
	}
	var zero T
	return zero, Joins{}, fmt.Errorf("%w: %s %d", ErrUnknownRecord, v.spec.Plural, id)
}

// Prompt returns the delete confirmation text for a loaded record.
func (v *View[T]) Prompt(id int) (string, error) {
	rec, joins, err := v.lookup(id)
	if err != nil {
		return "", err
	}
	return v.spec.Prompt(rec, joins), nil
}

// Delete asks for confirmation, then deletes the record through the service.
// It reports whether the record was deleted.
func (v *View[T]) Delete(ctx context.Context, id int, confirm Confirm) (bool, error) {
	rec, joins, err := v.lookup(id)
	if err != nil {
		return false, err
	}

	if confirm != nil && !confirm(v.spec.Prompt(rec, joins)) {
		return false, nil
	}

	if err := v.remove(ctx, rec, joins); err != nil {
		v.logger.Warn("failed to delete record", zap.Int("id", id), zap.Error(err))
		v.notifier.Notify(form.LevelError, "Failed to delete "+strings.ToLower(v.spec.Entity))
		return false, err
	}

	v.mu.Lock()
	kept := v.items[:0:0]
	for _, r := range v.items {
		if v.spec.ID(r) != id {
			kept = append(kept, r)
		}
	}
	v.items = kept
	v.settle()
	v.mu.Unlock()

	v.notifier.Notify(form.LevelSuccess, v.spec.Entity+" deleted successfully")
	return true, nil
}

// Export renders the full unfiltered set as CSV.
func (v *View[T]) Export() (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateLoading || v.state == StateError {
		return File{}, ErrNotLoaded
	}
	if len(v.items) == 0 {
		v.notifier.Notify(form.LevelWarning, "No "+v.spec.Plural+" to export")
		return File{}, fmt.Errorf("%w: no %s", ErrNothingToExport, v.spec.Plural)
	}

	rows := make([][]string, 0, len(v.items))
	for _, rec := range v.items {
		rows = append(rows, v.spec.Export.Row(rec, v.joins))
	}
	data := encodeCSV(v.spec.Export.Header, rows)
	v.notifier.Notify(form.LevelSuccess, fmt.Sprintf("Exported %d %s to CSV", len(v.items), v.spec.Plural))
	return File{
		Name:  v.spec.Export.Filename(v.now()),
		Data:  data,
		Count: len(v.items),
	}, nil
}
