// ABOUTME: Workspace wiring: one record client, every entity service, list views and forms
// ABOUTME: Front-ends look entities up by key and never touch services directly
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/config"
	"github.com/harperreed/crmdesk/db"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/observability"
	"github.com/harperreed/crmdesk/services"
	"go.uber.org/zap"
)

// ErrUnknownEntity is returned for keys that name no entity.
var ErrUnknownEntity = errors.New("unknown entity")

// Entity is one CRM collection as front-ends see it.
type Entity struct {
	Key   string
	Title string
	// NewTable builds an unloaded list view. Each caller gets its own
	// search and filter state.
	NewTable func() listview.Table
	// NewForm builds a closed form controller.
	NewForm func() (form.Form, error)
	// Get loads one record for display.
	Get func(ctx context.Context, id int) (any, error)
}

// Save writes values through a fresh form. A zero id creates a record,
// anything else edits that record. Fields not named in values keep their
// current or default value.
func (e *Entity) Save(ctx context.Context, id int, values map[string]string) (int, error) {
	f, err := e.NewForm()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		f.OpenNew()
	} else if err := f.OpenByID(ctx, id); err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := f.Set(k, values[k]); err != nil {
			return 0, fmt.Errorf("%s: %w", k, err)
		}
	}
	return f.Save(ctx)
}

// Options carries the ambient dependencies shared by every entity.
type Options struct {
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Notifier form.Notifier
	PageSize int
	Now      func() time.Time
}

// Workspace owns the record client and everything built on it.
type Workspace struct {
	Client    apper.Client
	Directory *apper.MemoryClient
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Mode      string

	Contacts  *services.ContactService
	Companies *services.CompanyService
	Deals     *services.DealService
	Leads     *services.LeadService
	Tasks     *services.TaskService
	SalesReps *services.SalesRepService
	Cascade   *services.CompanyCascade

	entities []*Entity
	aliases  map[string]*Entity
	closers  []func() error
}

// Open builds the record client named by cfg and the workspace on top of it.
func Open(cfg *config.Config, opts Options) (*Workspace, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageSize == 0 {
		opts.PageSize = cfg.PageSize
	}

	var (
		client  apper.Client
		closers []func() error
	)
	mode := cfg.Mode()
	switch mode {
	case config.BackendRemote:
		client = apper.NewHTTPClient(apper.HTTPConfig{
			BaseURL:   cfg.BaseURL,
			ProjectID: cfg.ProjectID,
			PublicKey: cfg.PublicKey,
			Timeout:   cfg.HTTPTimeout,
		}, opts.Logger.Named("apper"), opts.Metrics)
	case config.BackendSQLite:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
		}
		client = db.NewRecordStore(database, opts.Logger)
		closers = append(closers, database.Close)
	case config.BackendMemory:
		client = apper.NewMemoryClient()
	default:
		return nil, fmt.Errorf("unknown backend %q", mode)
	}
	opts.Logger.Info("record backend ready", zap.String("mode", mode))

	w, err := New(client, opts)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	w.Mode = mode
	w.closers = closers
	return w, nil
}

// New builds a workspace over an existing client. Sales reps always live in
// their own seeded directory.
func New(client apper.Client, opts Options) (*Workspace, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	directory, err := services.NewDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to seed sales rep directory: %w", err)
	}

	svcOpts := services.Options{Logger: opts.Logger, PageSize: opts.PageSize, Now: opts.Now}
	w := &Workspace{
		Client:    client,
		Directory: directory,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
		Mode:      "custom",
		Contacts:  services.NewContactService(client, svcOpts),
		Companies: services.NewCompanyService(client, svcOpts),
		Deals:     services.NewDealService(client, svcOpts),
		Leads:     services.NewLeadService(client, svcOpts),
		Tasks:     services.NewTaskService(client, svcOpts),
		SalesReps: services.NewSalesRepService(directory, svcOpts),
		aliases:   map[string]*Entity{},
	}
	w.Cascade = services.NewCompanyCascade(w.Companies, w.Contacts, opts.Logger)
	w.register(opts)
	return w, nil
}

func (w *Workspace) register(opts Options) {
	viewOpts := []listview.Option{listview.WithLogger(opts.Logger), listview.WithMetrics(opts.Metrics)}
	formOpts := []form.Option{form.WithLogger(opts.Logger)}
	if opts.Notifier != nil {
		viewOpts = append(viewOpts, listview.WithNotifier(opts.Notifier))
		formOpts = append(formOpts, form.WithNotifier(opts.Notifier))
	}
	if opts.Now != nil {
		viewOpts = append(viewOpts, listview.WithClock(opts.Now))
		formOpts = append(formOpts, form.WithClock(opts.Now))
	}

	w.add(&Entity{
		Key: "contacts", Title: "Contacts",
		NewTable: func() listview.Table { return listview.Contacts(w.Contacts, w.Companies, viewOpts...) },
		NewForm:  formFactory(form.ContactSchema, w.Contacts, formOpts),
		Get:      getter(w.Contacts.GetByID),
	}, "contact")
	w.add(&Entity{
		Key: "companies", Title: "Companies",
		NewTable: func() listview.Table {
			return listview.Companies(w.Companies, w.Contacts, w.Cascade, viewOpts...)
		},
		NewForm: formFactory(form.CompanySchema, w.Companies, formOpts),
		Get:     getter(w.Companies.GetByID),
	}, "company")
	w.add(&Entity{
		Key: "deals", Title: "Deals",
		NewTable: func() listview.Table { return listview.Deals(w.Deals, viewOpts...) },
		NewForm:  formFactory(form.DealSchema, w.Deals, formOpts),
		Get:      getter(w.Deals.GetByID),
	}, "deal")
	w.add(&Entity{
		Key: "leads", Title: "Leads",
		NewTable: func() listview.Table { return listview.Leads(w.Leads, viewOpts...) },
		NewForm:  formFactory(form.LeadSchema, w.Leads, formOpts),
		Get:      getter(w.Leads.GetByID),
	}, "lead")
	w.add(&Entity{
		Key: "tasks", Title: "Tasks",
		NewTable: func() listview.Table { return listview.Tasks(w.Tasks, viewOpts...) },
		NewForm:  formFactory(form.TaskSchema, w.Tasks, formOpts),
		Get:      getter(w.Tasks.GetByID),
	}, "task")
	w.add(&Entity{
		Key: "salesreps", Title: "Sales Reps",
		NewTable: func() listview.Table { return listview.SalesReps(w.SalesReps, viewOpts...) },
		NewForm:  formFactory(form.SalesRepSchema, w.SalesReps, formOpts),
		Get:      getter(w.SalesReps.GetByID),
	}, "salesrep", "sales-reps", "reps")
}

func formFactory[T any](schema form.Schema[T], svc form.Service[T], opts []form.Option) func() (form.Form, error) {
	return func() (form.Form, error) {
		return form.NewController(schema, svc, opts...)
	}
}

func getter[T any](get func(context.Context, int) (T, error)) func(context.Context, int) (any, error) {
	return func(ctx context.Context, id int) (any, error) {
		rec, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func (w *Workspace) add(e *Entity, aliases ...string) {
	w.entities = append(w.entities, e)
	w.aliases[e.Key] = e
	for _, a := range aliases {
		w.aliases[a] = e
	}
}

// Entities lists every entity in display order.
func (w *Workspace) Entities() []*Entity {
	return append([]*Entity(nil), w.entities...)
}

// Keys lists the canonical entity keys, sorted.
func (w *Workspace) Keys() []string {
	keys := make([]string, 0, len(w.entities))
	for _, e := range w.entities {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}

// Entity finds an entity by key or alias, ignoring case.
func (w *Workspace) Entity(key string) (*Entity, error) {
	e, ok := w.aliases[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownEntity, key, strings.Join(w.Keys(), ", "))
	}
	return e, nil
}

// Close releases the record backend.
func (w *Workspace) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	w.closers = nil
	return first
}
