// Package di wires one cached repository per entity type. A process builds
// a single Container and shares it; each repository owns its mirror for the
// lifetime of the container.
package di

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"
	"github.com/sourcegraph/conc/pool"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-projectclocks/cache"
	"github.com/goliatone/go-projectclocks/internal/httpapi"
	"github.com/goliatone/go-projectclocks/projectclocks"
	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
	"github.com/goliatone/go-projectclocks/store/bunstore"
)

// DefaultWarmConcurrency bounds how many tables Warm loads at once.
const DefaultWarmConcurrency = 4

// Stores holds the backing store of every entity type.
type Stores struct {
	Clients              store.Store[int, projectclocks.Client]
	Groups               store.Store[int, projectclocks.Group]
	Invoices             store.Store[int, projectclocks.Invoice]
	Projects             store.Store[int, projectclocks.Project]
	ReportConfigurations store.Store[int, projectclocks.ReportConfiguration]
	Roles                store.Store[int, projectclocks.Role]
	Tasks                store.Store[int, projectclocks.Task]
	TimeSheets           store.Store[int, projectclocks.TimeSheet]
	Users                store.Store[int, projectclocks.User]
	UserProjects         store.Store[int, projectclocks.UserProject]
	UserTimeEntries      store.Store[int64, projectclocks.UserTimeEntry]
}

// BunStores returns bun backed stores for every table.
func BunStores(db bun.IDB) Stores {
	return Stores{
		Clients:              bunstore.New[int, projectclocks.Client](db),
		Groups:               bunstore.New[int, projectclocks.Group](db),
		Invoices:             bunstore.New[int, projectclocks.Invoice](db),
		Projects:             bunstore.New[int, projectclocks.Project](db),
		ReportConfigurations: bunstore.New[int, projectclocks.ReportConfiguration](db),
		Roles:                bunstore.New[int, projectclocks.Role](db),
		Tasks:                bunstore.New[int, projectclocks.Task](db),
		TimeSheets:           bunstore.New[int, projectclocks.TimeSheet](db),
		Users:                bunstore.New[int, projectclocks.User](db),
		UserProjects:         bunstore.New[int, projectclocks.UserProject](db),
		UserTimeEntries:      bunstore.New[int64, projectclocks.UserTimeEntry](db),
	}
}

// RepositoryStores returns stores that go through go-repository-bun
// repositories for every table.
func RepositoryStores(db *bun.DB) Stores {
	return Stores{
		Clients:              bunstore.FromDB(db, projectclocks.ClientPK),
		Groups:               bunstore.FromDB(db, projectclocks.GroupPK),
		Invoices:             bunstore.FromDB(db, projectclocks.InvoicePK),
		Projects:             bunstore.FromDB(db, projectclocks.ProjectPK),
		ReportConfigurations: bunstore.FromDB(db, projectclocks.ReportConfigurationPK),
		Roles:                bunstore.FromDB(db, projectclocks.RolePK),
		Tasks:                bunstore.FromDB(db, projectclocks.TaskPK),
		TimeSheets:           bunstore.FromDB(db, projectclocks.TimeSheetPK),
		Users:                bunstore.FromDB(db, projectclocks.UserPK),
		UserProjects:         bunstore.FromDB(db, projectclocks.UserProjectPK),
		UserTimeEntries:      bunstore.FromDB(db, projectclocks.UserTimeEntryPK),
	}
}

// Settings configures the repositories built by NewContainer.
type Settings struct {
	Logger   *zap.Logger
	Recorder repositorycache.Recorder

	// QueryCache enables the secondary query cache when non-nil.
	QueryCache *cache.Config

	// Breaker puts a circuit breaker in front of every store when non-nil.
	// Its Name is replaced by the table name.
	Breaker *store.BreakerConfig

	WarmConcurrency int
}

// Container holds exactly one repository per entity type.
type Container struct {
	logger          *zap.Logger
	warmConcurrency int

	Clients              *projectclocks.ClientRepository
	Groups               *projectclocks.GroupRepository
	Invoices             *projectclocks.InvoiceRepository
	Projects             *projectclocks.ProjectRepository
	ReportConfigurations *projectclocks.ReportConfigurationRepository
	Roles                *projectclocks.RoleRepository
	Tasks                *projectclocks.TaskRepository
	TimeSheets           *projectclocks.TimeSheetRepository
	Users                *projectclocks.UserRepository
	UserProjects         *projectclocks.UserProjectRepository
	UserTimeEntries      *projectclocks.UserTimeEntryRepository
}

// warmer is satisfied by every repository in the container.
type warmer interface {
	Name() string
	Warm(ctx context.Context) error
}

// NewContainer builds every repository on top of stores. Repositories
// start cold; call Warm to load them up front.
func NewContainer(stores Stores, settings Settings) (*Container, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []repositorycache.Option{repositorycache.WithLogger(logger)}
	if settings.Recorder != nil {
		opts = append(opts, repositorycache.WithRecorder(settings.Recorder))
	}
	if settings.QueryCache != nil {
		opts = append(opts, repositorycache.WithQueryCache(*settings.QueryCache))
	}

	concurrency := settings.WarmConcurrency
	if concurrency <= 0 {
		concurrency = DefaultWarmConcurrency
	}

	c := &Container{logger: logger, warmConcurrency: concurrency}
	b := builder{settings: settings, logger: logger}
	var err error

	if c.Clients, err = projectclocks.NewClientRepository(guard(b, projectclocks.ClientsTable, stores.Clients), opts...); err != nil {
		return nil, err
	}
	if c.Groups, err = projectclocks.NewGroupRepository(guard(b, projectclocks.GroupsTable, stores.Groups), opts...); err != nil {
		return nil, err
	}
	if c.Invoices, err = projectclocks.NewInvoiceRepository(guard(b, projectclocks.InvoicesTable, stores.Invoices), opts...); err != nil {
		return nil, err
	}
	if c.Projects, err = projectclocks.NewProjectRepository(guard(b, projectclocks.ProjectsTable, stores.Projects), opts...); err != nil {
		return nil, err
	}
	if c.ReportConfigurations, err = projectclocks.NewReportConfigurationRepository(guard(b, projectclocks.ReportConfigurationsTable, stores.ReportConfigurations), opts...); err != nil {
		return nil, err
	}
	if c.Roles, err = projectclocks.NewRoleRepository(guard(b, projectclocks.RolesTable, stores.Roles), opts...); err != nil {
		return nil, err
	}
	if c.Tasks, err = projectclocks.NewTaskRepository(guard(b, projectclocks.TasksTable, stores.Tasks), opts...); err != nil {
		return nil, err
	}
	if c.TimeSheets, err = projectclocks.NewTimeSheetRepository(guard(b, projectclocks.TimeSheetsTable, stores.TimeSheets), opts...); err != nil {
		return nil, err
	}
	if c.Users, err = projectclocks.NewUserRepository(guard(b, projectclocks.UsersTable, stores.Users), opts...); err != nil {
		return nil, err
	}
	if c.UserProjects, err = projectclocks.NewUserProjectRepository(guard(b, projectclocks.UserProjectsTable, stores.UserProjects), opts...); err != nil {
		return nil, err
	}
	if c.UserTimeEntries, err = projectclocks.NewUserTimeEntryRepository(guard(b, projectclocks.UserTimeEntriesTable, stores.UserTimeEntries), opts...); err != nil {
		return nil, err
	}

	return c, nil
}

type builder struct {
	settings Settings
	logger   *zap.Logger
}

func guard[K store.ID, T any](b builder, table string, s store.Store[K, T]) store.Store[K, T] {
	if b.settings.Breaker == nil {
		return s
	}
	cfg := *b.settings.Breaker
	cfg.Name = table
	next := cfg.OnStateChange
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		b.logger.Warn("store circuit breaker changed state",
			zap.String("repository", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		if next != nil {
			next(name, from, to)
		}
	}
	return store.WithBreaker(s, cfg)
}

func (c *Container) repositories() []warmer {
	return []warmer{
		c.Clients,
		c.Groups,
		c.Invoices,
		c.Projects,
		c.ReportConfigurations,
		c.Roles,
		c.Tasks,
		c.TimeSheets,
		c.Users,
		c.UserProjects,
		c.UserTimeEntries,
	}
}

// Warm loads every repository concurrently. Every table is attempted; the
// returned error joins the failures. A failed table warms lazily on its
// next use.
func (c *Container) Warm(ctx context.Context) error {
	p := pool.New().WithMaxGoroutines(c.warmConcurrency).WithContext(ctx)
	for _, repo := range c.repositories() {
		p.Go(func(ctx context.Context) error {
			return repo.Warm(ctx)
		})
	}
	if err := p.Wait(); err != nil {
		c.logger.Error("cache warm-up incomplete", zap.Error(err))
		return err
	}
	c.logger.Info("cache warm-up complete", zap.Int("repositories", len(c.repositories())))
	return nil
}

// Mount registers every repository under /api on r.
func (c *Container) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		httpapi.Mount[int](r, "/clients", c.Clients, projectclocks.ClientIndexes, c.logger)
		httpapi.Mount[int](r, "/groups", c.Groups, projectclocks.GroupIndexes, c.logger)
		httpapi.Mount[int](r, "/invoices", c.Invoices, projectclocks.InvoiceIndexes, c.logger)
		httpapi.Mount[int](r, "/projects", c.Projects, projectclocks.ProjectIndexes, c.logger)
		httpapi.Mount[int](r, "/report-configurations", c.ReportConfigurations, projectclocks.ReportConfigurationIndexes, c.logger)
		httpapi.Mount[int](r, "/roles", c.Roles, projectclocks.RoleIndexes, c.logger)
		httpapi.Mount[int](r, "/tasks", c.Tasks, projectclocks.TaskIndexes, c.logger)
		httpapi.Mount[int](r, "/timesheets", c.TimeSheets, projectclocks.TimeSheetIndexes, c.logger)
		httpapi.Mount[int](r, "/users", c.Users, projectclocks.UserIndexes, c.logger)
		httpapi.Mount[int](r, "/user-projects", c.UserProjects, projectclocks.UserProjectIndexes, c.logger)
		httpapi.Mount[int64](r, "/user-time-entries", c.UserTimeEntries, projectclocks.UserTimeEntryIndexes, c.logger)
	})
}
