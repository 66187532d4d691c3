package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmgilman/go/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-projectclocks/cache"
	"github.com/goliatone/go-projectclocks/pkg/testsupport"
	"github.com/goliatone/go-projectclocks/projectclocks"
	"github.com/goliatone/go-projectclocks/store"
)

type memoryStores struct {
	clients  *testsupport.MemoryStore[int, projectclocks.Client]
	users    *testsupport.MemoryStore[int, projectclocks.User]
	tasks    *testsupport.MemoryStore[int, projectclocks.Task]
	entries  *testsupport.MemoryStore[int64, projectclocks.UserTimeEntry]
	scanners []interface{ Calls(op string) int }
	Stores
}

func newMemoryStores() *memoryStores {
	m := &memoryStores{
		clients: testsupport.NewMemoryStore(projectclocks.ClientPK, func(e *projectclocks.Client, id int) { e.ID = id }),
		users:   testsupport.NewMemoryStore(projectclocks.UserPK, func(e *projectclocks.User, id int) { e.ID = id }),
		tasks:   testsupport.NewMemoryStore(projectclocks.TaskPK, func(e *projectclocks.Task, id int) { e.ID = id }),
		entries: testsupport.NewMemoryStore(projectclocks.UserTimeEntryPK, func(e *projectclocks.UserTimeEntry, id int64) { e.ID = id }),
	}

	groups := testsupport.NewMemoryStore(projectclocks.GroupPK, func(e *projectclocks.Group, id int) { e.ID = id })
	invoices := testsupport.NewMemoryStore(projectclocks.InvoicePK, func(e *projectclocks.Invoice, id int) { e.ID = id })
	projects := testsupport.NewMemoryStore(projectclocks.ProjectPK, func(e *projectclocks.Project, id int) { e.ID = id })
	reports := testsupport.NewMemoryStore(projectclocks.ReportConfigurationPK, func(e *projectclocks.ReportConfiguration, id int) { e.ID = id })
	roles := testsupport.NewMemoryStore(projectclocks.RolePK, func(e *projectclocks.Role, id int) { e.ID = id })
	timesheets := testsupport.NewMemoryStore(projectclocks.TimeSheetPK, func(e *projectclocks.TimeSheet, id int) { e.ID = id })
	userProjects := testsupport.NewMemoryStore(projectclocks.UserProjectPK, func(e *projectclocks.UserProject, id int) { e.ID = id })

	m.Stores = Stores{
		Clients:              m.clients,
		Groups:               groups,
		Invoices:             invoices,
		Projects:             projects,
		ReportConfigurations: reports,
		Roles:                roles,
		Tasks:                m.tasks,
		TimeSheets:           timesheets,
		Users:                m.users,
		UserProjects:         userProjects,
		UserTimeEntries:      m.entries,
	}
	m.scanners = []interface{ Calls(op string) int }{
		m.clients, groups, invoices, projects, reports, roles, m.tasks, timesheets, m.users, userProjects, m.entries,
	}
	return m
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(newMemoryStores().Stores, Settings{})
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}

	want := []string{
		projectclocks.ClientsTable,
		projectclocks.GroupsTable,
		projectclocks.InvoicesTable,
		projectclocks.ProjectsTable,
		projectclocks.ReportConfigurationsTable,
		projectclocks.RolesTable,
		projectclocks.TasksTable,
		projectclocks.TimeSheetsTable,
		projectclocks.UsersTable,
		projectclocks.UserProjectsTable,
		projectclocks.UserTimeEntriesTable,
	}
	repos := c.repositories()
	if len(repos) != len(want) {
		t.Fatalf("repositories = %d, want %d", len(repos), len(want))
	}
	for i, repo := range repos {
		if repo.Name() != want[i] {
			t.Errorf("repository %d name = %q, want %q", i, repo.Name(), want[i])
		}
	}
}

func TestNewContainer_InvalidQueryCache(t *testing.T) {
	_, err := NewContainer(newMemoryStores().Stores, Settings{QueryCache: &cache.Config{}})
	if err == nil {
		t.Fatal("NewContainer() expected error for zero query cache config")
	}
	if errors.GetCode(err) != errors.CodeInvalidConfig {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.CodeInvalidConfig)
	}
}

func TestContainer_Warm(t *testing.T) {
	m := newMemoryStores()
	m.clients.Seed(projectclocks.Client{GroupID: 1, Name: "Acme"}, projectclocks.Client{GroupID: 1, Name: "Globex"})
	m.tasks.Seed(projectclocks.Task{GroupID: 1, Name: "Design"})

	c, err := NewContainer(m.Stores, Settings{WarmConcurrency: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("second Warm() error = %v", err)
	}

	for i, s := range m.scanners {
		if n := s.Calls(testsupport.OpScanAll); n != 1 {
			t.Errorf("store %d ScanAll calls = %d, want 1", i, n)
		}
	}
	if c.Clients.Len() != 2 {
		t.Errorf("Clients.Len() = %d, want 2", c.Clients.Len())
	}
	if c.Tasks.Len() != 1 {
		t.Errorf("Tasks.Len() = %d, want 1", c.Tasks.Len())
	}
}

func TestContainer_WarmAttemptsEveryTable(t *testing.T) {
	m := newMemoryStores()
	m.clients.Seed(projectclocks.Client{GroupID: 1, Name: "Acme"})
	m.users.FailOn(testsupport.OpScanAll, errors.New(errors.CodeDatabase, "users table locked"))

	c, err := NewContainer(m.Stores, Settings{})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := c.Warm(ctx); err == nil {
		t.Fatal("Warm() expected error")
	}
	if c.Clients.Len() != 1 {
		t.Errorf("Clients.Len() = %d, want 1", c.Clients.Len())
	}

	m.users.FailOn(testsupport.OpScanAll, nil)
	m.users.Seed(projectclocks.User{Login: "ana", GroupID: 1})
	all, err := c.Users.RetrieveAll(ctx)
	if err != nil {
		t.Fatalf("RetrieveAll() after recovery error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("users = %d, want 1", len(all))
	}
}

func TestContainer_Breaker(t *testing.T) {
	m := newMemoryStores()
	m.tasks.FailOn(testsupport.OpInsert, errors.New(errors.CodeDatabase, "disk full"))

	core, logs := observer.New(zap.WarnLevel)
	c, err := NewContainer(m.Stores, Settings{
		Logger: zap.New(core),
		Breaker: &store.BreakerConfig{
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Tasks.Create(ctx, &projectclocks.Task{GroupID: 1, Name: "Design"}); err == nil {
			t.Fatalf("create %d expected error", i)
		}
	}

	_, err = c.Tasks.Create(ctx, &projectclocks.Task{GroupID: 1, Name: "Design"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Create() error = %v, want open breaker", err)
	}
	if n := m.tasks.Calls(testsupport.OpInsert); n != 2 {
		t.Errorf("Insert calls = %d, want 2", n)
	}

	// other tables have their own breaker
	if _, err := c.Clients.Create(ctx, &projectclocks.Client{GroupID: 1, Name: "Acme"}); err != nil {
		t.Errorf("Clients.Create() error = %v", err)
	}

	changes := logs.FilterMessage("store circuit breaker changed state").All()
	if len(changes) != 1 {
		t.Fatalf("state change logs = %d, want 1", len(changes))
	}
	if got := changes[0].ContextMap()["repository"]; got != projectclocks.TasksTable {
		t.Errorf("repository field = %v, want %s", got, projectclocks.TasksTable)
	}
}

func TestContainer_QueryCache(t *testing.T) {
	m := newMemoryStores()
	m.users.Seed(
		projectclocks.User{Login: "ana", GroupID: 1},
		projectclocks.User{Login: "bo", GroupID: 2},
	)

	qc := cache.DefaultConfig()
	qc.TTL = time.Minute
	c, err := NewContainer(m.Stores, Settings{QueryCache: &qc})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		users, err := c.Users.RetrieveByGroup(ctx, 1)
		if err != nil {
			t.Fatalf("RetrieveByGroup() error = %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("users = %d, want 1", len(users))
		}
	}
	if n := m.users.Calls(testsupport.OpScanBy); n != 1 {
		t.Errorf("ScanBy calls = %d, want 1", n)
	}
}

func TestContainer_Mount(t *testing.T) {
	m := newMemoryStores()
	m.entries.Seed(projectclocks.UserTimeEntry{UserID: 3, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})

	c, err := NewContainer(m.Stores, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	c.Mount(r)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/clients", http.StatusOK},
		{"/api/report-configurations", http.StatusOK},
		{"/api/user-time-entries/1", http.StatusOK},
		{"/api/user-time-entries/by-user/3", http.StatusOK},
		{"/api/user-time-entries/by-timesheet/3", http.StatusOK},
		{"/api/groups/1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.target, "/api/"), func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.want)
			}
		})
	}
}
