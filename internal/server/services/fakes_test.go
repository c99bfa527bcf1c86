package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/logging"
	"github.com/dmitrijs2005/projectmanager/internal/server/auth"
	"github.com/dmitrijs2005/projectmanager/internal/server/config"
	"github.com/dmitrijs2005/projectmanager/internal/server/ephemeral"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/steps"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// --- in-memory repositories ---

type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]models.User
	tokens   map[string]models.RefreshToken
	projects map[string]models.Project
	steps    map[string]models.Step
	tasks    map[string]models.Task

	// failures forces the named operation to return the error.
	failures map[string]error
	// hooks run once, outside the lock, right after the named operation
	// returns its result. Tests use them to interleave a second request.
	hooks map[string]func()
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.User{},
		tokens:   map[string]models.RefreshToken{},
		projects: map[string]models.Project{},
		steps:    map[string]models.Step{},
		tasks:    map[string]models.Task{},
		failures: map[string]error{},
		hooks:    map[string]func(){},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memStore) fail(op string) error {
	return m.failures[op]
}

func (m *memStore) onceAfter(op string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[op] = fn
}

func (m *memStore) runHook(op string) {
	m.mu.Lock()
	fn := m.hooks[op]
	delete(m.hooks, op)
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeRepos struct{ m *memStore }

func (f *fakeRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepos) Users(dbx.DBTX) users.Repository             { return fakeUsers{f.m} }
func (f *fakeRepos) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return fakeRefreshTokens{f.m}
}
func (f *fakeRepos) Projects(dbx.DBTX) projects.Repository { return fakeProjects{f.m} }
func (f *fakeRepos) Steps(dbx.DBTX) steps.Repository       { return fakeSteps{f.m} }
func (f *fakeRepos) Tasks(dbx.DBTX) tasks.Repository       { return fakeTasks{f.m} }

type fakeUsers struct{ m *memStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("users.Create"); err != nil {
		return err
	}
	for _, other := range r.m.users {
		if other.Email == u.Email {
			return fmt.Errorf("%w: email already exists", common.ErrorBadRequest)
		}
	}
	if u.ID == "" {
		u.ID = r.m.nextID("user-")
	}
	r.m.users[u.ID] = *u
	return nil
}

func (r fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	defer r.m.runHook("users.FindByID")
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.Deleted {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	defer r.m.runHook("users.FindByEmail")
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email && !u.Deleted {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	defer r.m.runHook("users.ExistsByEmail")
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUsers) modify(id string, fn func(*models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.users[id]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	fn(&cur)
	r.m.users[id] = cur
	return nil
}

func (r fakeUsers) UpdateName(_ context.Context, id, name string, now time.Time) error {
	return r.modify(id, func(u *models.User) { u.Name, u.UpdatedAt = name, now })
}

func (r fakeUsers) SetPasswordHash(_ context.Context, id, hash string, now time.Time) error {
	return r.modify(id, func(u *models.User) { u.PasswordHash, u.UpdatedAt = hash, now })
}

func (r fakeUsers) MarkVerified(_ context.Context, id string, now time.Time) error {
	return r.modify(id, func(u *models.User) { u.EmailVerified, u.UpdatedAt = true, now })
}

func (r fakeUsers) SoftDelete(_ context.Context, id string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.Deleted {
		return common.ErrorNotFound
	}
	u.Deleted, u.UpdatedAt = true, now
	r.m.users[id] = u
	return nil
}

func (r fakeUsers) List(_ context.Context, f models.UserFilter) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, k := range sortedKeys(r.m.users) {
		u := r.m.users[k]
		if u.Deleted || !strings.Contains(u.Name, f.Name) || !strings.Contains(u.Email, f.Email) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.EmailVerified != nil && u.EmailVerified != *f.EmailVerified {
			continue
		}
		out = append(out, &u)
	}
	return out, nil
}

func (r fakeUsers) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.users)), nil
}

type fakeRefreshTokens struct{ m *memStore }

func (r fakeRefreshTokens) Create(_ context.Context, t *models.RefreshToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("refresh.Create"); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = r.m.nextID("rt-")
	}
	r.m.tokens[t.Token] = *t
	return nil
}

func (r fakeRefreshTokens) RevokeLive(_ context.Context, token string, now time.Time) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[token]
	if !ok || !t.Live(now) {
		return "", common.ErrorNotFound
	}
	t.Revoked = true
	r.m.tokens[token] = t
	return t.UserID, nil
}

func (r fakeRefreshTokens) Revoke(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tokens[token]
	if !ok {
		return common.ErrorNotFound
	}
	t.Revoked = true
	r.m.tokens[token] = t
	return nil
}

type fakeProjects struct{ m *memStore }

func cloneProject(p models.Project) *models.Project {
	p.MemberIDs = append([]string(nil), p.MemberIDs...)
	return &p
}

func (r fakeProjects) Create(_ context.Context, p *models.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p.ID == "" {
		p.ID = r.m.nextID("project-")
	}
	r.m.projects[p.ID] = *cloneProject(*p)
	return nil
}

func (r fakeProjects) FindByID(_ context.Context, id string) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.projects[id]
	if !ok || p.Deleted {
		return nil, common.ErrorNotFound
	}
	return cloneProject(p), nil
}

func (r fakeProjects) Update(_ context.Context, p *models.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.projects[p.ID]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	cur.Name, cur.Description, cur.UpdatedAt = p.Name, p.Description, p.UpdatedAt
	r.m.projects[p.ID] = cur
	return nil
}

func (r fakeProjects) SoftDelete(_ context.Context, id string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.projects[id]
	if !ok || p.Deleted {
		return common.ErrorNotFound
	}
	p.Deleted, p.UpdatedAt = true, now
	r.m.projects[id] = p
	return nil
}

func (r fakeProjects) AddMember(_ context.Context, projectID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := r.m.projects[projectID]
	if !p.HasMember(userID) {
		p.MemberIDs = append(p.MemberIDs, userID)
	}
	r.m.projects[projectID] = p
	return nil
}

func (r fakeProjects) RemoveMember(_ context.Context, projectID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := r.m.projects[projectID]
	var kept []string
	for _, id := range p.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.MemberIDs = kept
	r.m.projects[projectID] = p
	return nil
}

func (r fakeProjects) List(_ context.Context, viewerID string, f models.ProjectFilter) ([]*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Project
	for _, k := range sortedKeys(r.m.projects) {
		p := r.m.projects[k]
		if p.Deleted || !p.HasMember(viewerID) || !strings.Contains(p.Name, f.Name) {
			continue
		}
		if f.MemberID != "" && !p.HasMember(f.MemberID) {
			continue
		}
		out = append(out, cloneProject(p))
	}
	return out, nil
}

type fakeSteps struct{ m *memStore }

func (r fakeSteps) Create(_ context.Context, s *models.Step) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s.ID == "" {
		s.ID = r.m.nextID("step-")
	}
	r.m.steps[s.ID] = *s
	return nil
}

func (r fakeSteps) FindByID(_ context.Context, id string) (*models.Step, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.steps[id]
	if !ok || s.Deleted {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r fakeSteps) Update(_ context.Context, s *models.Step) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.steps[s.ID]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	r.m.steps[s.ID] = *s
	return nil
}

func (r fakeSteps) SoftDelete(_ context.Context, id string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.steps[id]
	if !ok || s.Deleted {
		return common.ErrorNotFound
	}
	s.Deleted, s.UpdatedAt = true, now
	r.m.steps[id] = s
	return nil
}

func (r fakeSteps) ListByProject(_ context.Context, projectID string, f models.StepFilter) ([]*models.Step, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Step
	for _, k := range sortedKeys(r.m.steps) {
		s := r.m.steps[k]
		if !s.Deleted && s.ProjectID == projectID && strings.Contains(s.Name, f.Name) {
			out = append(out, &s)
		}
	}
	return out, nil
}

type fakeTasks struct{ m *memStore }

func (r fakeTasks) Create(_ context.Context, t *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t.ID == "" {
		t.ID = r.m.nextID("task-")
	}
	r.m.tasks[t.ID] = *t
	return nil
}

func (r fakeTasks) FindByID(_ context.Context, id string) (*models.Task, error) {
	defer r.m.runHook("tasks.FindByID")
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok || t.Deleted {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r fakeTasks) Update(_ context.Context, t *models.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.tasks[t.ID]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	cur.Title, cur.Description, cur.AssigneeID, cur.UpdatedAt = t.Title, t.Description, t.AssigneeID, t.UpdatedAt
	r.m.tasks[t.ID] = cur
	return nil
}

func (r fakeTasks) SetStatus(_ context.Context, id string, from, to models.TaskStatus, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.tasks[id]
	if !ok || cur.Deleted || cur.Status != from {
		return common.ErrorNotFound
	}
	cur.Status, cur.UpdatedAt = to, now
	r.m.tasks[id] = cur
	return nil
}

func (r fakeTasks) SoftDelete(_ context.Context, id string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok || t.Deleted {
		return common.ErrorNotFound
	}
	t.Deleted, t.UpdatedAt = true, now
	r.m.tasks[id] = t
	return nil
}

func (r fakeTasks) ListByProject(_ context.Context, projectID string, f models.TaskFilter) ([]*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Task
	for _, k := range sortedKeys(r.m.tasks) {
		t := r.m.tasks[k]
		if t.Deleted || r.m.steps[t.StepID].ProjectID != projectID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}

// --- notifier ---

type sentEmail struct {
	kind, to, token, subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *fakeNotifier) record(e sentEmail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return errors.Join(common.ErrDeliveryFailure, n.err)
	}
	n.sent = append(n.sent, e)
	return nil
}

func (n *fakeNotifier) SendVerification(_ context.Context, to, token, _ string) error {
	return n.record(sentEmail{kind: "verify", to: to, token: token})
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, token, _ string) error {
	return n.record(sentEmail{kind: "reset", to: to, token: token})
}

func (n *fakeNotifier) SendTaskAssignment(_ context.Context, to, title, project string) error {
	return n.record(sentEmail{kind: "assign", to: to, subject: title + "@" + project})
}

func (n *fakeNotifier) last(t *testing.T, kind string) sentEmail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i]
		}
	}
	t.Fatalf("no %q email sent", kind)
	return sentEmail{}
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.sent {
		if e.kind == kind {
			c++
		}
	}
	return c
}

// --- clock and database ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTxDB returns a real database handle so dbx.WithTx can begin and commit.
// The fakes never touch it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testEnv wires every service against one in-memory store.
type testEnv struct {
	store    *memStore
	clock    *testClock
	notifier *fakeNotifier
	tokens   *ephemeral.MemoryStore
	codec    *auth.TokenCodec

	auth     *AuthService
	users    *UserService
	projects *ProjectService
	steps    *StepService
	tasks    *TaskService
}

const (
	testRefreshValidity = 7 * 24 * time.Hour
	testPassword        = "s3cret-pass"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{store: newMemStore(), clock: newTestClock(), notifier: &fakeNotifier{}}
	e.tokens = ephemeral.NewMemoryStore(time.Hour).WithClock(e.clock.Now)
	e.codec = auth.NewTokenCodec([]byte("test-secret"), 15*time.Minute).WithClock(e.clock.Now)

	d := Deps{DB: newTxDB(t), Repos: &fakeRepos{m: e.store}, Logger: logging.Nop{}, Now: e.clock.Now}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	cfg := &config.Config{RefreshTokenValidityDuration: testRefreshValidity}

	e.auth = NewAuthService(d, e.codec, hasher, e.tokens, e.notifier, cfg)
	e.users = NewUserService(d, hasher, e.tokens, e.notifier)
	e.projects = NewProjectService(d)
	e.steps = NewStepService(d)
	e.tasks = NewTaskService(d, e.notifier)
	return e
}

// verifiedUser registers and verifies an account, returning its principal.
func (e *testEnv) verifiedUser(t *testing.T, email string) models.Principal {
	t.Helper()
	ctx := context.Background()
	u, err := e.users.Register(ctx, strings.Split(email, "@")[0], email, testPassword, "http://localhost")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if _, err := e.users.VerifyEmail(ctx, e.notifier.last(t, "verify").token); err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
	return models.Principal{UserID: u.ID, Role: u.Role}
}
