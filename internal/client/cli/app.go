// Package cli implements the interactive projectmanager client.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/projectmanager/internal/client/api"
	"github.com/dmitrijs2005/projectmanager/internal/client/config"
	"github.com/dmitrijs2005/projectmanager/internal/client/services"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Tracker is the project/step/task surface of the API client.
type Tracker interface {
	ListProjects(ctx context.Context, name string) ([]api.Project, error)
	CreateProject(ctx context.Context, name, description string) (*api.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) (*api.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) (*api.Project, error)
	ListSteps(ctx context.Context, projectID string) ([]api.Step, error)
	CreateStep(ctx context.Context, projectID, name string) (*api.Step, error)
	ListTasks(ctx context.Context, projectID string, f api.TaskFilter) ([]api.Task, error)
	CreateTask(ctx context.Context, in api.NewTask) (*api.Task, error)
	AdvanceTask(ctx context.Context, id string) (*api.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type App struct {
	config      *config.Config
	authService services.AuthService
	tracker     Tracker
	reader      *bufio.Reader
	out         io.Writer
	online      atomic.Bool
}

func NewApp(c *config.Config) *App {
	client := api.NewClient(c.ServerURL, c.RequestTimeout)
	return &App{
		config:      c,
		authService: services.NewAuthService(client),
		tracker:     client,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) {
	go a.StartStatusWatcher(ctx, a.config.HealthCheckInterval)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authService.CurrentUser() != ""
}

func (a *App) mode() Mode {
	if a.online.Load() {
		return ModeOnline
	}
	return ModeOffline
}

// checkStatus pings the server once and reports mode switches.
func (a *App) checkStatus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	online := a.authService.Ping(ctx) == nil
	if a.online.Swap(online) != online {
		printlnFn("Switched to", a.mode(), "mode")
	}
}

// StartStatusWatcher keeps the online/offline mode current until ctx is done.
func (a *App) StartStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkStatus(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkStatus(ctx)
		case <-ctx.Done():
			return
		}
	}
}
