package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	*testEnv
	ann, bob, cid models.Principal
	project       *models.Project
	step          *models.Step
}

// newTaskFixture builds a project owned by ann with bob as a member and cid
// as an outsider.
func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ctx := context.Background()
	f := &taskFixture{testEnv: newTestEnv(t)}
	f.ann = f.verifiedUser(t, "ann@example.com")
	f.bob = f.verifiedUser(t, "bob@example.com")
	f.cid = f.verifiedUser(t, "cid@example.com")

	var err error
	f.project, err = f.projects.CreateProject(ctx, f.ann, "Apollo", "")
	require.NoError(t, err)
	_, err = f.projects.AddMember(ctx, f.ann, f.project.ID, f.bob.UserID)
	require.NoError(t, err)
	f.step, err = f.steps.CreateStep(ctx, f.ann, f.project.ID, "Build")
	require.NoError(t, err)
	return f
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("unassigned", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "F-1", nil)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusTodo, task.Status)
		assert.Nil(t, task.AssigneeID)
		assert.Zero(t, f.notifier.count("assign"))
	})

	t.Run("assigned to a member", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", &f.bob.UserID)
		require.NoError(t, err)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, f.bob.UserID, *task.AssigneeID)

		sent := f.notifier.last(t, "assign")
		assert.Equal(t, "bob@example.com", sent.to)
		assert.Equal(t, "Engine@Apollo", sent.subject)
	})

	t.Run("non-member assignee", func(t *testing.T) {
		f := newTaskFixture(t)
		_, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", &f.cid.UserID)
		require.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Empty(t, f.store.tasks, "nothing is stored")
		assert.Zero(t, f.notifier.count("assign"))
	})

	t.Run("outsider", func(t *testing.T) {
		f := newTaskFixture(t)
		_, err := f.tasks.CreateTask(ctx, f.cid, f.step.ID, "Engine", "", nil)
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("missing step", func(t *testing.T) {
		f := newTaskFixture(t)
		_, err := f.tasks.CreateTask(ctx, f.ann, "missing", "Engine", "", nil)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delivery failure keeps the task", func(t *testing.T) {
		f := newTaskFixture(t)
		f.notifier.err = errors.New("relay denied")
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", &f.bob.UserID)
		require.ErrorIs(t, err, common.ErrDeliveryFailure)
		require.NotNil(t, task)
		assert.Contains(t, f.store.tasks, task.ID)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
	require.NoError(t, err)

	title := "Engine cluster"
	got, err := f.tasks.UpdateTask(ctx, f.bob, task.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Engine cluster", got.Title)
	assert.Zero(t, f.notifier.count("assign"))

	_, err = f.tasks.UpdateTask(ctx, f.ann, task.ID, TaskUpdate{AssigneeID: &f.cid.UserID})
	require.ErrorIs(t, err, common.ErrorBadRequest)
	assert.Nil(t, f.store.tasks[task.ID].AssigneeID)

	_, err = f.tasks.UpdateTask(ctx, f.ann, task.ID, TaskUpdate{AssigneeID: &f.bob.UserID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count("assign"))

	_, err = f.tasks.UpdateTask(ctx, f.ann, task.ID, TaskUpdate{AssigneeID: &f.bob.UserID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count("assign"), "same assignee is not notified again")

	_, err = f.tasks.UpdateTask(ctx, f.cid, task.ID, TaskUpdate{Title: &title})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestTaskService_AssignmentSurvivesMembershipChange(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", &f.bob.UserID)
	require.NoError(t, err)

	_, err = f.projects.RemoveMember(ctx, f.ann, f.project.ID, f.bob.UserID)
	require.NoError(t, err)

	got, err := f.tasks.GetTask(ctx, f.ann, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, f.bob.UserID, *got.AssigneeID)

	_, err = f.tasks.GetTask(ctx, f.bob, task.ID)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestTaskService_AdvanceTask(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
	require.NoError(t, err)

	_, err = f.tasks.AdvanceTask(ctx, f.cid, task.ID)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	got, err := f.tasks.AdvanceTask(ctx, f.bob, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)

	got, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, got.Status)

	before := f.store.tasks[task.ID]
	f.clock.Advance(1)
	_, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
	require.ErrorIs(t, err, common.ErrorBadRequest)
	assert.Contains(t, err.Error(), "already in DONE status")
	assert.Equal(t, before, f.store.tasks[task.ID], "a DONE task is left untouched")

	_, err = f.tasks.AdvanceTask(ctx, f.ann, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTaskService_UpdateKeepsConcurrentAdvance(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
	require.NoError(t, err)

	var advanced *models.Task
	f.store.onceAfter("tasks.FindByID", func() {
		advanced, err = f.tasks.AdvanceTask(ctx, f.bob, task.ID)
	})

	title := "Engine v2"
	got, uerr := f.tasks.UpdateTask(ctx, f.ann, task.ID, TaskUpdate{Title: &title})
	require.NoError(t, uerr)
	require.NoError(t, err)
	require.NotNil(t, advanced)

	stored := f.store.tasks[task.ID]
	assert.Equal(t, models.TaskStatusInProgress, stored.Status, "status never moves backwards")
	assert.Equal(t, "Engine v2", stored.Title)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)
}

func TestTaskService_ConcurrentAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("second advance from the same status fails", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
		require.NoError(t, err)

		var inner error
		f.store.onceAfter("tasks.FindByID", func() {
			_, inner = f.tasks.AdvanceTask(ctx, f.bob, task.ID)
		})

		_, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
		require.NoError(t, inner)
		require.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Equal(t, models.TaskStatusInProgress, f.store.tasks[task.ID].Status, "advanced exactly once")
	})

	t.Run("losing to the final advance reports DONE", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
		require.NoError(t, err)
		_, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
		require.NoError(t, err)

		f.store.onceAfter("tasks.FindByID", func() {
			_, _ = f.tasks.AdvanceTask(ctx, f.bob, task.ID)
		})

		_, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
		require.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Contains(t, err.Error(), "already in DONE status")
		assert.Equal(t, models.TaskStatusDone, f.store.tasks[task.ID].Status)
	})

	t.Run("task deleted meanwhile", func(t *testing.T) {
		f := newTaskFixture(t)
		task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
		require.NoError(t, err)

		f.store.onceAfter("tasks.FindByID", func() {
			require.NoError(t, f.tasks.DeleteTask(ctx, f.bob, task.ID))
		})

		_, err = f.tasks.AdvanceTask(ctx, f.ann, task.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestTaskService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	a, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Tank", "", nil)
	require.NoError(t, err)
	_, err = f.tasks.AdvanceTask(ctx, f.ann, a.ID)
	require.NoError(t, err)

	list, err := f.tasks.ListTasks(ctx, f.bob, f.project.ID, models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.tasks.ListTasks(ctx, f.bob, f.project.ID, models.TaskFilter{Status: models.TaskStatusInProgress})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = f.tasks.ListTasks(ctx, f.cid, f.project.ID, models.TaskFilter{})
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	require.ErrorIs(t, f.tasks.DeleteTask(ctx, f.cid, a.ID), common.ErrorUnauthorized)
	require.NoError(t, f.tasks.DeleteTask(ctx, f.ann, a.ID))
	require.ErrorIs(t, f.tasks.DeleteTask(ctx, f.ann, a.ID), common.ErrorNotFound)

	list, err = f.tasks.ListTasks(ctx, f.ann, f.project.ID, models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTaskService_DeletedStepHidesTasks(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.ann, f.step.ID, "Engine", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.steps.DeleteStep(ctx, f.ann, f.step.ID))

	_, err = f.tasks.GetTask(ctx, f.ann, task.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
