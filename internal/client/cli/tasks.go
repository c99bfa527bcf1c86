package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/projectmanager/internal/client/api"
	"github.com/dmitrijs2005/projectmanager/internal/common"
)

var taskStatuses = map[string]bool{"TODO": true, "IN_PROGRESS": true, "DONE": true}

// Tasks lists the tasks of a project, optionally only those in one status.
func (a *App) Tasks(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("tasks <projectId> [TODO|IN_PROGRESS|DONE]")
	}

	var filter api.TaskFilter
	if len(args) == 2 {
		filter.Status = strings.ToUpper(args[1])
		if !taskStatuses[filter.Status] {
			return usage("tasks <projectId> [TODO|IN_PROGRESS|DONE]")
		}
	}

	list, err := a.tracker.ListTasks(ctx, args[0], filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No tasks")
		return nil
	}

	tw := a.table("ID\tSTATUS\tSTEP\tASSIGNEE\tTITLE")
	for _, t := range list {
		assignee := "-"
		if t.AssignedToID != nil {
			assignee = *t.AssignedToID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.StepID, assignee, t.Title)
	}
	return tw.Flush()
}

// CreateTask prompts for the task fields. An empty assignee leaves the task
// unassigned.
func (a *App) CreateTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("newtask <stepId>")
	}

	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	assignee, err := getSimpleText(a.reader, "Enter assignee user id (empty for none)", a.out)
	if err != nil {
		return err
	}

	in := api.NewTask{Title: title, Description: description, StepID: args[0]}
	if assignee != "" {
		in.AssignedTo = &assignee
	}

	t, err := a.tracker.CreateTask(ctx, in)
	if err != nil {
		if t != nil && errors.Is(err, common.ErrDeliveryFailure) {
			printlnFn("Task created:", t.ID, "(assignee was not notified)")
			return nil
		}
		return err
	}
	printlnFn("Task created:", t.ID)
	return nil
}

func (a *App) Advance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("advance <taskId>")
	}
	t, err := a.tracker.AdvanceTask(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn("Task", t.ID, "is now", t.Status)
	return nil
}

func (a *App) DeleteTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rmtask <taskId>")
	}
	if err := a.tracker.DeleteTask(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Task deleted")
	return nil
}
