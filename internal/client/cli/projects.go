package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) table(header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}

// Projects lists the caller's projects, optionally filtered by name.
func (a *App) Projects(ctx context.Context, args []string) error {
	list, err := a.tracker.ListProjects(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No projects")
		return nil
	}

	tw := a.table("ID\tNAME\tMEMBERS\tDESCRIPTION")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, len(p.UserIDs), p.Description)
	}
	return tw.Flush()
}

func (a *App) CreateProject(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}

	p, err := a.tracker.CreateProject(ctx, name, description)
	if err != nil {
		return err
	}
	printlnFn("Project created:", p.ID)
	return nil
}

func (a *App) DeleteProject(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rmproject <projectId>")
	}
	if err := a.tracker.DeleteProject(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Project deleted")
	return nil
}

func (a *App) AddMember(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("addmember <projectId> <userId>")
	}
	p, err := a.tracker.AddMember(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printlnFn("Members:", strings.Join(p.UserIDs, ", "))
	return nil
}

func (a *App) RemoveMember(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("rmmember <projectId> <userId>")
	}
	p, err := a.tracker.RemoveMember(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printlnFn("Members:", strings.Join(p.UserIDs, ", "))
	return nil
}

func (a *App) Steps(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("steps <projectId>")
	}
	list, err := a.tracker.ListSteps(ctx, args[0])
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No steps")
		return nil
	}

	tw := a.table("ID\tNAME")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
	}
	return tw.Flush()
}

func (a *App) CreateStep(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("newstep <projectId>")
	}
	name, err := getSimpleText(a.reader, "Enter step name", a.out)
	if err != nil {
		return err
	}

	s, err := a.tracker.CreateStep(ctx, args[0], name)
	if err != nil {
		return err
	}
	printlnFn("Step created:", s.ID)
	return nil
}
