package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Commands that
// take positional arguments receive the words after the command name.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Projects(ctx context.Context, args []string) error
	CreateProject(ctx context.Context) error
	DeleteProject(ctx context.Context, args []string) error
	AddMember(ctx context.Context, args []string) error
	RemoveMember(ctx context.Context, args []string) error
	Steps(ctx context.Context, args []string) error
	CreateStep(ctx context.Context, args []string) error
	Tasks(ctx context.Context, args []string) error
	CreateTask(ctx context.Context, args []string) error
	Advance(ctx context.Context, args []string) error
	DeleteTask(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, verify <token>, forgot, reset, exit"
	helpLoggedIn  = "Available commands: projects [name], newproject, rmproject <id>, " +
		"addmember <projectId> <userId>, rmmember <projectId> <userId>, " +
		"steps <projectId>, newstep <projectId>, " +
		"tasks <projectId> [status], newtask <stepId>, advance <taskId>, rmtask <taskId>, " +
		"logout, exit"
)

var errUnknownCommand = errors.New("unknown command")

// dispatch runs one command line. It returns io.EOF when the user asked to
// leave.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "exit", "quit":
		printlnFn("Bye!")
		return io.EOF
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "verify":
		return a.Verify(ctx, args)
	case "forgot":
		return a.ForgotPassword(ctx)
	case "reset":
		return a.ResetPassword(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "projects", "newproject", "rmproject", "addmember", "rmmember",
			"steps", "newstep", "tasks", "newtask", "advance", "rmtask":
			printlnFn("Please login first")
			return nil
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "projects", "p":
		return a.Projects(ctx, args)
	case "newproject":
		return a.CreateProject(ctx)
	case "rmproject":
		return a.DeleteProject(ctx, args)
	case "addmember":
		return a.AddMember(ctx, args)
	case "rmmember":
		return a.RemoveMember(ctx, args)
	case "steps":
		return a.Steps(ctx, args)
	case "newstep":
		return a.CreateStep(ctx, args)
	case "tasks", "t":
		return a.Tasks(ctx, args)
	case "newtask":
		return a.CreateTask(ctx, args)
	case "advance":
		return a.Advance(ctx, args)
	case "rmtask":
		return a.DeleteTask(ctx, args)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// runREPL reads command lines from reader until EOF or "exit"/"quit".
// Command errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pm %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if cmdErr := dispatch(ctx, a, parts[0], parts[1:]); cmdErr != nil {
			if errors.Is(cmdErr, io.EOF) {
				return
			}
			printlnFn("Error:", cmdErr)
		}
	}
}
