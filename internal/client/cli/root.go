package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := string(a.mode())
	if user := a.authService.CurrentUser(); user != "" {
		s = user + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// Root prints the banner and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to projectmanager CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
