package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Run starts the read-eval-print loop. It returns when the user exits or
// stdin is exhausted. Command errors are printed and the loop keeps going;
// nothing a single command does should end the session.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "WIZARD project shell (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "wizard %s> ", a.getStatus())

		line, err := a.reader.ReadString('\n')
		if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
			return
		}

		quit := a.dispatch(ctx, line)
		if quit {
			return
		}
		if err != nil {
			// EOF after a final unterminated line.
			return
		}
	}
}

// getStatus renders the prompt segment showing the open project and an
// asterisk for unsaved changes.
func (a *App) getStatus() string {
	if !a.hasProject() {
		return ""
	}

	s := a.project.Name
	if a.dirty {
		s += "*"
	}
	return fmt.Sprintf("(%s)", s)
}

// dispatch parses one input line and runs the matching command. The return
// value reports whether the loop should exit.
func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	cmd := parts[0]
	args := parts[1:]

	var err error

	switch cmd {
	case "help":
		a.printHelp()

	case "new":
		err = a.newProject(ctx)

	case "open":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: open <path>")
			break
		}
		err = a.openProject(ctx, args[0])

	case "save":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		err = a.saveProject(ctx, path)

	case "close":
		a.close()

	case "info":
		err = a.info()

	case "files":
		err = a.listFiles()

	case "attach":
		if len(args) == 0 {
			fmt.Fprintln(a.out, "Usage: attach <tob-path> [tob-path...]")
			break
		}
		err = a.attach(ctx, args)

	case "detach":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: detach <file-name>")
			break
		}
		err = a.detach(args[0])

	case "activate":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: activate <file-name>")
			break
		}
		err = a.activate(args[0])

	case "server":
		err = a.updateServer(ctx)

	case "upload":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: upload <file-name>")
			break
		}
		err = a.uploadFile(ctx, args[0])

	case "status":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: status <file-name>")
			break
		}
		err = a.fileStatus(ctx, args[0])

	case "validate":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: validate <path>")
			break
		}
		a.validate(ctx, args[0])

	case "export":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: export <path>")
			break
		}
		err = a.export(ctx, args[0])

	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true

	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}

	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}

	return false
}

func (a *App) printHelp() {
	if a.hasProject() {
		fmt.Fprintln(a.out, "Available commands: save [path], close, info, files, attach, detach, activate, server, upload, status, export, validate, help, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: new, open <path>, validate <path>, help, exit")
	}
}

// errNoProject guards commands that need an open project.
var errNoProject = errors.New("no project open (use 'new' or 'open')")

func (a *App) requireProject() error {
	if !a.hasProject() {
		return errNoProject
	}
	return nil
}
