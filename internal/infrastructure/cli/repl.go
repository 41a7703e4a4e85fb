package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/jarvis-go/internal/app"
)

const replHelp = `Type a request, or one of:
  :history        list this session's commands
  :replay <id>    run a recorded command again
  :clear          forget this session's commands
  :quit           leave`

func newReplCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session; history is kept until exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			defer archive(cmd, container)
			return runRepl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), container)
		},
	}
}

func runRepl(ctx context.Context, in io.Reader, out io.Writer, container *app.Container) error {
	render := newRenderer(out)
	scanner := bufio.NewScanner(in)
	name := container.Config.GetAssistantName()

	fmt.Fprintf(out, "%s is listening. Type :help for commands.\n", name)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			quit, err := replCommand(ctx, line, out, render, container)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if quit {
				return nil
			}
			continue
		}

		stop := startSpinner(out, "thinking")
		resp := container.Pipeline.Run(ctx, line)
		stop()
		render.Response(resp)
		if resp.Exit {
			return nil
		}
	}
}

func replCommand(ctx context.Context, line string, out io.Writer, render *renderer, container *app.Container) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit", ":q":
		return true, nil
	case ":help":
		fmt.Fprintln(out, replHelp)
	case ":history":
		render.History(container.Pipeline.History().List())
	case ":clear":
		n := container.Pipeline.History().Clear()
		fmt.Fprintf(out, "History cleared (%d entries)\n", n)
	case ":replay":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: :replay <id>")
		}
		resp, err := container.Pipeline.Replay(ctx, fields[1])
		if err != nil {
			return false, err
		}
		render.Response(resp)
		return resp.Exit, nil
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}
