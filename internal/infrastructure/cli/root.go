package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/jarvis-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	return newRootCmd(container), nil
}

func newRootCmd(container *app.Container) *cobra.Command {
	root := &cobra.Command{
		Use:   "jarvis [utterance]",
		Short: "Jarvis - command interpreter and dispatcher",
		Long:  "Jarvis splits natural-language requests into tagged sub-commands and executes them concurrently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runUtterance(cmd, container, strings.Join(args, " "), defaultRunTimeout)
		},
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(container))
	root.AddCommand(newClassifyCommand(container))
	root.AddCommand(newExtractCommand(container))
	root.AddCommand(newActionsCommand(container))
	root.AddCommand(newReplCommand(container))
	root.AddCommand(newServeCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newVersionCommand())
	return root
}

func newRunCommand(container *app.Container) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run [utterance]",
		Short: "Interpret and execute an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUtterance(cmd, container, strings.Join(args, " "), timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultRunTimeout, "Overall deadline for the run")
	return cmd
}

const defaultRunTimeout = 2 * time.Minute

func runUtterance(cmd *cobra.Command, container *app.Container, utterance string, timeout time.Duration) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer archive(cmd, container)

	stop := startSpinner(cmd.ErrOrStderr(), "thinking")
	resp := container.Pipeline.Run(ctx, utterance)
	stop()
	newRenderer(cmd.OutOrStdout()).Response(resp)
	return nil
}

// archive flushes session history to the configured archive.
func archive(cmd *cobra.Command, container *app.Container) {
	if err := container.Close(context.Background()); err != nil {
		cmd.PrintErrln("warning:", err)
	}
}
