package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/jarvis-go/internal/app"
	appconfig "github.com/doeshing/jarvis-go/internal/application/config"
	"github.com/doeshing/jarvis-go/internal/version"
)

func newClassifyCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [utterance]",
		Short: "Show how an utterance splits into tagged sub-commands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := container.Classifier.Classify(cmd.Context(), strings.Join(args, " "))
			newRenderer(cmd.OutOrStdout()).Classification(result)
			return nil
		},
	}
}

func newExtractCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [request]",
		Short: "Show the structured action extracted from a system request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := container.Extractor.Extract(cmd.Context(), strings.Join(args, " "))
			newRenderer(cmd.OutOrStdout()).Extraction(result)
			return nil
		},
	}
}

func newActionsCommand(container *app.Container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the system actions the dispatcher can execute",
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := container.Catalog.Specs()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}
			newRenderer(cmd.OutOrStdout()).Actions(specs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.DoctorService == nil {
				return fmt.Errorf("doctor service unavailable")
			}
			report, err := container.DoctorService.Run(cmd.Context())
			newRenderer(cmd.OutOrStdout()).Doctor(report)
			if err != nil {
				return err
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect Jarvis configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := appconfig.Validate(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ConfigLoader == nil {
				return fmt.Errorf("config loader unavailable")
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}

	configCmd.AddCommand(showCmd, validateCmd, pathCmd)
	return configCmd
}

func runConfigShow(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show Jarvis version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayVersionInformation(cmd.OutOrStdout())
			return nil
		},
	}
}

func displayVersionInformation(out io.Writer) {
	fmt.Fprintf(out, "Jarvis version %s\n", version.Version)
	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}
	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
}
