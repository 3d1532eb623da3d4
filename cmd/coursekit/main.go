package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"coursekit/internal/app"
	"coursekit/internal/config"
	"coursekit/internal/editor"

	"github.com/spf13/cobra"
)

func main() {
	if err := app.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// readConfig reads the config file from the default location.
func readConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a CourseApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddModule", "Save").
func newApp(cmd *cobra.Command, operation string) (*app.CourseApp, error) {
	cfg, _, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewCourseApp(cmd.Context(), cfg, operation, app.Options{Console: os.Stderr})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "coursekit",
	Short:        "Edit course structures from the terminal",
	SilenceUsage: true,
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the active course to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Save")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Save(cmd.Context())
		if report != nil {
			printReconciled(report)
		}
		if err != nil {
			return fmt.Errorf("save failed (local changes kept): %w", err)
		}
		if report == nil {
			fmt.Println("Nothing to save.")
			return nil
		}

		fmt.Printf("Saved: %d created, %d updated, %d reordered\n", report.Creates, report.Updates, report.Reorders)
		return nil
	},
}

// printReconciled lists the placeholder ids that received real ids.
func printReconciled(report *editor.SaveReport) {
	mapping := report.Reconciled()
	locals := make([]string, 0, len(mapping))
	for local := range mapping {
		locals = append(locals, local)
	}
	sort.Strings(locals)
	for _, local := range locals {
		fmt.Printf("%s -> %s\n", local, mapping[local])
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(historyCmd)
}
