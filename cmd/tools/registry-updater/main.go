// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dinefine-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "registry-updater",
	Short: "Maintains the activity registry checked by the worker manager",
	Example: `  registry-updater add --id analyze-menu --display-name "Analyze Menu" --category dietary --task-type analyze-menu
  registry-updater update --id analyze-menu --field status --value completed
  registry-updater validate --path configs/activity-registry.json`,
	SilenceUsage: true,
}

func addCmd() *cobra.Command {
	var a registry.Activity
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if errors.Is(err, os.ErrNotExist) {
				reg, err = registry.New(time.Now()), nil
			}
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			a.InputSchema = map[string]interface{}{}
			a.OutputSchema = map[string]interface{}{}
			a.ErrorCodes = []string{}
			a.Workflows = []string{}
			a.Tags = []string{}
			if err := reg.Add(a, time.Now()); err != nil {
				return err
			}
			if err := reg.Save(registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.ID, "id", "", "activity id (e.g. analyze-menu)")
	f.StringVar(&a.DisplayName, "display-name", "", "display name")
	f.StringVar(&a.Description, "description", "", "description")
	f.StringVar(&a.Category, "category", "dietary", "category")
	f.StringVar(&a.TaskType, "task-type", "", "Zeebe job type")
	f.StringVar(&a.Version, "version", "1.0.0", "activity version")
	f.StringVar(&a.ImplementationStatus, "status", registry.StatusPlanned, "planned, in-progress, completed or verified")
	f.StringVar(&a.Timeout, "timeout", "10s", "job timeout")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("display-name")
	_ = cmd.MarkFlagRequired("task-type")
	return cmd
}

func updateCmd() *cobra.Command {
	var id, field, value string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one field of an existing activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value, time.Now()); err != nil {
				return err
			}
			if err := reg.Save(registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&id, "id", "", "activity id to update")
	f.StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	f.StringVar(&value, "value", "", "new value")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "path to registry file")
	rootCmd.AddCommand(addCmd(), updateCmd(), validateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
