package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bulkops/internal/app"
	"bulkops/internal/types"
)

type copySettingsOptions struct {
	Project       string
	Actor         string
	Attributes    []string
	Versions      []string
	Categories    []string
	SelectionFile string
}

func newCopySettingsCommand() *cobra.Command {
	opts := copySettingsOptions{}
	cmd := &cobra.Command{
		Use:   "copy-settings",
		Short: "Copy selected settings of a project to its active sub-projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCopySettings(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", "Identifier of the parent project")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "Login of the user requesting the copy")
	cmd.Flags().StringSliceVar(&opts.Attributes, "attributes", nil, "Attributes to copy (description, public, status, enabled_module_names, type_ids, work_package_custom_field_ids)")
	cmd.Flags().StringSliceVar(&opts.Versions, "versions", nil, "Version settings to copy (effective_date, start_date, dates, description, status, new_versions)")
	cmd.Flags().StringSliceVar(&opts.Categories, "categories", nil, "Category settings to copy (new_categories)")
	cmd.Flags().StringVar(&opts.SelectionFile, "selection-file", "", "YAML file mapping setting categories to chosen values")
	return cmd
}

func runCopySettings(ctx context.Context, cmd *cobra.Command, opts copySettingsOptions) error {
	settings, order, err := settingsSelection(cmd, opts)
	if err != nil {
		return err
	}
	service, closeService, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer closeService()

	actorID, err := resolveActorID(ctx, service, opts.Actor)
	if err != nil {
		return err
	}
	result, err := service.CopySettings(ctx, app.CopySettingsRequest{
		ActorID:   actorID,
		ProjectID: opts.Project,
		Settings:  settings,
		Order:     order,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if result.InvalidProject {
		fmt.Fprintf(out, "project %s is missing or archived, nothing copied\n", opts.Project)
		return nil
	}
	report := result.Report
	fmt.Fprintf(out, "run %s: copied settings of %s to %d sub-projects\n", report.RunID, report.Project, report.Children)
	printUnitErrors(cmd, report.Errors)
	return nil
}

// settingsSelection merges the selection file with the per-category flags.
// Flags replace the file's values for the categories they name.
func settingsSelection(cmd *cobra.Command, opts copySettingsOptions) (map[string][]string, []string, error) {
	settings := map[string][]string{}
	var order []string
	if opts.SelectionFile != "" {
		var err error
		settings, order, err = loadSelectionFile(opts.SelectionFile)
		if err != nil {
			return nil, nil, err
		}
	}
	for _, entry := range []struct {
		flag     string
		category types.SettingCategory
		values   []string
	}{
		{"attributes", types.SettingAttributes, opts.Attributes},
		{"versions", types.SettingVersions, opts.Versions},
		{"categories", types.SettingCategories, opts.Categories},
	} {
		if !flagChanged(cmd, entry.flag) {
			continue
		}
		key := string(entry.category)
		if _, ok := settings[key]; !ok {
			order = append(order, key)
		}
		settings[key] = entry.values
	}
	return settings, order, nil
}

// loadSelectionFile reads a YAML mapping of category to values and keeps
// the order in which categories appear in the file.
func loadSelectionFile(path string) (map[string][]string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read selection file").
			WithCause(err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, selectionFileError(err)
	}
	settings := map[string][]string{}
	var order []string
	if len(doc.Content) == 0 {
		return settings, order, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, nil, selectionFileError(fmt.Errorf("expected a mapping at line %d", mapping.Line))
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		var values []string
		if err := mapping.Content[i+1].Decode(&values); err != nil {
			return nil, nil, selectionFileError(err)
		}
		if _, seen := settings[key]; !seen {
			order = append(order, key)
		}
		settings[key] = values
	}
	return settings, order, nil
}

func selectionFileError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("failed to parse selection file").
		WithCause(err)
}
