// Template commands for the signpost CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/signpost/pkg/flow"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage questionnaire templates",
}

func init() {
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templatePublishCmd)
	templateCmd.AddCommand(templateNewVersionCmd)
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		table, err := store.GetTable(types.TemplatesTable)
		if err != nil {
			return err
		}
		entities, err := table.Fetch(nil)
		if err != nil {
			return fmt.Errorf("fetch templates: %w", err)
		}

		if flagJSON {
			return printJSON(entities)
		}
		for _, e := range entities {
			tpl, ok := e.(*types.Template)
			if !ok {
				continue
			}
			state := "draft"
			if tpl.IsPublished() {
				state = "published"
			}
			fmt.Printf("%s  v%d  %-9s  %s\n", tpl.TemplateID, tpl.Version, state, tpl.Title)
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Show a template with its sections and questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		bundle, err := store.LoadBundle(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(bundle)
		}

		g, err := flow.NewGraph(bundle)
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		tpl := bundle.Template
		state := "draft"
		if tpl.IsPublished() {
			state = "published"
		}
		fmt.Printf("%s (v%d, %s)\n", tpl.Title, tpl.Version, state)
		for _, s := range g.Sections() {
			fmt.Printf("  section %s [%s]\n", g.FullTitle(s), s.SectionID)
			for _, q := range g.QuestionsOf(s.SectionID) {
				marker := " "
				if q.Obligatory {
					marker = "*"
				}
				fmt.Printf("   %s %s (%s) [%s]\n", marker, q.Text, q.InputType, q.QuestionID)
				for _, ca := range g.CannedAnswersOf(q.QuestionID) {
					branch := ""
					if ca.EdgeID != "" {
						branch = " ->"
					}
					fmt.Printf("       - %s%s\n", ca.Choice, branch)
				}
			}
		}
		return nil
	},
}

var templatePublishCmd = &cobra.Command{
	Use:   "publish <template-id>",
	Short: "Publish a template, freezing it for plan use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		bundle, err := store.LoadBundle(args[0])
		if err != nil {
			return err
		}
		// A template must build a valid graph before it can be published.
		if _, err := flow.NewGraph(bundle); err != nil {
			return fmt.Errorf("template is not publishable: %w", err)
		}
		if err := bundle.Template.Publish(flagUser); err != nil {
			return err
		}

		table, err := store.GetTable(types.TemplatesTable)
		if err != nil {
			return err
		}
		if _, err := table.Set(bundle.Template.TemplateID, bundle.Template); err != nil {
			return fmt.Errorf("save template: %w", err)
		}

		if flagJSON {
			return printJSON(bundle.Template)
		}
		fmt.Printf("Published template %s (v%d)\n", bundle.Template.TemplateID, bundle.Template.Version)
		return nil
	},
}

var templateNewVersionCmd = &cobra.Command{
	Use:   "new-version <template-id>",
	Short: "Clone a template into the next draft version of its lineage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		bundle, err := store.LoadBundle(args[0])
		if err != nil {
			return err
		}
		clone, err := flow.NewTemplateVersion(bundle, flagUser)
		if err != nil {
			return fmt.Errorf("new version: %w", err)
		}
		if err := store.SaveBundle(clone); err != nil {
			return fmt.Errorf("save new version: %w", err)
		}

		if flagJSON {
			return printJSON(clone.Template)
		}
		fmt.Printf("Created template %s (v%d, draft) from %s\n",
			clone.Template.TemplateID, clone.Template.Version, bundle.Template.TemplateID)
		return nil
	},
}
