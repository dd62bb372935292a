// Plan commands for the signpost CLI.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/signpost/pkg/flow"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and walk through plans",
}

var (
	planTemplateID   string
	planTitle        string
	planAbbreviation string
	planChoice       string
	planNotes        string
	planKeepUsers    bool
)

func init() {
	planNewCmd.Flags().StringVar(&planTemplateID, "template", "", "template ID to start the plan on (required)")
	planNewCmd.Flags().StringVar(&planTitle, "title", "", "plan title (required)")
	_ = planNewCmd.MarkFlagRequired("template")
	_ = planNewCmd.MarkFlagRequired("title")

	planAnswerCmd.Flags().StringVar(&planChoice, "choice", "", "answer payload: JSON value or raw string (required)")
	planAnswerCmd.Flags().StringVar(&planNotes, "notes", "", "free-text note stored alongside the answer")
	_ = planAnswerCmd.MarkFlagRequired("choice")

	planSaveAsCmd.Flags().StringVar(&planTitle, "title", "", "title for the copy (required)")
	planSaveAsCmd.Flags().StringVar(&planAbbreviation, "abbreviation", "", "abbreviation for the copy")
	planSaveAsCmd.Flags().BoolVar(&planKeepUsers, "keep-users", false, "carry the source plan's editors over to the copy")
	_ = planSaveAsCmd.MarkFlagRequired("title")

	planCmd.AddCommand(planNewCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planAnswerCmd)
	planCmd.AddCommand(planNextCmd)
	planCmd.AddCommand(planPrevCmd)
	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planSaveAsCmd)
	planCmd.AddCommand(planLockCmd)
	planCmd.AddCommand(planPublishCmd)
	planCmd.AddCommand(planNewVersionCmd)
}

var planNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new plan on a published template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		g, err := loadGraph(store, planTemplateID)
		if err != nil {
			return err
		}
		plan, err := flow.StartPlan(g, planTitle, flagUser)
		if err != nil {
			return fmt.Errorf("start plan: %w", err)
		}

		table, err := store.GetTable(types.PlansTable)
		if err != nil {
			return err
		}
		if _, err := table.Set(plan.PlanID, plan); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}

		first, err := g.FirstQuestion()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(plan)
		}
		fmt.Printf("Created plan %s\n", plan.PlanID)
		fmt.Printf("First question: %s [%s]\n", first.Text, first.QuestionID)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		table, err := store.GetTable(types.PlansTable)
		if err != nil {
			return err
		}
		entities, err := table.Fetch(nil)
		if err != nil {
			return fmt.Errorf("fetch plans: %w", err)
		}

		if flagJSON {
			return printJSON(entities)
		}
		for _, e := range entities {
			p, ok := e.(*types.Plan)
			if !ok {
				continue
			}
			state := "open"
			if p.Published != nil {
				state = "published"
			} else if p.IsLocked() {
				state = "locked"
			}
			fmt.Printf("%s  v%d  %-9s  %s\n", p.PlanID, p.Version, state, p.Title)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan with its answers and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		plan := tracker.Plan()
		if flagJSON {
			return printJSON(plan)
		}

		fmt.Printf("%s (v%d)\n", plan.Title, plan.Version)
		for _, status := range tracker.SectionProgress(nil) {
			fmt.Printf("  [%s] %s\n", status.Status, status.FullTitle)
		}
		for _, entry := range tracker.Summary() {
			choice := "-"
			if !entry.Answer.IsEmpty() {
				raw, err := json.Marshal(entry.Answer.Choice)
				if err == nil {
					choice = string(raw)
				}
			}
			fmt.Printf("  %s: %s\n", entry.Question.Text, choice)
			if entry.Answer.Notes != "" {
				fmt.Printf("    note: %s\n", entry.Answer.Notes)
			}
		}
		return nil
	},
}

var planAnswerCmd = &cobra.Command{
	Use:   "answer <plan-id> <question-id>",
	Short: "Store an answer and advance the walk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}

		ans := types.Answer{Choice: parseChoice(planChoice), Notes: planNotes}
		next, progress, err := tracker.Answer(args[1], ans)
		// An invalid answer still updates validity records; persist either way.
		saveErr := saveTracker(store, tracker)
		if err != nil {
			return err
		}
		if saveErr != nil {
			return saveErr
		}

		if flagJSON {
			return printJSON(map[string]any{
				"next":     next,
				"progress": progress,
			})
		}
		if next == nil {
			fmt.Println("Answer stored; end of questionnaire reached")
			return nil
		}
		fmt.Printf("Answer stored; next question: %s [%s]\n", next.Text, next.QuestionID)
		return nil
	},
}

var planNextCmd = &cobra.Command{
	Use:   "next <plan-id> <question-id>",
	Short: "Resolve the question after the given one under current answers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		next, err := tracker.Graph().NextQuestion(args[1], tracker.Plan().Data)
		if err != nil {
			return err
		}
		return printQuestionResult(next, "End of questionnaire")
	},
}

var planPrevCmd = &cobra.Command{
	Use:   "prev <plan-id> <question-id>",
	Short: "Resolve the question shown before the given one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		prev, err := tracker.Previous(args[1])
		if err != nil {
			return err
		}
		return printQuestionResult(prev, "Start of questionnaire")
	},
}

var planValidateCmd = &cobra.Command{
	Use:   "validate <plan-id>",
	Short: "Revalidate every section and report plan validity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		valid := tracker.ValidatePlan()
		if err := saveTracker(store, tracker); err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]any{
				"valid":    valid,
				"sections": tracker.SectionValidities(),
			})
		}
		for _, sv := range tracker.SectionValidities() {
			section, err := tracker.Graph().Section(sv.SectionID)
			if err != nil {
				continue
			}
			fmt.Printf("  %-7v %s\n", sv.Valid, tracker.Graph().FullTitle(section))
		}
		if valid {
			fmt.Println("Plan is valid")
		} else {
			fmt.Println("Plan is not valid")
		}
		return nil
	},
}

var planSaveAsCmd = &cobra.Command{
	Use:   "save-as <plan-id>",
	Short: "Copy a plan with its answers and validity records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		copyPlan, qv, sv := tracker.SaveAs(planTitle, flagUser, planAbbreviation, planKeepUsers)
		if err := savePlanWithValidities(store, copyPlan, qv, sv); err != nil {
			return err
		}

		if flagJSON {
			return printJSON(copyPlan)
		}
		fmt.Printf("Created plan %s from %s\n", copyPlan.PlanID, args[0])
		return nil
	},
}

var planLockCmd = &cobra.Command{
	Use:   "lock <plan-id>",
	Short: "Lock a plan, making it read only",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanLifecycle((*types.Plan).Lock, "Locked plan %s\n"),
}

var planPublishCmd = &cobra.Command{
	Use:   "publish <plan-id>",
	Short: "Publish a plan, locking it and making it public",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanLifecycle((*types.Plan).Publish, "Published plan %s\n"),
}

var planNewVersionCmd = &cobra.Command{
	Use:   "new-version <plan-id>",
	Short: "Reopen a locked plan as a fresh mutable version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tracker, err := loadTracker(store, args[0])
		if err != nil {
			return err
		}
		next, err := flow.NewPlanVersion(tracker.Plan(), flagUser)
		if err != nil {
			return err
		}

		// Validity carries over: the answers are the same data.
		var qv []*types.QuestionValidity
		for _, v := range tracker.QuestionValidities() {
			c := *v
			c.PlanID = next.PlanID
			qv = append(qv, &c)
		}
		var sv []*types.SectionValidity
		for _, v := range tracker.SectionValidities() {
			c := *v
			c.PlanID = next.PlanID
			sv = append(sv, &c)
		}
		if err := savePlanWithValidities(store, next, qv, sv); err != nil {
			return err
		}

		if flagJSON {
			return printJSON(next)
		}
		fmt.Printf("Created plan %s (v%d) from %s\n", next.PlanID, next.Version, args[0])
		return nil
	},
}

// runPlanLifecycle builds a RunE that applies a lock-style transition to a
// plan and persists it.
func runPlanLifecycle(transition func(*types.Plan, string) error, doneFormat string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		table, err := store.GetTable(types.PlansTable)
		if err != nil {
			return err
		}
		entity, err := table.Get(args[0])
		if err != nil {
			return err
		}
		plan, ok := entity.(*types.Plan)
		if !ok {
			return fmt.Errorf("unexpected entity type for plan %s", args[0])
		}
		if err := transition(plan, flagUser); err != nil {
			return err
		}
		if _, err := table.Set(plan.PlanID, plan); err != nil {
			return fmt.Errorf("save plan: %w", err)
		}

		if flagJSON {
			return printJSON(plan)
		}
		fmt.Printf(doneFormat, plan.PlanID)
		return nil
	}
}

// savePlanWithValidities persists a plan together with its validity records.
func savePlanWithValidities(store types.Store, plan *types.Plan, qv []*types.QuestionValidity, sv []*types.SectionValidity) error {
	table, err := store.GetTable(types.PlansTable)
	if err != nil {
		return err
	}
	if _, err := table.Set(plan.PlanID, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	qvTable, err := store.GetTable(types.QuestionValidityTable)
	if err != nil {
		return err
	}
	for _, v := range qv {
		if _, err := qvTable.Set("", v); err != nil {
			return fmt.Errorf("save question validity: %w", err)
		}
	}
	svTable, err := store.GetTable(types.SectionValidityTable)
	if err != nil {
		return err
	}
	for _, v := range sv {
		if _, err := svTable.Set("", v); err != nil {
			return fmt.Errorf("save section validity: %w", err)
		}
	}
	return nil
}

// parseChoice interprets the --choice flag: valid JSON is taken structurally
// (booleans, arrays, objects), anything else is the raw string.
func parseChoice(raw string) any {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	// Bare words like yes/no are not valid JSON and stay strings; quoted
	// strings and structured values come through the parser.
	return parsed
}

// printQuestionResult renders a resolved question, or the terminal message
// when the walk has no question in that direction.
func printQuestionResult(q *types.Question, terminal string) error {
	if flagJSON {
		return printJSON(q)
	}
	if q == nil {
		fmt.Println(terminal)
		return nil
	}
	fmt.Printf("%s [%s]\n", q.Text, q.QuestionID)
	return nil
}
