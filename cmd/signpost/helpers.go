// Shared helpers for signpost CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/signpost/pkg/flow"
	"github.com/mesh-intelligence/signpost/pkg/sqlite"
	"github.com/mesh-intelligence/signpost/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer store.Detach().
func attachBackend() (types.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store := sqlite.NewBackend()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return store, nil
}

// loadGraph loads a template bundle and builds its navigation graph.
func loadGraph(store types.Store, templateID string) (*flow.Graph, error) {
	bundle, err := store.LoadBundle(templateID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", templateID, err)
	}
	g, err := flow.NewGraph(bundle)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}

// loadTracker loads a plan, its template graph, and its persisted validity
// records into a ready-to-use tracker.
func loadTracker(store types.Store, planID string) (*flow.Tracker, error) {
	plansTable, err := store.GetTable(types.PlansTable)
	if err != nil {
		return nil, err
	}
	entity, err := plansTable.Get(planID)
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", planID, err)
	}
	plan, ok := entity.(*types.Plan)
	if !ok {
		return nil, fmt.Errorf("unexpected entity type for plan %s", planID)
	}

	g, err := loadGraph(store, plan.TemplateID)
	if err != nil {
		return nil, err
	}
	tracker := flow.NewTracker(g, plan)

	qv, sv, err := fetchValidities(store, planID)
	if err != nil {
		return nil, err
	}
	tracker.LoadValidities(qv, sv)
	return tracker, nil
}

// fetchValidities loads the persisted validity records for one plan.
func fetchValidities(store types.Store, planID string) ([]*types.QuestionValidity, []*types.SectionValidity, error) {
	qvTable, err := store.GetTable(types.QuestionValidityTable)
	if err != nil {
		return nil, nil, err
	}
	qvRows, err := qvTable.Fetch(types.Filter{"plan_id": planID})
	if err != nil {
		return nil, nil, err
	}
	qv := make([]*types.QuestionValidity, 0, len(qvRows))
	for _, row := range qvRows {
		if v, ok := row.(*types.QuestionValidity); ok {
			qv = append(qv, v)
		}
	}

	svTable, err := store.GetTable(types.SectionValidityTable)
	if err != nil {
		return nil, nil, err
	}
	svRows, err := svTable.Fetch(types.Filter{"plan_id": planID})
	if err != nil {
		return nil, nil, err
	}
	sv := make([]*types.SectionValidity, 0, len(svRows))
	for _, row := range svRows {
		if v, ok := row.(*types.SectionValidity); ok {
			sv = append(sv, v)
		}
	}
	return qv, sv, nil
}

// saveTracker persists the tracked plan and every validity record touched.
func saveTracker(store types.Store, tracker *flow.Tracker) error {
	plan := tracker.Plan()

	plansTable, err := store.GetTable(types.PlansTable)
	if err != nil {
		return err
	}
	if _, err := plansTable.Set(plan.PlanID, plan); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	qvTable, err := store.GetTable(types.QuestionValidityTable)
	if err != nil {
		return err
	}
	for _, v := range tracker.QuestionValidities() {
		if _, err := qvTable.Set("", v); err != nil {
			return fmt.Errorf("save question validity: %w", err)
		}
	}

	svTable, err := store.GetTable(types.SectionValidityTable)
	if err != nil {
		return err
	}
	for _, v := range tracker.SectionValidities() {
		if _, err := svTable.Set("", v); err != nil {
			return fmt.Errorf("save section validity: %w", err)
		}
	}
	return nil
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
