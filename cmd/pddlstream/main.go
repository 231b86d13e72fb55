// Command pddlstream runs a focused solve or inspects persisted
// statistics for a project's stream definitions, adapted from the
// teacher's deterministic main()-parses-then-dispatches shape
// (cmd/scriptweaver/main.go) onto a cobra root command, the CLI stack the
// retrieval pack's longregen-alicia repo uses (cmd/alicia/main.go).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/m1sk/pddlstream/internal/config"
	"github.com/m1sk/pddlstream/internal/discovery"
	"github.com/m1sk/pddlstream/internal/driver"
	"github.com/m1sk/pddlstream/internal/examples/maze"
	"github.com/m1sk/pddlstream/internal/metrics"
	"github.com/m1sk/pddlstream/internal/obslog"
	"github.com/m1sk/pddlstream/internal/refplanner"
	"github.com/m1sk/pddlstream/internal/registry"
	"github.com/m1sk/pddlstream/internal/workspace"
	"github.com/m1sk/pddlstream/pddl"
)

var (
	flagConfigPath   string
	flagStreamsPath  string
	flagVerbose      bool
	flagCorridorLen  int
)

func main() {
	root := &cobra.Command{
		Use:   "pddlstream",
		Short: "Focused task-and-motion planning solve driver",
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a JSON configuration file")
	root.PersistentFlags().StringVar(&flagStreamsPath, "streams", "", "explicit path to a stream-definitions JSON file")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable human-readable development logging")

	root.AddCommand(solveCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run one focused solve against the corridor example domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&flagCorridorLen, "corridor-length", 5, "number of interior tiles in the example corridor (S1/S2)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the persisted per-external statistics for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runSolve(ctx context.Context) error {
	log, err := buildLogger()
	if err != nil {
		return err
	}

	root, err := workspace.DetectProjectRoot()
	if err != nil {
		return err
	}
	ws, err := workspace.EnsureWorkspace(root)
	if err != nil {
		return err
	}

	v := config.New(flagConfigPath)
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || flagVerbose

	var defs []registry.Definition
	if path, discErr := discovery.Discover(root, flagStreamsPath); discErr == nil {
		log.Printf("discovered stream definitions at %s", path)
		loaded, loadErr := loadDefinitions(path)
		if loadErr != nil {
			log.Printf("discarding %s: %v (falling back to the built-in corridor domain only)", path, loadErr)
		} else {
			defs = loaded
		}
	}

	stats := pddl.NewStatsStore()
	if snapshot, loadErr := loadStats(ws.StatsPath); loadErr == nil {
		stats.Restore(snapshot)
	}

	reg, err := registry.New(defs, registry.Callables{})
	if err != nil {
		return err
	}

	corridor := maze.Build(reg.Pool(), flagCorridorLen)

	col := metrics.New()
	d := driver.New(reg, refplanner.New(), cfg,
		driver.WithLogger(log),
		driver.WithMetrics(col),
		driver.WithStats(stats),
	)

	runID := uuid.New().String()
	log.Printf("starting solve %s at %s", runID, ws.RunsDir)

	result, err := d.Solve(ctx, corridor.Init, corridor.Goal, corridor.Actions)
	if err != nil {
		return err
	}
	if !result.Found {
		fmt.Println("no plan")
		return saveStats(ws.StatsPath, result.Stats)
	}
	fmt.Printf("plan length=%d cost=%.1f\n", len(result.Plan), result.Cost)
	for _, op := range result.Plan {
		fmt.Printf("  %s\n", op.Name)
	}
	return saveStats(ws.StatsPath, result.Stats)
}

func runStats() error {
	root, err := workspace.DetectProjectRoot()
	if err != nil {
		return err
	}
	ws, err := workspace.EnsureWorkspace(root)
	if err != nil {
		return err
	}
	snapshot, err := loadStats(ws.StatsPath)
	if err != nil {
		fmt.Println("no statistics recorded yet")
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

func buildLogger() (obslog.Logger, error) {
	if flagVerbose {
		return obslog.NewZapDevelopment()
	}
	return obslog.NewZap()
}

func loadDefinitions(path string) ([]registry.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return registry.ParseDefinitions(f)
}

func loadStats(path string) (map[string]pddl.ExternalStatsView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var snapshot map[string]pddl.ExternalStatsView
	if err := json.NewDecoder(f).Decode(&snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func saveStats(path string, stats *pddl.StatsStore) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(stats.Snapshot())
}
