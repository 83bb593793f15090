package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/helixtrade/causegraph/internal/clock"
	"github.com/helixtrade/causegraph/internal/config"
	"github.com/helixtrade/causegraph/internal/engine"
	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
	"github.com/helixtrade/causegraph/internal/tracing"
)

var (
	replayConfigPath   string
	replayTraceTarget  string
	replayPrettyOutput bool
)

// scenario is the YAML replay format: a named sequence of timed events.
type scenario struct {
	Name   string          `yaml:"name"`
	Events []scenarioEvent `yaml:"events"`
}

type scenarioEvent struct {
	OffsetMs    int64   `yaml:"offsetMs"` // since scenario start
	Subsystem   string  `yaml:"subsystem"`
	Type        string  `yaml:"type"`
	Severity    float64 `yaml:"severity"`
	Value       float64 `yaml:"value"`
	Description string  `yaml:"description"`
}

// replayReport is printed as JSON after the scenario has run.
type replayReport struct {
	Scenario        string                         `json:"scenario"`
	EventsReplayed  int                            `json:"eventsReplayed"`
	Summary         models.GraphSummary            `json:"summary"`
	RootCause       *models.RootCauseResult        `json:"rootCause"`
	Reconstructions []models.CascadeReconstruction `json:"reconstructions"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a recorded event scenario through the diagnosis engine",
	Long: `Replay loads a YAML scenario of timed subsystem events, feeds them
through a fresh engine at their recorded offsets on a deterministic clock,
and prints the resulting root-cause analysis and cascade reconstruction as
JSON. The same scenario always produces the same diagnosis, which makes
replay suitable for tuning heuristics and for regression baselines.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayConfigPath, "config", "",
		"Path to an engine configuration file (YAML)")
	replayCmd.Flags().StringVar(&replayTraceTarget, "trace-endpoint", "",
		"OTLP gRPC endpoint for span export; tracing is off when empty")
	replayCmd.Flags().BoolVar(&replayPrettyOutput, "pretty", false,
		"Indent the JSON report")
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger("replay")

	sc, err := loadScenario(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	affinity := config.DefaultAffinityTable()
	if replayConfigPath != "" {
		cfg, affinity, err = config.Load(replayConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:  replayTraceTarget != "",
		Endpoint: replayTraceTarget,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("tracing shutdown failed: %v", err)
		}
	}()
	tracer := provider.Tracer("replay")

	start := time.Now().UTC()
	clk := clock.NewManual(start)
	eng, err := engine.New(cfg, engine.WithClock(clk), engine.WithAffinity(affinity))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	logger.Info("replaying scenario %q, %d events", sc.Name, len(sc.Events))
	for _, ev := range sc.Events {
		clk.Set(start.Add(time.Duration(ev.OffsetMs) * time.Millisecond))
		_, span := tracer.Start(cmd.Context(), "replay.event",
			trace.WithAttributes(
				attribute.String("subsystem", ev.Subsystem),
				attribute.String("event.type", ev.Type),
			))
		eng.AddEvent(ev.Subsystem, models.EventType(ev.Type), ev.Severity, ev.Value, ev.Description)
		span.End()
	}

	_, span := tracer.Start(cmd.Context(), "replay.analyze")
	result := eng.AnalyzeRootCause()
	span.End()

	report := replayReport{
		Scenario:        sc.Name,
		EventsReplayed:  len(sc.Events),
		Summary:         eng.GraphSummary(),
		RootCause:       result,
		Reconstructions: eng.CascadeReconstructions(),
	}
	return printReport(report)
}

func loadScenario(path string) (scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	var sc scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if len(sc.Events) == 0 {
		return scenario{}, fmt.Errorf("scenario %s contains no events", path)
	}
	return sc, nil
}

func printReport(report replayReport) error {
	enc := json.NewEncoder(os.Stdout)
	if replayPrettyOutput {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
