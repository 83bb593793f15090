package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// fileSchema mirrors the YAML layout of a causegraph config file. All fields
// are optional; zeroes mean "use the default".
type fileSchema struct {
	Engine struct {
		MaxChainLength        int     `yaml:"maxChainLength"`
		MaxNodeAgeMs          int64   `yaml:"maxNodeAgeMs"`
		MinInfluenceScore     float64 `yaml:"minInfluenceScore"`
		MinConfidence         float64 `yaml:"minConfidence"`
		TimeLagWindowMs       int64   `yaml:"timeLagWindowMs"`
		CascadeDetection      *bool   `yaml:"cascadeDetection"`
		MaxLookbackCandidates int     `yaml:"maxLookbackCandidates"`
		HistoryLimit          int     `yaml:"historyLimit"`
		MaxTrackedSubsystems  int     `yaml:"maxTrackedSubsystems"`
	} `yaml:"engine"`
	Affinity struct {
		DefaultWeight float64 `yaml:"defaultWeight"`
		Pairs         []struct {
			From   string  `yaml:"from"`
			To     string  `yaml:"to"`
			Weight float64 `yaml:"weight"`
		} `yaml:"pairs"`
	} `yaml:"affinity"`
}

// Load reads a YAML config file with koanf and merges it onto the defaults.
// Unset fields keep their default; the affinity table starts from the
// built-in pairs only when the file configures none of its own.
//
// A read or parse error is returned to the caller; the expected handling is
// to log it and continue with DefaultConfig plus DefaultAffinityTable.
func Load(path string) (Config, *AffinityTable, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return DefaultConfig(), DefaultAffinityTable(),
			fmt.Errorf("failed to load config from %q: %w", path, err)
	}

	var schema fileSchema
	if err := k.UnmarshalWithConf("", &schema, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return DefaultConfig(), DefaultAffinityTable(),
			fmt.Errorf("failed to parse config from %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if schema.Engine.MaxChainLength > 0 {
		cfg.MaxChainLength = schema.Engine.MaxChainLength
	}
	if schema.Engine.MaxNodeAgeMs > 0 {
		cfg.MaxNodeAge = time.Duration(schema.Engine.MaxNodeAgeMs) * time.Millisecond
	}
	if schema.Engine.MinInfluenceScore > 0 {
		cfg.MinInfluenceScore = schema.Engine.MinInfluenceScore
	}
	if schema.Engine.MinConfidence > 0 {
		cfg.MinConfidence = schema.Engine.MinConfidence
	}
	if schema.Engine.TimeLagWindowMs > 0 {
		cfg.TimeLagWindow = time.Duration(schema.Engine.TimeLagWindowMs) * time.Millisecond
	}
	if schema.Engine.CascadeDetection != nil {
		cfg.CascadeDetection = *schema.Engine.CascadeDetection
	}
	if schema.Engine.MaxLookbackCandidates > 0 {
		cfg.MaxLookbackCandidates = schema.Engine.MaxLookbackCandidates
	}
	if schema.Engine.HistoryLimit > 0 {
		cfg.HistoryLimit = schema.Engine.HistoryLimit
	}
	if schema.Engine.MaxTrackedSubsystems > 0 {
		cfg.MaxTrackedSubsystems = schema.Engine.MaxTrackedSubsystems
	}

	affinity := buildAffinity(schema)

	return cfg.Normalized(), affinity, nil
}

func buildAffinity(schema fileSchema) *AffinityTable {
	if len(schema.Affinity.Pairs) == 0 {
		return DefaultAffinityTable()
	}

	defaultWeight := schema.Affinity.DefaultWeight
	if defaultWeight <= 0 {
		defaultWeight = DefaultAffinityWeight
	}

	table := NewAffinityTable(defaultWeight)
	for _, p := range schema.Affinity.Pairs {
		if p.From == "" || p.To == "" {
			continue
		}
		weight := p.Weight
		if weight <= 0 {
			weight = StrongAffinityWeight
		}
		table.Set(p.From, p.To, weight)
	}
	return table
}
