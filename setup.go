package main

import (
	"fmt"
	"log"

	"github.com/fmuoria/talent-screening-agent/internal/agent"
	"github.com/fmuoria/talent-screening-agent/internal/config"
	"github.com/fmuoria/talent-screening-agent/internal/events"
	"github.com/fmuoria/talent-screening-agent/internal/scoring"
)

// loadConfig reads the config file and applies environment overrides
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newAgent builds a screening agent from the configuration. The returned
// cleanup closes the event publisher, if any.
func newAgent(cfg *config.Config) (*agent.ScreeningAgent, func(), error) {
	scorer := scoring.NewScorer()
	if cfg.SkillsFile != "" {
		tables, err := scoring.LoadTables(cfg.SkillsFile)
		if err != nil {
			return nil, nil, err
		}
		if scorer, err = scoring.NewScorerWithTables(tables); err != nil {
			return nil, nil, err
		}
		log.Printf("Loaded %d skills from %s", len(tables.Skills), cfg.SkillsFile)
	}

	a := agent.NewScreeningAgent(scorer)
	cleanup := func() {}

	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		a.SetPublisher(pub)
		cleanup = func() {
			if err := pub.Close(); err != nil {
				log.Printf("Failed to close event publisher: %v", err)
			}
		}
		log.Printf("Publishing evaluations to exchange %s", cfg.AMQPExchange)
	}

	return a, cleanup, nil
}
