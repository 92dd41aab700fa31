package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/ociclaim/internal/provisioning"
)

// Resolve runs environment resolution only and prints what run would do.
func Resolve(ctx context.Context, configPath, envFile string) error {
	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		return err
	}

	observer := newObserver().WithFields(map[string]string{"run": newRunID()})

	provider, err := newProvider(cfg, observer)
	if err != nil {
		return fmt.Errorf("failed to create OCI client: %w", err)
	}

	env, _, err := provisioning.NewResolver(provider, cfg, observer, nil).Resolve(ctx)
	if err != nil {
		return err
	}

	candidates := provisioning.BuildCandidates(env.AvailabilityDomains, cfg.Schedule.OCPUs, cfg.Schedule.MemPerOCPU)
	fmt.Print(renderEnvironment(env, candidates))
	return nil
}
