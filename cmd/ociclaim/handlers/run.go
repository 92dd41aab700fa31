// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/notify"
	"github.com/imamik/ociclaim/internal/platform/oci"
	"github.com/imamik/ociclaim/internal/platform/s3"
	"github.com/imamik/ociclaim/internal/provisioning"
	"github.com/imamik/ociclaim/internal/record"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads and validates configuration.
	loadConfig = config.Load

	// newProvider creates the OCI client for the configured region.
	newProvider = func(cfg *config.Config, logger oci.Logger) (oci.Provider, error) {
		client, err := oci.NewRealClient(cfg.OCIConfigFile, cfg.OCIProfile, cfg.Region, oci.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	// newObjectClient creates the object storage client for the record mirror.
	newObjectClient = func(ctx context.Context, cfg config.S3RecordConfig) (objectClient, error) {
		return s3.NewClient(ctx, s3.Options{
			Endpoint:  objectEndpoint(cfg),
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	}

	// newNotifier creates the progress notifier.
	newNotifier = func(cfg config.NotifyConfig, logger notify.Logger) provisioning.Notifier {
		return notify.New(cfg, logger)
	}

	// newObserver creates the root observer.
	newObserver = func() provisioning.Observer {
		return provisioning.NewConsoleObserver()
	}

	// newRunID tags every log line of one run.
	newRunID = uuid.NewString

	// scheduleOptions are appended to the scheduler options.
	scheduleOptions []provisioning.SchedulerOption
)

// Run claims an instance.
//
// The workflow is:
//  1. Load configuration (.env, optional YAML, environment) and validate it
//  2. Stop early if a success record exists, unless force is set
//  3. Resolve compartment, subnet (switching region if needed), ADs and image
//  4. Attempt candidates until one succeeds or one is not retryable
//
// Cancelling ctx stops the loop between or during attempts.
func Run(ctx context.Context, configPath, envFile string, force bool) error {
	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		return err
	}

	observer := newObserver().WithFields(map[string]string{"run": newRunID()})

	sshKey, err := provisioning.LoadSSHPublicKey(cfg.SSHPublicKeyPath)
	if err != nil {
		return err
	}
	userData, err := provisioning.LoadUserData(cfg.Instance.CloudInitFile)
	if err != nil {
		return err
	}

	store, err := buildRecordStore(ctx, cfg)
	if err != nil {
		return err
	}

	if !force {
		prior, err := store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to read success record: %w", err)
		}
		if prior != nil {
			fmt.Print(renderPriorRecord(prior, cfg.Record.SuccessFile))
			return nil
		}
	}

	if cfg.MetricsAddr != "" {
		_, stop, err := startMetricsServer(cfg.MetricsAddr, observer)
		if err != nil {
			return err
		}
		defer stop()
	}

	notifier := newNotifier(cfg.Notify, observer)

	provider, err := newProvider(cfg, observer)
	if err != nil {
		return fmt.Errorf("failed to create OCI client: %w", err)
	}

	env, regional, err := provisioning.NewResolver(provider, cfg, observer, notifier).Resolve(ctx)
	if err != nil {
		return err
	}

	attempt := provisioning.NewProvisionAttempt(regional, cfg, sshKey, userData, observer)

	opts := append([]provisioning.SchedulerOption{provisioning.WithNotifier(notifier)}, scheduleOptions...)
	scheduler, err := provisioning.NewScheduler(env, cfg, attempt, store, observer, opts...)
	if err != nil {
		return err
	}

	state, runErr := scheduler.Run(ctx)
	fmt.Print(renderRunSummary(env, state, cfg.Record.SuccessFile))

	var abort *provisioning.AbortError
	if errors.As(runErr, &abort) {
		return fmt.Errorf("claim aborted: %w", runErr)
	}
	return runErr
}

// buildRecordStore returns the success file store, mirrored to object
// storage when a bucket is configured. The file is the primary.
func buildRecordStore(ctx context.Context, cfg *config.Config) (record.Store, error) {
	stores := record.Multi{record.NewFileStore(cfg.Record.SuccessFile)}

	if cfg.Record.S3.Enabled() {
		client, err := newObjectClient(ctx, cfg.Record.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create object storage client: %w", err)
		}
		exists, err := client.BucketExists(ctx, cfg.Record.S3.Bucket)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: bucket %s does not exist or is not accessible", config.ErrConfiguration, cfg.Record.S3.Bucket)
		}
		stores = append(stores, record.NewObjectStore(client, cfg.Record.S3.Bucket, cfg.Record.S3.Key))
	}

	return stores, nil
}

// objectClient is what the record mirror needs from object storage.
type objectClient interface {
	record.ObjectClient
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// objectEndpoint returns the configured endpoint, or the OCI compatibility
// endpoint of the namespace.
func objectEndpoint(cfg config.S3RecordConfig) string {
	if cfg.Endpoint == "" && cfg.Namespace != "" {
		return s3.CompatEndpoint(cfg.Namespace, cfg.Region)
	}
	return cfg.Endpoint
}
