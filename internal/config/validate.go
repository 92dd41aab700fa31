package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrConfiguration marks a fatal configuration problem detected before any
// remote call is made.
var ErrConfiguration = errors.New("configuration error")

// MinBootVolumeGB is the smallest boot volume OCI accepts.
const MinBootVolumeGB = 50

// Validate checks the configuration and returns the first problem found,
// wrapped with ErrConfiguration.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func (c *Config) validate() error {
	// Required fields
	if c.CompartmentID == "" {
		return fmt.Errorf("COMPARTMENT_OCID is required")
	}
	if c.SSHPublicKeyPath == "" {
		return fmt.Errorf("SSH_PUBLIC_KEY_PATH is required")
	}
	if _, err := os.Stat(c.SSHPublicKeyPath); err != nil {
		return fmt.Errorf("SSH public key not found at %s: %v", c.SSHPublicKeyPath, err)
	}

	if err := c.validateSchedule(); err != nil {
		return fmt.Errorf("schedule validation failed: %w", err)
	}

	if c.Instance.BootVolumeGB < MinBootVolumeGB {
		return fmt.Errorf("BOOT_VOLUME_GB must be at least %d, got %d", MinBootVolumeGB, c.Instance.BootVolumeGB)
	}
	if c.Timeouts.Launch <= 0 {
		return fmt.Errorf("LAUNCH_TIMEOUT must be positive")
	}
	if c.Timeouts.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	if (c.Notify.TelegramBotToken == "") != (c.Notify.TelegramChatID == "") {
		return fmt.Errorf("TG_BOT_TOKEN and TG_CHAT_ID must be set together")
	}

	if c.Record.SuccessFile == "" {
		return fmt.Errorf("SUCCESS_FILE is required")
	}
	if s3 := c.Record.S3; s3.Enabled() {
		if s3.Region == "" {
			return fmt.Errorf("RECORD_S3_REGION is required when RECORD_S3_BUCKET is set")
		}
		if (s3.AccessKey == "") != (s3.SecretKey == "") {
			return fmt.Errorf("RECORD_S3_ACCESS_KEY and RECORD_S3_SECRET_KEY must be set together")
		}
	}

	return nil
}

// validateSchedule validates the candidate search space.
func (c *Config) validateSchedule() error {
	s := c.Schedule
	if len(s.AvailabilityDomains) == 0 {
		return fmt.Errorf("ADS must list at least one availability domain")
	}
	if len(s.OCPUs) == 0 {
		return fmt.Errorf("OCPUS must list at least one size")
	}
	for _, o := range s.OCPUs {
		if o <= 0 {
			return fmt.Errorf("invalid OCPU count %d", o)
		}
	}
	if s.MemPerOCPU <= 0 {
		return fmt.Errorf("MEM_PER_OCPU must be positive, got %d", s.MemPerOCPU)
	}
	if s.SleepSeconds < 0 {
		return fmt.Errorf("SLEEP_SECONDS must not be negative, got %d", s.SleepSeconds)
	}
	return nil
}
