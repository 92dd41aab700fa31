package config

import "time"

// Config holds the application configuration.
type Config struct {
	// OCI credentials and placement
	OCIConfigFile    string `yaml:"oci_config_file" env:"OCI_CONFIG_FILE" env-default:"~/.oci/config"`
	OCIProfile       string `yaml:"oci_profile" env:"OCI_PROFILE" env-default:"DEFAULT"`
	Region           string `yaml:"region,omitempty" env:"OCI_REGION"`
	CompartmentID    string `yaml:"compartment_ocid" env:"COMPARTMENT_OCID"`
	SubnetID         string `yaml:"subnet_ocid,omitempty" env:"SUBNET_OCID"`
	SSHPublicKeyPath string `yaml:"ssh_public_key_path" env:"SSH_PUBLIC_KEY_PATH" env-default:"~/.ssh/id_rsa.pub"`

	Instance  InstanceConfig  `yaml:"instance"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Image     ImageConfig     `yaml:"image"`
	Timeouts  Timeouts        `yaml:"timeouts"`
	Notify    NotifyConfig    `yaml:"notify,omitempty"`
	Record    RecordConfig    `yaml:"record"`

	MetricsAddr string `yaml:"metrics_addr,omitempty" env:"METRICS_ADDR"`
}

// InstanceConfig controls what is launched.
type InstanceConfig struct {
	NamePrefix    string `yaml:"name_prefix" env:"INSTANCE_NAME_PREFIX" env-default:"a1-free"`
	BootVolumeGB  int    `yaml:"boot_volume_gb" env:"BOOT_VOLUME_GB" env-default:"50"`
	CloudInitFile string `yaml:"cloud_init_file,omitempty" env:"CLOUD_INIT_FILE"`
}

// ScheduleConfig defines the candidate search space and cadence.
type ScheduleConfig struct {
	SleepSeconds        int      `yaml:"sleep_seconds" env:"SLEEP_SECONDS" env-default:"120"`
	AvailabilityDomains []string `yaml:"availability_domains,flow" env:"ADS" env-default:"AD-1,AD-2,AD-3"`
	OCPUs               []int    `yaml:"ocpus,flow" env:"OCPUS" env-default:"4,2,1"`
	MemPerOCPU          int      `yaml:"mem_per_ocpu" env:"MEM_PER_OCPU" env-default:"6"`
}

// SleepInterval returns the fixed backoff between attempts.
func (s ScheduleConfig) SleepInterval() time.Duration {
	return time.Duration(s.SleepSeconds) * time.Second
}

// DiscoveryConfig toggles the resolver's fallbacks.
type DiscoveryConfig struct {
	AutoDiscoverSubnet bool `yaml:"auto_discover_subnet" env:"AUTO_DISCOVER_SUBNET" env-default:"true"`
	AutoSwitchRegion   bool `yaml:"auto_switch_region" env:"AUTO_SWITCH_REGION" env-default:"true"`
}

// ImageConfig selects the boot image. ID wins over the OS/version search.
type ImageConfig struct {
	ID              string `yaml:"ocid,omitempty" env:"IMAGE_OCID"`
	OperatingSystem string `yaml:"os" env:"IMAGE_OS" env-default:"Canonical Ubuntu"`
	Version         string `yaml:"version" env:"IMAGE_VERSION" env-default:"22.04"`
	FallbackVersion string `yaml:"fallback_version" env:"IMAGE_FALLBACK_VERSION" env-default:"24.04"`
}

// Timeouts holds the launch wait settings.
type Timeouts struct {
	Launch       time.Duration `yaml:"launch" env:"LAUNCH_TIMEOUT" env-default:"900s"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL" env-default:"10s"`
}

// NotifyConfig configures the Telegram side channel. Empty disables it.
type NotifyConfig struct {
	TelegramBotToken string `yaml:"telegram_bot_token,omitempty" env:"TG_BOT_TOKEN"`
	TelegramChatID   string `yaml:"telegram_chat_id,omitempty" env:"TG_CHAT_ID"`
}

// Enabled reports whether both Telegram settings are present.
func (n NotifyConfig) Enabled() bool {
	return n.TelegramBotToken != "" && n.TelegramChatID != ""
}

// RecordConfig controls where the success record is written.
type RecordConfig struct {
	SuccessFile string         `yaml:"success_file" env:"SUCCESS_FILE" env-default:"SUCCESS.txt"`
	S3          S3RecordConfig `yaml:"s3,omitempty"`
}

// S3RecordConfig mirrors the success record to an S3-compatible bucket,
// typically OCI Object Storage through its S3 compatibility endpoint.
type S3RecordConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty" env:"RECORD_S3_ENDPOINT"`
	// Namespace derives the OCI compatibility endpoint when Endpoint is empty.
	Namespace string `yaml:"namespace,omitempty" env:"RECORD_S3_NAMESPACE"`
	Region    string `yaml:"region,omitempty" env:"RECORD_S3_REGION"`
	Bucket    string `yaml:"bucket,omitempty" env:"RECORD_S3_BUCKET"`
	Key       string `yaml:"key,omitempty" env:"RECORD_S3_KEY" env-default:"ociclaim/SUCCESS.txt"`
	AccessKey string `yaml:"access_key,omitempty" env:"RECORD_S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key,omitempty" env:"RECORD_S3_SECRET_KEY"`
}

// Enabled reports whether the S3 mirror is configured.
func (s S3RecordConfig) Enabled() bool {
	return s.Bucket != ""
}

// Default returns the built-in defaults, identical to what Load produces
// from an empty environment.
func Default() *Config {
	return &Config{
		OCIConfigFile:    "~/.oci/config",
		OCIProfile:       "DEFAULT",
		SSHPublicKeyPath: "~/.ssh/id_rsa.pub",
		Instance: InstanceConfig{
			NamePrefix:   "a1-free",
			BootVolumeGB: 50,
		},
		Schedule: ScheduleConfig{
			SleepSeconds:        120,
			AvailabilityDomains: []string{"AD-1", "AD-2", "AD-3"},
			OCPUs:               []int{4, 2, 1},
			MemPerOCPU:          6,
		},
		Discovery: DiscoveryConfig{
			AutoDiscoverSubnet: true,
			AutoSwitchRegion:   true,
		},
		Image: ImageConfig{
			OperatingSystem: "Canonical Ubuntu",
			Version:         "22.04",
			FallbackVersion: "24.04",
		},
		Timeouts: Timeouts{
			Launch:       900 * time.Second,
			PollInterval: 10 * time.Second,
		},
		Record: RecordConfig{
			SuccessFile: "SUCCESS.txt",
			S3:          S3RecordConfig{Key: "ociclaim/SUCCESS.txt"},
		},
	}
}
