package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKey creates a throwaway public key file and returns its path.
func writeKey(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_ed25519.pub")
	require.NoError(t, os.WriteFile(path, []byte("ssh-ed25519 AAAA test\n"), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "ocid1.compartment.oc1..aaa")
	t.Setenv("SSH_PUBLIC_KEY_PATH", writeKey(t))

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "DEFAULT", cfg.OCIProfile)
	assert.Equal(t, "a1-free", cfg.Instance.NamePrefix)
	assert.Equal(t, 50, cfg.Instance.BootVolumeGB)
	assert.Equal(t, []string{"AD-1", "AD-2", "AD-3"}, cfg.Schedule.AvailabilityDomains)
	assert.Equal(t, []int{4, 2, 1}, cfg.Schedule.OCPUs)
	assert.Equal(t, 6, cfg.Schedule.MemPerOCPU)
	assert.Equal(t, 120*time.Second, cfg.Schedule.SleepInterval())
	assert.True(t, cfg.Discovery.AutoDiscoverSubnet)
	assert.True(t, cfg.Discovery.AutoSwitchRegion)
	assert.Equal(t, "Canonical Ubuntu", cfg.Image.OperatingSystem)
	assert.Equal(t, "22.04", cfg.Image.Version)
	assert.Equal(t, "24.04", cfg.Image.FallbackVersion)
	assert.Equal(t, 900*time.Second, cfg.Timeouts.Launch)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.PollInterval)
	assert.Equal(t, "SUCCESS.txt", cfg.Record.SuccessFile)
	assert.Equal(t, "ociclaim/SUCCESS.txt", cfg.Record.S3.Key)
	assert.False(t, cfg.Notify.Enabled())
	assert.False(t, cfg.Record.S3.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "ocid1.compartment.oc1..aaa")
	t.Setenv("SSH_PUBLIC_KEY_PATH", writeKey(t))
	t.Setenv("ADS", "AD-2,AD-3")
	t.Setenv("OCPUS", "2")
	t.Setenv("MEM_PER_OCPU", "8")
	t.Setenv("AUTO_SWITCH_REGION", "false")
	t.Setenv("LAUNCH_TIMEOUT", "5m")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"AD-2", "AD-3"}, cfg.Schedule.AvailabilityDomains)
	assert.Equal(t, []int{2}, cfg.Schedule.OCPUs)
	assert.Equal(t, 8, cfg.Schedule.MemPerOCPU)
	assert.False(t, cfg.Discovery.AutoSwitchRegion)
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.Launch)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	key := writeKey(t)
	content := "COMPARTMENT_OCID=ocid1.compartment.oc1..fromfile\n" +
		"SSH_PUBLIC_KEY_PATH=" + key + "\n" +
		"INSTANCE_NAME_PREFIX=fromfile\n"
	require.NoError(t, os.WriteFile(dotenv, []byte(content), 0600))

	t.Setenv("INSTANCE_NAME_PREFIX", "fromenv")
	// Registered so t.Setenv restores them after godotenv sets them.
	t.Setenv("COMPARTMENT_OCID", "")
	t.Setenv("SSH_PUBLIC_KEY_PATH", "")
	require.NoError(t, os.Unsetenv("COMPARTMENT_OCID"))
	require.NoError(t, os.Unsetenv("SSH_PUBLIC_KEY_PATH"))

	cfg, err := Load("", dotenv)
	require.NoError(t, err)

	assert.Equal(t, "ocid1.compartment.oc1..fromfile", cfg.CompartmentID)
	assert.Equal(t, "fromenv", cfg.Instance.NamePrefix)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "ocid1.compartment.oc1..aaa")
	t.Setenv("SSH_PUBLIC_KEY_PATH", writeKey(t))

	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestLoad_YAMLFile(t *testing.T) {
	key := writeKey(t)
	path := filepath.Join(t.TempDir(), "ociclaim.yaml")
	content := `compartment_ocid: ocid1.compartment.oc1..yaml
ssh_public_key_path: ` + key + `
instance:
  name_prefix: yaml-box
schedule:
  ocpus: [4]
discovery:
  auto_discover_subnet: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "ocid1.compartment.oc1..yaml", cfg.CompartmentID)
	assert.Equal(t, "yaml-box", cfg.Instance.NamePrefix)
	assert.Equal(t, []int{4}, cfg.Schedule.OCPUs)
	assert.False(t, cfg.Discovery.AutoDiscoverSubnet, "explicit false in the file must survive defaults")
	assert.True(t, cfg.Discovery.AutoSwitchRegion)
	assert.Equal(t, 6, cfg.Schedule.MemPerOCPU)
}

func TestLoad_ListEntriesAreTrimmed(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "ocid1.compartment.oc1..aaa")
	t.Setenv("SSH_PUBLIC_KEY_PATH", writeKey(t))
	t.Setenv("ADS", "AD-1, AD-2 ,,")
	t.Setenv("OCPUS", "4, 2")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"AD-1", "AD-2"}, cfg.Schedule.AvailabilityDomains)
	assert.Equal(t, []int{4, 2}, cfg.Schedule.OCPUs)
}

func TestLoad_YAMLZeroSleepSurvivesDefaults(t *testing.T) {
	key := writeKey(t)
	path := filepath.Join(t.TempDir(), "ociclaim.yaml")
	content := `compartment_ocid: ocid1.compartment.oc1..yaml
ssh_public_key_path: ` + key + `
schedule:
  sleep_seconds: 0
  availability_domains: [" AD-2 "]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Schedule.SleepSeconds)
	assert.Equal(t, []string{"AD-2"}, cfg.Schedule.AvailabilityDomains)

	t.Setenv("SLEEP_SECONDS", "30")
	cfg, err = Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Schedule.SleepSeconds, "environment wins over the file")
}

func TestLoad_MissingCompartment(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "")
	t.Setenv("SSH_PUBLIC_KEY_PATH", writeKey(t))

	_, err := Load("", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "COMPARTMENT_OCID")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh/id_rsa.pub"), ExpandHome("~/.ssh/id_rsa.pub"))
	assert.Equal(t, "/etc/key.pub", ExpandHome("/etc/key.pub"))
	assert.Equal(t, "relative/key.pub", ExpandHome("relative/key.pub"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestUsage(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "COMPARTMENT_OCID")
	assert.Contains(t, usage, "SLEEP_SECONDS")
}

func TestDefault_MatchesEnvironmentDefaults(t *testing.T) {
	t.Setenv("COMPARTMENT_OCID", "ocid1.compartment.oc1..aaa")
	key := writeKey(t)
	t.Setenv("SSH_PUBLIC_KEY_PATH", key)

	loaded, err := Load("", "")
	require.NoError(t, err)

	want := Default()
	want.CompartmentID = "ocid1.compartment.oc1..aaa"
	want.SSHPublicKeyPath = key
	want.expandPaths()

	assert.Equal(t, want, loaded)
}
