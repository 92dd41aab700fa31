package handlers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/notify"
	"github.com/imamik/ociclaim/internal/platform/oci"
	"github.com/imamik/ociclaim/internal/platform/s3"
	"github.com/imamik/ociclaim/internal/provisioning"
)

const testCompartment = "ocid1.compartment.oc1..test"

// captureOutput captures stdout during f.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// saveAndRestoreFactories saves and restores the run factory functions.
func saveAndRestoreFactories(t *testing.T) {
	origLoadConfig := loadConfig
	origNewProvider := newProvider
	origNewObjectClient := newObjectClient
	origNewNotifier := newNotifier
	origNewObserver := newObserver
	origNewRunID := newRunID
	origScheduleOptions := scheduleOptions

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newProvider = origNewProvider
		newObjectClient = origNewObjectClient
		newNotifier = origNewNotifier
		newObserver = origNewObserver
		newRunID = origNewRunID
		scheduleOptions = origScheduleOptions
	})

	newObserver = func() provisioning.Observer {
		return provisioning.NewObserver(logr.Discard())
	}
	newNotifier = func(config.NotifyConfig, notify.Logger) provisioning.Notifier {
		return notify.Discard{}
	}
	newRunID = func() string { return "test-run" }
	scheduleOptions = []provisioning.SchedulerOption{
		provisioning.WithDelay(func(context.Context, time.Duration) error { return nil }),
	}
}

// testConfig returns a config whose key and record live in a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "id_ed25519.pub")
	require.NoError(t, os.WriteFile(keyPath, ssh.MarshalAuthorizedKey(sshPub), 0600))

	cfg := config.Default()
	cfg.CompartmentID = testCompartment
	cfg.SSHPublicKeyPath = keyPath
	cfg.Record.SuccessFile = filepath.Join(dir, "SUCCESS.txt")
	cfg.Schedule.AvailabilityDomains = []string{"AD-1"}
	cfg.Schedule.OCPUs = []int{4, 2}
	cfg.Timeouts.PollInterval = time.Millisecond
	cfg.Timeouts.Launch = time.Second
	return cfg
}

// useConfig makes loadConfig return cfg.
func useConfig(cfg *config.Config) {
	loadConfig = func(string, string) (*config.Config, error) { return cfg, nil }
}

// claimableMock is a provider on which every step of a claim succeeds.
func claimableMock() *oci.MockClient {
	return &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
			return []oci.Subnet{{ID: "ocid1.subnet.oc1.phx.a", DisplayName: "public"}}, nil
		},
		ListAvailabilityDomainsFunc: func(context.Context, string) ([]string, error) {
			return []string{"Uocm:PHX-AD-1"}, nil
		},
		ListImagesFunc: func(context.Context, string, string) ([]oci.Image, error) {
			return []oci.Image{{ID: "ocid1.image.arm", DisplayName: "Canonical-Ubuntu-22.04-aarch64-2025.01.01-0"}}, nil
		},
	}
}

func useProvider(p oci.Provider) {
	newProvider = func(*config.Config, oci.Logger) (oci.Provider, error) { return p, nil }
}

// fakeObjectClient is an in-memory object store.
type fakeObjectClient struct {
	objects       map[string][]byte
	missingBucket bool
}

func (f *fakeObjectClient) BucketExists(context.Context, string) (bool, error) {
	return !f.missingBucket, nil
}

func (f *fakeObjectClient) PutObject(_ context.Context, bucket, key string, data []byte) error {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[bucket+"/"+key] = data
	return nil
}

func (f *fakeObjectClient) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, s3.ErrNotFound)
	}
	return data, nil
}
