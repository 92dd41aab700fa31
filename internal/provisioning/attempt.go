package provisioning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/platform/oci"
	"github.com/imamik/ociclaim/internal/util/naming"
)

// Shape is the only shape the engine launches.
const Shape = "VM.Standard.A1.Flex"

// DefaultCloudInit is used when no cloud-init file is configured.
const DefaultCloudInit = `#cloud-config
package_update: true
packages:
  - curl
  - htop
runcmd:
  - timedatectl set-timezone Asia/Shanghai || true
  - ufw disable || true
`

var errInstanceTerminated = errors.New("instance terminated while launching")

// LoadSSHPublicKey reads and validates an authorized_keys style public key.
// Failures are configuration errors.
func LoadSSHPublicKey(path string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read SSH public key: %v", config.ErrConfiguration, err)
	}
	if _, _, _, _, err := ssh.ParseAuthorizedKey(data); err != nil {
		return "", fmt.Errorf("%w: parse SSH public key %s: %v", config.ErrConfiguration, path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadUserData returns the base64 cloud-init payload from path, or the
// built-in payload when path is empty.
func LoadUserData(path string) (string, error) {
	if path == "" {
		return EncodeUserData(DefaultCloudInit), nil
	}
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read cloud-init file: %v", config.ErrConfiguration, err)
	}
	return EncodeUserData(string(data)), nil
}

// EncodeUserData base64-encodes a cloud-init payload for instance metadata.
func EncodeUserData(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ProvisionAttempt launches one instance and waits for it to run.
type ProvisionAttempt struct {
	provider      oci.Provider
	namePrefix    string
	bootVolumeGB  int64
	sshKey        string
	userData      string
	launchTimeout time.Duration
	pollInterval  time.Duration
	observer      Observer
}

// NewProvisionAttempt creates an attempter bound to provider's region.
// sshKey is the authorized key content and userData the base64 payload.
func NewProvisionAttempt(provider oci.Provider, cfg *config.Config, sshKey, userData string, observer Observer) *ProvisionAttempt {
	return &ProvisionAttempt{
		provider:      provider,
		namePrefix:    cfg.Instance.NamePrefix,
		bootVolumeGB:  int64(cfg.Instance.BootVolumeGB),
		sshKey:        sshKey,
		userData:      userData,
		launchTimeout: cfg.Timeouts.Launch,
		pollInterval:  cfg.Timeouts.PollInterval,
		observer:      observer,
	}
}

// LaunchRequest builds the request for a candidate.
func (a *ProvisionAttempt) LaunchRequest(env ResolvedEnvironment, c CandidateSpec) oci.LaunchRequest {
	return oci.LaunchRequest{
		AvailabilityDomain: c.AvailabilityDomain,
		CompartmentID:      env.CompartmentID,
		DisplayName:        naming.Instance(a.namePrefix, c.AvailabilityDomain, c.OCPUs, c.MemoryGB),
		Shape:              Shape,
		OCPUs:              float32(c.OCPUs),
		MemoryGB:           float32(c.MemoryGB),
		SubnetID:           env.SubnetID,
		AssignPublicIP:     true,
		ImageID:            env.ImageID,
		BootVolumeSizeGB:   a.bootVolumeGB,
		SSHAuthorizedKeys:  a.sshKey,
		UserData:           a.userData,
	}
}

// Attempt implements Attempter. It never retries internally.
func (a *ProvisionAttempt) Attempt(ctx context.Context, env ResolvedEnvironment, c CandidateSpec) AttemptOutcome {
	inst, err := a.provider.LaunchInstance(ctx, a.LaunchRequest(env, c))
	if err != nil {
		return ClassifyError(err)
	}
	a.observer.Printf("launch accepted: %s (%s), waiting for RUNNING", inst.DisplayName, inst.ID)

	if outcome, ok := a.waitForRunning(ctx, inst.ID); !ok {
		return outcome
	}

	attachments, err := a.provider.ListVnicAttachments(ctx, env.CompartmentID, inst.ID)
	if err != nil {
		return ClassifyError(err)
	}
	if len(attachments) == 0 {
		return TransientError(0, fmt.Sprintf("instance %s is running but has no VNIC attachment", inst.ID))
	}

	vnic, err := a.provider.GetVnic(ctx, attachments[0].VnicID)
	if err != nil {
		return ClassifyError(err)
	}

	return Success(inst.ID, vnic.PublicIP)
}

// waitForRunning polls until the instance is RUNNING. The bool is false when
// the returned outcome is a failure.
func (a *ProvisionAttempt) waitForRunning(ctx context.Context, instanceID string) (AttemptOutcome, bool) {
	var lastState string
	err := wait.PollUntilContextTimeout(ctx, a.pollInterval, a.launchTimeout, true, func(ctx context.Context) (bool, error) {
		inst, err := a.provider.GetInstance(ctx, instanceID)
		if err != nil {
			return false, err
		}
		if inst.LifecycleState != lastState {
			a.observer.Printf("instance %s: %s", instanceID, inst.LifecycleState)
			lastState = inst.LifecycleState
		}
		switch inst.LifecycleState {
		case oci.InstanceRunning:
			return true, nil
		case oci.InstanceTerminating, oci.InstanceTerminated:
			return false, errInstanceTerminated
		}
		return false, nil
	})

	switch {
	case err == nil:
		return AttemptOutcome{}, true
	case errors.Is(err, errInstanceTerminated):
		return TransientError(0, fmt.Sprintf("instance %s entered %s", instanceID, lastState)), false
	case wait.Interrupted(err):
		if ctx.Err() != nil {
			return TransientError(0, fmt.Sprintf("launch wait cancelled: %v", ctx.Err())), false
		}
		return TransientError(0, fmt.Sprintf("launch timed out after %v (last state %s)", a.launchTimeout, lastState)), false
	default:
		return ClassifyError(err), false
	}
}
