package oci

import (
	"context"
	"time"
)

// Lifecycle states reported by the compute service.
const (
	InstanceProvisioning = "PROVISIONING"
	InstanceStarting     = "STARTING"
	InstanceRunning      = "RUNNING"
	InstanceStopping     = "STOPPING"
	InstanceStopped      = "STOPPED"
	InstanceTerminating  = "TERMINATING"
	InstanceTerminated   = "TERMINATED"
)

// Compartment is a readable compartment (or the tenancy root).
type Compartment struct {
	ID             string
	Name           string
	LifecycleState string
}

// RegionSubscriptionReady is the status of a usable subscription.
const RegionSubscriptionReady = "READY"

// RegionSubscription is a region the tenancy is subscribed to.
type RegionSubscription struct {
	Name   string
	Key    string
	IsHome bool
	Status string
}

// Ready reports whether the subscription can be used.
func (s RegionSubscription) Ready() bool {
	return s.Status == RegionSubscriptionReady
}

// Subnet is a VCN subnet.
type Subnet struct {
	ID               string
	DisplayName      string
	CIDR             string
	VcnID            string
	ProhibitPublicIP bool
	LifecycleState   string
}

// Image is a platform or custom compute image.
type Image struct {
	ID                     string
	DisplayName            string
	OperatingSystem        string
	OperatingSystemVersion string
	TimeCreated            time.Time
}

// LaunchRequest holds all parameters for launching a flexible-shape instance.
type LaunchRequest struct {
	AvailabilityDomain string
	CompartmentID      string
	DisplayName        string
	Shape              string
	OCPUs              float32
	MemoryGB           float32
	SubnetID           string
	AssignPublicIP     bool
	ImageID            string
	BootVolumeSizeGB   int64
	SSHAuthorizedKeys  string
	// UserData is the base64-encoded cloud-init payload.
	UserData string
}

// Instance is a compute instance.
type Instance struct {
	ID                 string
	DisplayName        string
	AvailabilityDomain string
	LifecycleState     string
}

// VnicAttachment binds a VNIC to an instance.
type VnicAttachment struct {
	ID             string
	VnicID         string
	LifecycleState string
}

// Vnic is a virtual network interface.
type Vnic struct {
	ID        string
	PublicIP  string
	PrivateIP string
}

// IdentityReader reads tenancy level identity data.
type IdentityReader interface {
	GetCompartment(ctx context.Context, compartmentID string) (*Compartment, error)
	ListAvailabilityDomains(ctx context.Context, compartmentID string) ([]string, error)
	ListRegionSubscriptions(ctx context.Context) ([]RegionSubscription, error)
}

// NetworkReader reads subnets and VNICs.
type NetworkReader interface {
	GetSubnet(ctx context.Context, subnetID string) (*Subnet, error)
	// ListSubnets returns the AVAILABLE subnets of a compartment, all pages.
	ListSubnets(ctx context.Context, compartmentID string) ([]Subnet, error)
	GetVnic(ctx context.Context, vnicID string) (*Vnic, error)
}

// ImageReader reads compute images.
type ImageReader interface {
	// ListImages returns images for an operating system, newest first, all pages.
	ListImages(ctx context.Context, compartmentID, operatingSystem string) ([]Image, error)
	GetImage(ctx context.Context, imageID string) (*Image, error)
}

// InstanceManager launches and inspects instances.
type InstanceManager interface {
	LaunchInstance(ctx context.Context, req LaunchRequest) (*Instance, error)
	GetInstance(ctx context.Context, instanceID string) (*Instance, error)
	ListVnicAttachments(ctx context.Context, compartmentID, instanceID string) ([]VnicAttachment, error)
}

// Provider is the full region-bound cloud API used by the claim engine.
type Provider interface {
	IdentityReader
	NetworkReader
	ImageReader
	InstanceManager

	// Region returns the region this provider targets.
	Region() string
	// ForRegion returns a provider for another region with the same credentials.
	ForRegion(region string) (Provider, error)
}
