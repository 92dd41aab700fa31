package oci

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/identity"

	"github.com/imamik/ociclaim/internal/util/retry"
)

// RealClient implements Provider using the OCI Go SDK.
type RealClient struct {
	configProvider common.ConfigurationProvider
	region         string
	tenancyID      string

	identity identity.IdentityClient
	compute  core.ComputeClient
	network  core.VirtualNetworkClient

	retryOpts []retry.Option
	logger    Logger
}

// Logger receives retry notices for read calls.
type Logger interface {
	Printf(format string, v ...interface{})
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithLogger reports every retried read call to logger.
func WithLogger(logger Logger) ClientOption {
	return func(c *RealClient) {
		c.logger = logger
	}
}

// WithRetryOptions overrides the backoff used for read calls.
func WithRetryOptions(opts ...retry.Option) ClientOption {
	return func(c *RealClient) {
		c.retryOpts = opts
	}
}

// NewRealClient creates a client from an OCI CLI style config file.
// An empty region uses the profile's region.
func NewRealClient(configFile, profile, region string, opts ...ClientOption) (*RealClient, error) {
	cp, err := common.ConfigurationProviderFromFileWithProfile(configFile, profile, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load OCI config %s [%s]: %w", configFile, profile, err)
	}

	if region == "" {
		region, err = cp.Region()
		if err != nil {
			return nil, fmt.Errorf("failed to read region from OCI config: %w", err)
		}
	}

	tenancyID, err := cp.TenancyOCID()
	if err != nil {
		return nil, fmt.Errorf("failed to read tenancy from OCI config: %w", err)
	}

	return newRealClient(cp, region, tenancyID, opts...)
}

func newRealClient(cp common.ConfigurationProvider, region, tenancyID string, opts ...ClientOption) (*RealClient, error) {
	identityClient, err := identity.NewIdentityClientWithConfigurationProvider(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}
	identityClient.SetRegion(region)

	computeClient, err := core.NewComputeClientWithConfigurationProvider(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}
	computeClient.SetRegion(region)

	networkClient, err := core.NewVirtualNetworkClientWithConfigurationProvider(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to create network client: %w", err)
	}
	networkClient.SetRegion(region)

	c := &RealClient{
		configProvider: cp,
		region:         region,
		tenancyID:      tenancyID,
		identity:       identityClient,
		compute:        computeClient,
		network:        networkClient,
		retryOpts: []retry.Option{
			retry.WithMaxRetries(3),
			retry.WithInitialDelay(2 * time.Second),
			retry.WithMultiplier(1.5),
			retry.WithMaxDelay(10 * time.Second),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Region implements Provider.
func (c *RealClient) Region() string {
	return c.region
}

// ForRegion implements Provider.
func (c *RealClient) ForRegion(region string) (Provider, error) {
	if region == c.region {
		return c, nil
	}
	return newRealClient(c.configProvider, region, c.tenancyID, WithRetryOptions(c.retryOpts...), WithLogger(c.logger))
}

// GetCompartment implements IdentityReader.
func (c *RealClient) GetCompartment(ctx context.Context, compartmentID string) (*Compartment, error) {
	var out *Compartment
	err := c.read(ctx, "get compartment", func() error {
		resp, err := c.identity.GetCompartment(ctx, identity.GetCompartmentRequest{
			CompartmentId: common.String(compartmentID),
		})
		if err != nil {
			return err
		}
		out = &Compartment{
			ID:             str(resp.Id),
			Name:           str(resp.Name),
			LifecycleState: string(resp.LifecycleState),
		}
		return nil
	})
	return out, err
}

// ListAvailabilityDomains implements IdentityReader.
func (c *RealClient) ListAvailabilityDomains(ctx context.Context, compartmentID string) ([]string, error) {
	var names []string
	err := c.read(ctx, "list availability domains", func() error {
		resp, err := c.identity.ListAvailabilityDomains(ctx, identity.ListAvailabilityDomainsRequest{
			CompartmentId: common.String(compartmentID),
		})
		if err != nil {
			return err
		}
		names = names[:0]
		for _, ad := range resp.Items {
			names = append(names, str(ad.Name))
		}
		return nil
	})
	return names, err
}

// ListRegionSubscriptions implements IdentityReader.
func (c *RealClient) ListRegionSubscriptions(ctx context.Context) ([]RegionSubscription, error) {
	var subs []RegionSubscription
	err := c.read(ctx, "list region subscriptions", func() error {
		resp, err := c.identity.ListRegionSubscriptions(ctx, identity.ListRegionSubscriptionsRequest{
			TenancyId: common.String(c.tenancyID),
		})
		if err != nil {
			return err
		}
		subs = subs[:0]
		for _, s := range resp.Items {
			subs = append(subs, RegionSubscription{
				Name:   str(s.RegionName),
				Key:    str(s.RegionKey),
				IsHome: s.IsHomeRegion != nil && *s.IsHomeRegion,
				Status: string(s.Status),
			})
		}
		return nil
	})
	return subs, err
}

// GetSubnet implements NetworkReader.
func (c *RealClient) GetSubnet(ctx context.Context, subnetID string) (*Subnet, error) {
	var out *Subnet
	err := c.read(ctx, "get subnet", func() error {
		resp, err := c.network.GetSubnet(ctx, core.GetSubnetRequest{
			SubnetId: common.String(subnetID),
		})
		if err != nil {
			return err
		}
		s := subnetFromSDK(resp.Subnet)
		out = &s
		return nil
	})
	return out, err
}

// ListSubnets implements NetworkReader.
func (c *RealClient) ListSubnets(ctx context.Context, compartmentID string) ([]Subnet, error) {
	var all []Subnet
	var page *string
	for {
		var next *string
		err := c.read(ctx, "list subnets", func() error {
			resp, err := c.network.ListSubnets(ctx, core.ListSubnetsRequest{
				CompartmentId:  common.String(compartmentID),
				LifecycleState: core.SubnetLifecycleStateAvailable,
				Page:           page,
			})
			if err != nil {
				return err
			}
			for _, s := range resp.Items {
				all = append(all, subnetFromSDK(s))
			}
			next = resp.OpcNextPage
			return nil
		})
		if err != nil {
			return nil, err
		}
		if next == nil || *next == "" {
			return all, nil
		}
		page = next
	}
}

// GetVnic implements NetworkReader.
func (c *RealClient) GetVnic(ctx context.Context, vnicID string) (*Vnic, error) {
	var out *Vnic
	err := c.read(ctx, "get vnic", func() error {
		resp, err := c.network.GetVnic(ctx, core.GetVnicRequest{
			VnicId: common.String(vnicID),
		})
		if err != nil {
			return err
		}
		out = &Vnic{
			ID:        str(resp.Id),
			PublicIP:  str(resp.PublicIp),
			PrivateIP: str(resp.PrivateIp),
		}
		return nil
	})
	return out, err
}

// ListImages implements ImageReader.
func (c *RealClient) ListImages(ctx context.Context, compartmentID, operatingSystem string) ([]Image, error) {
	var all []Image
	var page *string
	for {
		var next *string
		err := c.read(ctx, "list images", func() error {
			resp, err := c.compute.ListImages(ctx, core.ListImagesRequest{
				CompartmentId:   common.String(compartmentID),
				OperatingSystem: common.String(operatingSystem),
				SortBy:          core.ListImagesSortByTimecreated,
				SortOrder:       core.ListImagesSortOrderDesc,
				Page:            page,
			})
			if err != nil {
				return err
			}
			for _, img := range resp.Items {
				all = append(all, imageFromSDK(img))
			}
			next = resp.OpcNextPage
			return nil
		})
		if err != nil {
			return nil, err
		}
		if next == nil || *next == "" {
			return all, nil
		}
		page = next
	}
}

// GetImage implements ImageReader.
func (c *RealClient) GetImage(ctx context.Context, imageID string) (*Image, error) {
	var out *Image
	err := c.read(ctx, "get image", func() error {
		resp, err := c.compute.GetImage(ctx, core.GetImageRequest{
			ImageId: common.String(imageID),
		})
		if err != nil {
			return err
		}
		img := imageFromSDK(resp.Image)
		out = &img
		return nil
	})
	return out, err
}

// LaunchInstance implements InstanceManager. It is not retried.
func (c *RealClient) LaunchInstance(ctx context.Context, req LaunchRequest) (*Instance, error) {
	details := core.LaunchInstanceDetails{
		AvailabilityDomain: common.String(req.AvailabilityDomain),
		CompartmentId:      common.String(req.CompartmentID),
		DisplayName:        common.String(req.DisplayName),
		Shape:              common.String(req.Shape),
		ShapeConfig: &core.LaunchInstanceShapeConfigDetails{
			Ocpus:       common.Float32(req.OCPUs),
			MemoryInGBs: common.Float32(req.MemoryGB),
		},
		CreateVnicDetails: &core.CreateVnicDetails{
			SubnetId:       common.String(req.SubnetID),
			AssignPublicIp: common.Bool(req.AssignPublicIP),
		},
		Metadata: launchMetadata(req),
		SourceDetails: core.InstanceSourceViaImageDetails{
			ImageId:             common.String(req.ImageID),
			BootVolumeSizeInGBs: common.Int64(req.BootVolumeSizeGB),
		},
	}

	resp, err := c.compute.LaunchInstance(ctx, core.LaunchInstanceRequest{
		LaunchInstanceDetails: details,
	})
	if err != nil {
		return nil, fmt.Errorf("launch instance: %w", toAPIError(err))
	}
	return instanceFromSDK(resp.Instance), nil
}

// GetInstance implements InstanceManager.
func (c *RealClient) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	var out *Instance
	err := c.read(ctx, "get instance", func() error {
		resp, err := c.compute.GetInstance(ctx, core.GetInstanceRequest{
			InstanceId: common.String(instanceID),
		})
		if err != nil {
			return err
		}
		out = instanceFromSDK(resp.Instance)
		return nil
	})
	return out, err
}

// ListVnicAttachments implements InstanceManager.
func (c *RealClient) ListVnicAttachments(ctx context.Context, compartmentID, instanceID string) ([]VnicAttachment, error) {
	var atts []VnicAttachment
	err := c.read(ctx, "list vnic attachments", func() error {
		resp, err := c.compute.ListVnicAttachments(ctx, core.ListVnicAttachmentsRequest{
			CompartmentId: common.String(compartmentID),
			InstanceId:    common.String(instanceID),
		})
		if err != nil {
			return err
		}
		atts = atts[:0]
		for _, a := range resp.Items {
			atts = append(atts, VnicAttachment{
				ID:             str(a.Id),
				VnicID:         str(a.VnicId),
				LifecycleState: string(a.LifecycleState),
			})
		}
		return nil
	})
	return atts, err
}

// read runs an idempotent SDK call with backoff. Client errors are fatal.
func (c *RealClient) read(ctx context.Context, op string, call func() error) error {
	opts := append([]retry.Option{}, c.retryOpts...)
	if c.logger != nil {
		opts = append(opts, retry.WithOnRetry(func(attempt int, err error) {
			c.logger.Printf("%s: attempt %d failed, retrying: %v", op, attempt, err)
		}))
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		err := call()
		if err == nil {
			return nil
		}
		err = toAPIError(err)
		if isClientError(err) {
			return retry.Fatal(err)
		}
		return err
	}, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// serviceError matches the SDK's service failure without naming its
// concrete type.
type serviceError interface {
	GetHTTPStatusCode() int
	GetMessage() string
	GetCode() string
	GetOpcRequestID() string
}

// toAPIError converts an SDK service failure into *APIError. Other errors
// are returned unchanged.
func toAPIError(err error) error {
	var svc serviceError
	if errors.As(err, &svc) {
		return &APIError{
			StatusCode:   svc.GetHTTPStatusCode(),
			Code:         svc.GetCode(),
			Message:      svc.GetMessage(),
			OpcRequestID: svc.GetOpcRequestID(),
		}
	}
	return err
}

func launchMetadata(req LaunchRequest) map[string]string {
	md := map[string]string{
		"ssh_authorized_keys": req.SSHAuthorizedKeys,
	}
	if req.UserData != "" {
		md["user_data"] = req.UserData
	}
	return md
}

func subnetFromSDK(s core.Subnet) Subnet {
	return Subnet{
		ID:               str(s.Id),
		DisplayName:      str(s.DisplayName),
		CIDR:             str(s.CidrBlock),
		VcnID:            str(s.VcnId),
		ProhibitPublicIP: s.ProhibitPublicIpOnVnic != nil && *s.ProhibitPublicIpOnVnic,
		LifecycleState:   string(s.LifecycleState),
	}
}

func imageFromSDK(img core.Image) Image {
	out := Image{
		ID:                     str(img.Id),
		DisplayName:            str(img.DisplayName),
		OperatingSystem:        str(img.OperatingSystem),
		OperatingSystemVersion: str(img.OperatingSystemVersion),
	}
	if img.TimeCreated != nil {
		out.TimeCreated = img.TimeCreated.Time
	}
	return out
}

func instanceFromSDK(inst core.Instance) *Instance {
	return &Instance{
		ID:                 str(inst.Id),
		DisplayName:        str(inst.DisplayName),
		AvailabilityDomain: str(inst.AvailabilityDomain),
		LifecycleState:     string(inst.LifecycleState),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
