package oci

import (
	"context"
	"fmt"
	"net/http"
)

// MockClient is a Provider with overridable behavior for tests.
// Unset function fields fall back to simple defaults: reads of single
// resources report 404, lists are empty, launches succeed.
type MockClient struct {
	RegionName string
	// Siblings are returned by ForRegion when ForRegionFunc is nil.
	Siblings map[string]*MockClient

	GetCompartmentFunc          func(ctx context.Context, compartmentID string) (*Compartment, error)
	ListAvailabilityDomainsFunc func(ctx context.Context, compartmentID string) ([]string, error)
	ListRegionSubscriptionsFunc func(ctx context.Context) ([]RegionSubscription, error)
	GetSubnetFunc               func(ctx context.Context, subnetID string) (*Subnet, error)
	ListSubnetsFunc             func(ctx context.Context, compartmentID string) ([]Subnet, error)
	GetVnicFunc                 func(ctx context.Context, vnicID string) (*Vnic, error)
	ListImagesFunc              func(ctx context.Context, compartmentID, operatingSystem string) ([]Image, error)
	GetImageFunc                func(ctx context.Context, imageID string) (*Image, error)
	LaunchInstanceFunc          func(ctx context.Context, req LaunchRequest) (*Instance, error)
	GetInstanceFunc             func(ctx context.Context, instanceID string) (*Instance, error)
	ListVnicAttachmentsFunc     func(ctx context.Context, compartmentID, instanceID string) ([]VnicAttachment, error)
	ForRegionFunc               func(region string) (Provider, error)
}

var _ Provider = (*MockClient)(nil)

// NotFoundError returns the 404 a real service reports for a missing or
// inaccessible resource.
func NotFoundError(resource string) error {
	return &APIError{
		StatusCode: http.StatusNotFound,
		Code:       "NotAuthorizedOrNotFound",
		Message:    fmt.Sprintf("Authorization failed or requested resource not found: %s", resource),
	}
}

// Region implements Provider.
func (m *MockClient) Region() string {
	return m.RegionName
}

// ForRegion implements Provider.
func (m *MockClient) ForRegion(region string) (Provider, error) {
	if m.ForRegionFunc != nil {
		return m.ForRegionFunc(region)
	}
	if region == m.RegionName {
		return m, nil
	}
	if sibling, ok := m.Siblings[region]; ok {
		return sibling, nil
	}
	return &MockClient{RegionName: region}, nil
}

// GetCompartment implements IdentityReader.
func (m *MockClient) GetCompartment(ctx context.Context, compartmentID string) (*Compartment, error) {
	if m.GetCompartmentFunc != nil {
		return m.GetCompartmentFunc(ctx, compartmentID)
	}
	return &Compartment{ID: compartmentID, Name: "mock", LifecycleState: "ACTIVE"}, nil
}

// ListAvailabilityDomains implements IdentityReader.
func (m *MockClient) ListAvailabilityDomains(ctx context.Context, compartmentID string) ([]string, error) {
	if m.ListAvailabilityDomainsFunc != nil {
		return m.ListAvailabilityDomainsFunc(ctx, compartmentID)
	}
	return nil, nil
}

// ListRegionSubscriptions implements IdentityReader.
func (m *MockClient) ListRegionSubscriptions(ctx context.Context) ([]RegionSubscription, error) {
	if m.ListRegionSubscriptionsFunc != nil {
		return m.ListRegionSubscriptionsFunc(ctx)
	}
	return []RegionSubscription{{Name: m.RegionName, IsHome: true, Status: RegionSubscriptionReady}}, nil
}

// GetSubnet implements NetworkReader.
func (m *MockClient) GetSubnet(ctx context.Context, subnetID string) (*Subnet, error) {
	if m.GetSubnetFunc != nil {
		return m.GetSubnetFunc(ctx, subnetID)
	}
	return nil, NotFoundError(subnetID)
}

// ListSubnets implements NetworkReader.
func (m *MockClient) ListSubnets(ctx context.Context, compartmentID string) ([]Subnet, error) {
	if m.ListSubnetsFunc != nil {
		return m.ListSubnetsFunc(ctx, compartmentID)
	}
	return nil, nil
}

// GetVnic implements NetworkReader.
func (m *MockClient) GetVnic(ctx context.Context, vnicID string) (*Vnic, error) {
	if m.GetVnicFunc != nil {
		return m.GetVnicFunc(ctx, vnicID)
	}
	return &Vnic{ID: vnicID, PublicIP: "127.0.0.1", PrivateIP: "10.0.0.2"}, nil
}

// ListImages implements ImageReader.
func (m *MockClient) ListImages(ctx context.Context, compartmentID, operatingSystem string) ([]Image, error) {
	if m.ListImagesFunc != nil {
		return m.ListImagesFunc(ctx, compartmentID, operatingSystem)
	}
	return nil, nil
}

// GetImage implements ImageReader.
func (m *MockClient) GetImage(ctx context.Context, imageID string) (*Image, error) {
	if m.GetImageFunc != nil {
		return m.GetImageFunc(ctx, imageID)
	}
	return nil, NotFoundError(imageID)
}

// LaunchInstance implements InstanceManager.
func (m *MockClient) LaunchInstance(ctx context.Context, req LaunchRequest) (*Instance, error) {
	if m.LaunchInstanceFunc != nil {
		return m.LaunchInstanceFunc(ctx, req)
	}
	return &Instance{
		ID:                 "ocid1.instance.mock",
		DisplayName:        req.DisplayName,
		AvailabilityDomain: req.AvailabilityDomain,
		LifecycleState:     InstanceProvisioning,
	}, nil
}

// GetInstance implements InstanceManager.
func (m *MockClient) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	if m.GetInstanceFunc != nil {
		return m.GetInstanceFunc(ctx, instanceID)
	}
	return &Instance{ID: instanceID, LifecycleState: InstanceRunning}, nil
}

// ListVnicAttachments implements InstanceManager.
func (m *MockClient) ListVnicAttachments(ctx context.Context, compartmentID, instanceID string) ([]VnicAttachment, error) {
	if m.ListVnicAttachmentsFunc != nil {
		return m.ListVnicAttachmentsFunc(ctx, compartmentID, instanceID)
	}
	return []VnicAttachment{{ID: "ocid1.vnicattachment.mock", VnicID: "ocid1.vnic.mock", LifecycleState: "ATTACHED"}}, nil
}
