package provisioning

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/platform/oci"
)

const (
	testCompartment = "ocid1.compartment.oc1..test"
	testSubnet      = "ocid1.subnet.oc1.phx.test"
)

// recordingNotifier captures notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) contains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.CompartmentID = testCompartment
	return cfg
}

func subnetLookup(known ...string) func(context.Context, string) (*oci.Subnet, error) {
	return func(_ context.Context, id string) (*oci.Subnet, error) {
		for _, k := range known {
			if k == id {
				return &oci.Subnet{ID: id, DisplayName: "public-subnet", LifecycleState: "AVAILABLE"}, nil
			}
		}
		return nil, oci.NotFoundError(id)
	}
}

func requireResolutionError(t *testing.T, err error, reason string) *ResolutionError {
	t.Helper()
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr), "expected *ResolutionError, got %v", err)
	assert.Contains(t, resErr.Reason, reason)
	return resErr
}

func TestResolveCompartment(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{RegionName: "us-phoenix-1"}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

	require.NoError(t, r.ResolveCompartment(context.Background(), testCompartment))
}

func TestResolveCompartment_NotFound(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		GetCompartmentFunc: func(_ context.Context, id string) (*oci.Compartment, error) {
			return nil, oci.NotFoundError(id)
		},
	}
	r := NewResolver(mock, testConfig(), NewMockObserver(), notifier)

	err := r.ResolveCompartment(context.Background(), testCompartment)
	requireResolutionError(t, err, "compartment not found or inaccessible")
	assert.True(t, oci.IsNotFound(err))
	assert.True(t, notifier.contains("inspect compartments"))
}

func TestResolveCompartment_OtherFailureIsWrapped(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		GetCompartmentFunc: func(context.Context, string) (*oci.Compartment, error) {
			return nil, &oci.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
		},
	}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

	err := r.ResolveCompartment(context.Background(), testCompartment)
	require.Error(t, err)
	var resErr *ResolutionError
	assert.False(t, errors.As(err, &resErr))
	assert.Contains(t, err.Error(), "read compartment")
}

func TestResolveSubnet_FoundInCurrentRegion(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{RegionName: "us-phoenix-1", GetSubnetFunc: subnetLookup(testSubnet)}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

	id, region, err := r.ResolveSubnet(context.Background(), testSubnet, "us-phoenix-1", true, true)
	require.NoError(t, err)
	assert.Equal(t, testSubnet, id)
	assert.Equal(t, "us-phoenix-1", region)
}

func TestResolveSubnet_AutoSwitchRegion(t *testing.T) {
	t.Parallel()

	second := &oci.MockClient{RegionName: "us-ashburn-1", GetSubnetFunc: subnetLookup(testSubnet)}
	third := &oci.MockClient{
		RegionName: "eu-frankfurt-1",
		GetSubnetFunc: func(context.Context, string) (*oci.Subnet, error) {
			t.Error("regions after the first hit must not be queried")
			return nil, oci.NotFoundError("subnet")
		},
	}
	home := &oci.MockClient{
		RegionName:    "us-phoenix-1",
		GetSubnetFunc: subnetLookup(),
		ListRegionSubscriptionsFunc: func(context.Context) ([]oci.RegionSubscription, error) {
			return []oci.RegionSubscription{
				{Name: "us-phoenix-1", IsHome: true, Status: oci.RegionSubscriptionReady},
				{Name: "us-ashburn-1", Status: oci.RegionSubscriptionReady},
				{Name: "eu-frankfurt-1", Status: oci.RegionSubscriptionReady},
			}, nil
		},
		Siblings: map[string]*oci.MockClient{"us-ashburn-1": second, "eu-frankfurt-1": third},
	}
	observer := NewMockObserver()
	notifier := &recordingNotifier{}
	r := NewResolver(home, testConfig(), observer, notifier)

	id, region, err := r.ResolveSubnet(context.Background(), testSubnet, "us-phoenix-1", true, true)
	require.NoError(t, err)
	assert.Equal(t, testSubnet, id)
	assert.Equal(t, "us-ashburn-1", region)
	assert.Len(t, observer.eventsOfType(EventRegionSwitched), 1)
	assert.True(t, notifier.contains("switching from us-phoenix-1"))
}

func TestResolveSubnet_NotFoundInAnyRegion(t *testing.T) {
	t.Parallel()

	home := &oci.MockClient{
		RegionName:    "us-phoenix-1",
		GetSubnetFunc: subnetLookup(),
		ListRegionSubscriptionsFunc: func(context.Context) ([]oci.RegionSubscription, error) {
			return []oci.RegionSubscription{
				{Name: "us-phoenix-1", Status: oci.RegionSubscriptionReady},
				{Name: "us-ashburn-1", Status: oci.RegionSubscriptionReady},
			}, nil
		},
		Siblings: map[string]*oci.MockClient{
			"us-ashburn-1": {RegionName: "us-ashburn-1", GetSubnetFunc: subnetLookup()},
		},
	}
	notifier := &recordingNotifier{}
	r := NewResolver(home, testConfig(), NewMockObserver(), notifier)

	_, _, err := r.ResolveSubnet(context.Background(), testSubnet, "us-phoenix-1", true, true)
	requireResolutionError(t, err, "subnet not found in any subscribed region")
	assert.True(t, notifier.contains("No subnets visible in compartment"))
}

func TestResolveSubnet_SkipsRegionsNotReady(t *testing.T) {
	t.Parallel()

	pending := &oci.MockClient{
		RegionName: "us-ashburn-1",
		GetSubnetFunc: func(context.Context, string) (*oci.Subnet, error) {
			t.Error("regions that are not ready must not be queried")
			return nil, oci.NotFoundError("subnet")
		},
	}
	home := &oci.MockClient{
		RegionName:    "us-phoenix-1",
		GetSubnetFunc: subnetLookup(),
		ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
			return []oci.Subnet{{ID: "ocid1.subnet.oc1..home", DisplayName: "home", CIDR: "10.0.0.0/24"}}, nil
		},
		ListRegionSubscriptionsFunc: func(context.Context) ([]oci.RegionSubscription, error) {
			return []oci.RegionSubscription{
				{Name: "us-phoenix-1", IsHome: true, Status: oci.RegionSubscriptionReady},
				{Name: "us-ashburn-1", Status: "IN_PROGRESS"},
			}, nil
		},
		Siblings: map[string]*oci.MockClient{"us-ashburn-1": pending},
	}
	notifier := &recordingNotifier{}
	r := NewResolver(home, testConfig(), NewMockObserver(), notifier)

	_, _, err := r.ResolveSubnet(context.Background(), testSubnet, "us-phoenix-1", true, true)
	requireResolutionError(t, err, "subnet not found in any subscribed region")
	assert.True(t, notifier.contains("ocid1.subnet.oc1..home"))
}

func TestResolveSubnet_NotFoundWithoutSwitchListsSubnets(t *testing.T) {
	t.Parallel()

	listed := false
	mock := &oci.MockClient{
		RegionName:    "us-phoenix-1",
		GetSubnetFunc: subnetLookup(),
		ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
			listed = true
			return []oci.Subnet{{ID: "ocid1.subnet.oc1..other", DisplayName: "other", CIDR: "10.0.0.0/24"}}, nil
		},
		ListRegionSubscriptionsFunc: func(context.Context) ([]oci.RegionSubscription, error) {
			t.Error("regions must not be searched when switching is disabled")
			return nil, nil
		},
	}
	notifier := &recordingNotifier{}
	r := NewResolver(mock, testConfig(), NewMockObserver(), notifier)

	_, _, err := r.ResolveSubnet(context.Background(), testSubnet, "us-phoenix-1", true, false)
	requireResolutionError(t, err, "no usable subnet")
	assert.True(t, listed)
	assert.True(t, notifier.contains("ocid1.subnet.oc1..other"))
}

func TestResolveSubnet_AutoDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subnets []oci.Subnet
		wantID  string
	}{
		{
			name: "prefers public then name",
			subnets: []oci.Subnet{
				{ID: "s-c", DisplayName: "charlie"},
				{ID: "s-a", DisplayName: "alpha", ProhibitPublicIP: true},
				{ID: "s-b", DisplayName: "bravo"},
			},
			wantID: "s-b",
		},
		{
			name: "all private picks first by name",
			subnets: []oci.Subnet{
				{ID: "s-z", DisplayName: "zulu", ProhibitPublicIP: true},
				{ID: "s-y", DisplayName: "yankee", ProhibitPublicIP: true},
			},
			wantID: "s-y",
		},
		{
			name: "unnamed falls back to OCID",
			subnets: []oci.Subnet{
				{ID: "ocid1.subnet.b"},
				{ID: "ocid1.subnet.a"},
			},
			wantID: "ocid1.subnet.a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := &oci.MockClient{
				RegionName: "us-phoenix-1",
				ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
					return tt.subnets, nil
				},
			}
			r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

			id, region, err := r.ResolveSubnet(context.Background(), "", "us-phoenix-1", true, true)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, "us-phoenix-1", region)
		})
	}
}

func TestResolveSubnet_AutoDiscoverNothingVisible(t *testing.T) {
	t.Parallel()

	r := NewResolver(&oci.MockClient{RegionName: "us-phoenix-1"}, testConfig(), NewMockObserver(), nil)

	_, _, err := r.ResolveSubnet(context.Background(), "", "us-phoenix-1", true, true)
	requireResolutionError(t, err, "no subnets visible")
}

func TestResolveSubnet_NothingConfigured(t *testing.T) {
	t.Parallel()

	r := NewResolver(&oci.MockClient{RegionName: "us-phoenix-1"}, testConfig(), NewMockObserver(), nil)

	_, _, err := r.ResolveSubnet(context.Background(), "", "us-phoenix-1", false, true)
	requireResolutionError(t, err, "no usable subnet")
}

func TestResolveImage(t *testing.T) {
	t.Parallel()

	var gotOS string
	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListImagesFunc: func(_ context.Context, _ string, os string) ([]oci.Image, error) {
			gotOS = os
			return imageFixture(), nil
		},
		GetImageFunc: func(_ context.Context, id string) (*oci.Image, error) {
			if id == "ocid1.image.custom" {
				return &oci.Image{ID: id, DisplayName: "custom"}, nil
			}
			return nil, oci.NotFoundError(id)
		},
	}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)
	ctx := context.Background()

	id, err := r.ResolveImage(ctx, mock, "")
	require.NoError(t, err)
	assert.Equal(t, "img-2", id)
	assert.Equal(t, "Canonical Ubuntu", gotOS)

	id, err = r.ResolveImage(ctx, mock, "ocid1.image.custom")
	require.NoError(t, err)
	assert.Equal(t, "ocid1.image.custom", id)

	_, err = r.ResolveImage(ctx, mock, "ocid1.image.missing")
	requireResolutionError(t, err, "not found")
}

func TestResolveImage_NoMatchIsEmpty(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListImagesFunc: func(context.Context, string, string) ([]oci.Image, error) {
			return []oci.Image{{ID: "x", DisplayName: "x-20.04-amd64"}}, nil
		},
	}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

	id, err := r.ResolveImage(context.Background(), mock, "")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestResolveAvailabilityDomains(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListAvailabilityDomainsFunc: func(context.Context, string) ([]string, error) {
			return []string{"Uocm:PHX-AD-2", "Uocm:PHX-AD-1"}, nil
		},
	}
	r := NewResolver(mock, testConfig(), NewMockObserver(), nil)

	ads := r.ResolveAvailabilityDomains(context.Background(), mock, testCompartment)
	assert.Equal(t, []string{"Uocm:PHX-AD-1", "Uocm:PHX-AD-2"}, ads)

	failing := &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListAvailabilityDomainsFunc: func(context.Context, string) ([]string, error) {
			return nil, errors.New("unreachable")
		},
	}
	ads = r.ResolveAvailabilityDomains(context.Background(), failing, testCompartment)
	assert.Equal(t, []string{"AD-1", "AD-2", "AD-3"}, ads)
}

func TestResolve_SwitchesRegionForLaterLookups(t *testing.T) {
	t.Parallel()

	ashburn := &oci.MockClient{
		RegionName:    "us-ashburn-1",
		GetSubnetFunc: subnetLookup(testSubnet),
		ListAvailabilityDomainsFunc: func(context.Context, string) ([]string, error) {
			return []string{"Xyz:US-ASHBURN-AD-1"}, nil
		},
		ListImagesFunc: func(context.Context, string, string) ([]oci.Image, error) {
			return imageFixture(), nil
		},
	}
	home := &oci.MockClient{
		RegionName:    "us-phoenix-1",
		GetSubnetFunc: subnetLookup(),
		ListRegionSubscriptionsFunc: func(context.Context) ([]oci.RegionSubscription, error) {
			return []oci.RegionSubscription{
				{Name: "us-phoenix-1", Status: oci.RegionSubscriptionReady},
				{Name: "us-ashburn-1", Status: oci.RegionSubscriptionReady},
			}, nil
		},
		ListAvailabilityDomainsFunc: func(context.Context, string) ([]string, error) {
			t.Error("availability domains must come from the switched region")
			return nil, nil
		},
		ListImagesFunc: func(context.Context, string, string) ([]oci.Image, error) {
			t.Error("images must come from the switched region")
			return nil, nil
		},
		Siblings: map[string]*oci.MockClient{"us-ashburn-1": ashburn},
	}
	cfg := testConfig()
	cfg.SubnetID = testSubnet
	observer := NewMockObserver()

	env, provider, err := NewResolver(home, cfg, observer, nil).Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ResolvedEnvironment{
		Region:              "us-ashburn-1",
		CompartmentID:       testCompartment,
		SubnetID:            testSubnet,
		ImageID:             "img-2",
		AvailabilityDomains: []string{"Xyz:US-ASHBURN-AD-1"},
	}, env)
	assert.Same(t, ashburn, provider)
	assert.Len(t, observer.eventsOfType(EventPhaseCompleted), 1)
}

func TestResolve_NoImageIsFatal(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
			return []oci.Subnet{{ID: "s", DisplayName: "s"}}, nil
		},
	}
	observer := NewMockObserver()
	notifier := &recordingNotifier{}

	_, _, err := NewResolver(mock, testConfig(), observer, notifier).Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoImage)
	requireResolutionError(t, err, "IMAGE_OCID")
	assert.True(t, notifier.contains("Set IMAGE_OCID"))
	assert.Len(t, observer.eventsOfType(EventPhaseFailed), 1)
}

func TestResolve_CompartmentFailureStopsEarly(t *testing.T) {
	t.Parallel()

	mock := &oci.MockClient{
		RegionName: "us-phoenix-1",
		GetCompartmentFunc: func(_ context.Context, id string) (*oci.Compartment, error) {
			return nil, oci.NotFoundError(id)
		},
		ListSubnetsFunc: func(context.Context, string) ([]oci.Subnet, error) {
			t.Error("subnets must not be listed after compartment failure")
			return nil, nil
		},
	}

	start := time.Now()
	_, _, err := NewResolver(mock, testConfig(), NewMockObserver(), nil).Resolve(context.Background())
	requireResolutionError(t, err, "compartment")
	assert.Less(t, time.Since(start), time.Second)
}
