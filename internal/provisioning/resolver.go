package provisioning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/platform/oci"
)

const (
	phaseResolve  = "resolve"
	phaseSchedule = "schedule"
)

// ResolvedEnvironment is the validated placement every attempt targets.
type ResolvedEnvironment struct {
	Region              string
	CompartmentID       string
	SubnetID            string
	ImageID             string
	AvailabilityDomains []string
}

// Resolver derives a ResolvedEnvironment from configuration and provider state.
type Resolver struct {
	provider oci.Provider
	cfg      *config.Config
	observer Observer
	report   reporter
}

// NewResolver creates a Resolver. The provider's region is the starting region.
func NewResolver(provider oci.Provider, cfg *config.Config, observer Observer, notifier Notifier) *Resolver {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Resolver{
		provider: provider,
		cfg:      cfg,
		observer: observer,
		report:   reporter{observer: observer, notifier: notifier},
	}
}

// Resolve runs compartment, subnet, availability domain and image resolution
// in order. When the subnet lives in another subscribed region, every later
// lookup and the returned provider target that region.
func (r *Resolver) Resolve(ctx context.Context) (ResolvedEnvironment, oci.Provider, error) {
	start := time.Now()
	LogPhaseStart(r.observer, phaseResolve)

	env, provider, err := r.resolve(ctx)
	if err != nil {
		LogPhaseFailed(r.observer, phaseResolve, err)
		return ResolvedEnvironment{}, nil, err
	}

	LogPhaseComplete(r.observer, phaseResolve, time.Since(start))
	return env, provider, nil
}

func (r *Resolver) resolve(ctx context.Context) (ResolvedEnvironment, oci.Provider, error) {
	if err := r.ResolveCompartment(ctx, r.cfg.CompartmentID); err != nil {
		return ResolvedEnvironment{}, nil, err
	}

	subnetID, region, err := r.ResolveSubnet(ctx, r.cfg.SubnetID, r.provider.Region(),
		r.cfg.Discovery.AutoDiscoverSubnet, r.cfg.Discovery.AutoSwitchRegion)
	if err != nil {
		return ResolvedEnvironment{}, nil, err
	}

	provider, err := r.provider.ForRegion(region)
	if err != nil {
		return ResolvedEnvironment{}, nil, fmt.Errorf("client for region %s: %w", region, err)
	}

	ads := r.ResolveAvailabilityDomains(ctx, provider, r.cfg.CompartmentID)

	imageID, err := r.ResolveImage(ctx, provider, r.cfg.Image.ID)
	if err != nil {
		return ResolvedEnvironment{}, nil, err
	}
	if imageID == "" {
		r.report.say(ctx, "No %s %s/%s aarch64 image found in %s. Set IMAGE_OCID to an ARM image OCID.",
			r.cfg.Image.OperatingSystem, r.cfg.Image.Version, r.cfg.Image.FallbackVersion, region)
		return ResolvedEnvironment{}, nil, &ResolutionError{Reason: "no image matches; set IMAGE_OCID", Err: ErrNoImage}
	}

	return ResolvedEnvironment{
		Region:              region,
		CompartmentID:       r.cfg.CompartmentID,
		SubnetID:            subnetID,
		ImageID:             imageID,
		AvailabilityDomains: ads,
	}, provider, nil
}

// ResolveCompartment checks that the compartment is readable.
func (r *Resolver) ResolveCompartment(ctx context.Context, compartmentID string) error {
	c, err := r.provider.GetCompartment(ctx, compartmentID)
	if err != nil {
		if oci.IsNotFound(err) || oci.IsAuthorization(err) {
			r.report.say(ctx, "Compartment %s is not readable. Check COMPARTMENT_OCID and that your group has: "+
				"Allow group <group> to inspect compartments in tenancy", compartmentID)
			return &ResolutionError{Reason: "compartment not found or inaccessible", Err: err}
		}
		return fmt.Errorf("read compartment %s: %w", compartmentID, err)
	}

	LogResourceResolved(r.observer, "compartment", c.Name, c.ID)
	return nil
}

// ResolveSubnet locates the subnet to launch into and the region it lives in.
//
// A configured subnet is looked up in currentRegion first and then, if
// autoSwitchRegion is set, in every other subscribed region in subscription
// order. Without a configured subnet and with autoDiscover set, a subnet is
// picked from the compartment, preferring ones that allow public IPs.
func (r *Resolver) ResolveSubnet(ctx context.Context, desiredID, currentRegion string, autoDiscover, autoSwitchRegion bool) (string, string, error) {
	current, err := r.provider.ForRegion(currentRegion)
	if err != nil {
		return "", "", fmt.Errorf("client for region %s: %w", currentRegion, err)
	}

	if desiredID != "" {
		subnet, err := current.GetSubnet(ctx, desiredID)
		if err == nil {
			LogResourceResolved(r.observer, "subnet", subnet.DisplayName, subnet.ID)
			return subnet.ID, currentRegion, nil
		}
		if !oci.IsNotFound(err) && !oci.IsAuthorization(err) {
			return "", "", fmt.Errorf("read subnet %s: %w", desiredID, err)
		}

		r.report.say(ctx, "Subnet %s not found in %s.", desiredID, currentRegion)
		if autoSwitchRegion {
			return r.searchRegions(ctx, desiredID, current)
		}

		r.listVisibleSubnets(ctx, current)
		return "", "", &ResolutionError{Reason: "no usable subnet", Err: err}
	}

	if autoDiscover {
		return r.discoverSubnet(ctx, current)
	}

	return "", "", &ResolutionError{Reason: "no usable subnet; set SUBNET_OCID or enable AUTO_DISCOVER_SUBNET"}
}

// searchRegions looks the subnet up in every ready subscribed region except
// the one current is bound to. When nothing matches, the subnets visible in
// the current region are reported.
func (r *Resolver) searchRegions(ctx context.Context, subnetID string, current oci.Provider) (string, string, error) {
	currentRegion := current.Region()
	subs, err := r.provider.ListRegionSubscriptions(ctx)
	if err != nil {
		return "", "", &ResolutionError{Reason: "list region subscriptions", Err: err}
	}

	for _, sub := range subs {
		if sub.Name == "" || sub.Name == currentRegion {
			continue
		}
		if !sub.Ready() {
			r.observer.Printf("skipping region %s: subscription %s", sub.Name, sub.Status)
			continue
		}
		p, err := r.provider.ForRegion(sub.Name)
		if err != nil {
			r.observer.Printf("skipping region %s: %v", sub.Name, err)
			continue
		}
		subnet, err := p.GetSubnet(ctx, subnetID)
		if err != nil {
			if !oci.IsNotFound(err) && !oci.IsAuthorization(err) {
				r.observer.Printf("subnet lookup in %s failed: %v", sub.Name, err)
			}
			continue
		}

		r.observer.Event(Event{
			Type:     EventRegionSwitched,
			Phase:    phaseResolve,
			Resource: subnet.ID,
			Message:  fmt.Sprintf("subnet found in %s, switching from %s", sub.Name, currentRegion),
			Fields:   map[string]string{"from": currentRegion, "to": sub.Name},
		})
		r.report.say(ctx, "Subnet found in region %s; switching from %s.", sub.Name, currentRegion)
		return subnet.ID, sub.Name, nil
	}

	r.listVisibleSubnets(ctx, current)
	return "", "", &ResolutionError{Reason: "subnet not found in any subscribed region"}
}

// discoverSubnet picks a subnet from the compartment.
func (r *Resolver) discoverSubnet(ctx context.Context, p oci.Provider) (string, string, error) {
	subnets, err := p.ListSubnets(ctx, r.cfg.CompartmentID)
	if err != nil {
		return "", "", &ResolutionError{Reason: "list subnets", Err: err}
	}
	if len(subnets) == 0 {
		r.report.say(ctx, "No subnets visible in %s. Create a VCN with a public subnet, or grant: "+
			"Allow group <group> to use virtual-network-family in compartment <compartment>", p.Region())
		return "", "", &ResolutionError{Reason: "no subnets visible"}
	}

	chosen, ok := PickSubnet(subnets)
	if !ok {
		return "", "", &ResolutionError{Reason: "no subnets visible"}
	}

	r.report.say(ctx, "Auto-selected subnet %s (%s) %s public=%t",
		chosen.DisplayName, chosen.ID, chosen.CIDR, !chosen.ProhibitPublicIP)
	LogResourceResolved(r.observer, "subnet", chosen.DisplayName, chosen.ID)
	return chosen.ID, p.Region(), nil
}

// PickSubnet prefers subnets that allow public IPs and, within the chosen
// group, returns the lexicographically first by display name (falling back
// to the OCID when a subnet has no name).
func PickSubnet(subnets []oci.Subnet) (oci.Subnet, bool) {
	if len(subnets) == 0 {
		return oci.Subnet{}, false
	}

	var public []oci.Subnet
	for _, s := range subnets {
		if !s.ProhibitPublicIP {
			public = append(public, s)
		}
	}
	pool := subnets
	if len(public) > 0 {
		pool = public
	}

	sorted := append([]oci.Subnet(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := subnetSortKey(sorted[i]), subnetSortKey(sorted[j])
		if ki != kj {
			return ki < kj
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0], true
}

func subnetSortKey(s oci.Subnet) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.ID
}

// listVisibleSubnets reports the subnets the caller can see, as a diagnostic.
func (r *Resolver) listVisibleSubnets(ctx context.Context, p oci.Provider) {
	subnets, err := p.ListSubnets(ctx, r.cfg.CompartmentID)
	if err != nil {
		r.report.say(ctx, "Could not list subnets in %s: %v", p.Region(), err)
		return
	}
	if len(subnets) == 0 {
		r.report.say(ctx, "No subnets visible in compartment %s (%s). Grant: "+
			"Allow group <group> to use virtual-network-family in compartment <compartment>",
			r.cfg.CompartmentID, p.Region())
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Visible subnets in %s:", p.Region())
	for _, s := range subnets {
		fmt.Fprintf(&sb, "\n  - %s | %s | %s | public=%t", s.DisplayName, s.ID, s.CIDR, !s.ProhibitPublicIP)
	}
	r.report.say(ctx, "%s", sb.String())
}

// ResolveImage returns the image to boot. An override is validated; otherwise
// the newest ARM build of the configured OS version (or its fallback) is
// chosen. An empty result with a nil error means nothing matched.
func (r *Resolver) ResolveImage(ctx context.Context, provider oci.Provider, overrideID string) (string, error) {
	if overrideID != "" {
		img, err := provider.GetImage(ctx, overrideID)
		if err != nil {
			if oci.IsNotFound(err) || oci.IsAuthorization(err) {
				return "", &ResolutionError{Reason: fmt.Sprintf("image %s not found in %s", overrideID, provider.Region()), Err: err}
			}
			return "", fmt.Errorf("read image %s: %w", overrideID, err)
		}
		LogResourceResolved(r.observer, "image", img.DisplayName, img.ID)
		return img.ID, nil
	}

	images, err := provider.ListImages(ctx, r.cfg.CompartmentID, r.cfg.Image.OperatingSystem)
	if err != nil {
		return "", &ResolutionError{Reason: "list images", Err: err}
	}

	img, ok := SelectImage(images, r.cfg.Image.Version, r.cfg.Image.FallbackVersion)
	if !ok {
		return "", nil
	}

	r.report.say(ctx, "Using image %s (%s)", img.DisplayName, img.ID)
	LogResourceResolved(r.observer, "image", img.DisplayName, img.ID)
	return img.ID, nil
}

// ResolveAvailabilityDomains orders the configured ADs against the real AD
// names of the region. Listing failures fall back to the configured names.
func (r *Resolver) ResolveAvailabilityDomains(ctx context.Context, provider oci.Provider, compartmentID string) []string {
	actual, err := provider.ListAvailabilityDomains(ctx, compartmentID)
	if err != nil {
		r.observer.Printf("listing availability domains failed, using configured names: %v", err)
		actual = nil
	}

	ads := OrderAvailabilityDomains(r.cfg.Schedule.AvailabilityDomains, actual)
	r.report.say(ctx, "Availability domains: %s", strings.Join(ads, ", "))
	return ads
}
