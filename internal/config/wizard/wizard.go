package wizard

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imamik/ociclaim/internal/config"
)

// ocidRegex loosely validates an Oracle Cloud identifier.
var ocidRegex = regexp.MustCompile(`^ocid1\.[a-z0-9]+\.[a-z0-9-]+\.[a-z0-9-]*\.[a-z0-9]+$`)

// OCPUOptions are the A1 Flex sizes offered by the wizard, largest first.
var OCPUOptions = []huh.Option[int]{
	huh.NewOption("4 OCPU / 24 GB (whole free tier)", 4).Selected(true),
	huh.NewOption("2 OCPU / 12 GB", 2).Selected(true),
	huh.NewOption("1 OCPU / 6 GB", 1).Selected(true),
}

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Placement
	CompartmentID string
	SubnetID      string
	Region        string

	// Access
	OCIProfile       string
	SSHPublicKeyPath string

	// Sizing
	OCPUs []int

	// Notifications (optional)
	TelegramBotToken string
	TelegramChatID   string
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		OCIProfile:       "DEFAULT",
		SSHPublicKeyPath: "~/.ssh/id_rsa.pub",
	}

	if err := runPlacementGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}

	if err := runAccessGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}

	if err := runSizingGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("sizing: %w", err)
	}

	if err := runNotifyGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}

	return result, nil
}

// runPlacementGroup prompts for compartment, subnet and region.
func runPlacementGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Compartment OCID").
				Description("Compartment the instance is launched in (the tenancy OCID works)").
				Placeholder("ocid1.tenancy.oc1..aaaa").
				Value(&result.CompartmentID).
				Validate(validateCompartment),
			huh.NewInput().
				Title("Subnet OCID (Optional)").
				Description("Leave empty to auto-discover a public subnet").
				Value(&result.SubnetID).
				Validate(validateOptionalOCID),
			huh.NewInput().
				Title("Region (Optional)").
				Description("Overrides the region from the OCI config profile").
				Placeholder("eu-frankfurt-1").
				Value(&result.Region),
		).Title("Placement"),
	).RunWithContext(ctx)
}

// runAccessGroup prompts for the OCI profile and SSH key.
func runAccessGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OCI Config Profile").
				Value(&result.OCIProfile),
			huh.NewInput().
				Title("SSH Public Key").
				Description("Installed as ssh_authorized_keys on the instance").
				Value(&result.SSHPublicKeyPath).
				Validate(validateKeyPath),
		).Title("Access"),
	).RunWithContext(ctx)
}

// runSizingGroup prompts for the OCPU sizes to try.
func runSizingGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Instance Sizes").
				Description("Tried in order in every availability domain").
				Options(OCPUOptions...).
				Value(&result.OCPUs).
				Validate(validateSizes),
		).Title("Sizing"),
	).RunWithContext(ctx)
}

// runNotifyGroup prompts for optional Telegram settings.
func runNotifyGroup(ctx context.Context, result *WizardResult) error {
	var enable bool
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Telegram Notifications").
				Description("Send progress and the claimed IP to a Telegram chat").
				Value(&enable),
		),
	).RunWithContext(ctx); err != nil {
		return err
	}
	if !enable {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot Token").
				EchoMode(huh.EchoModePassword).
				Value(&result.TelegramBotToken),
			huh.NewInput().
				Title("Chat ID").
				Value(&result.TelegramChatID),
		).Title("Telegram"),
	).RunWithContext(ctx)
}

// BuildConfig creates a Config from the wizard result on top of the defaults.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := config.Default()
	cfg.CompartmentID = strings.TrimSpace(result.CompartmentID)
	cfg.SubnetID = strings.TrimSpace(result.SubnetID)
	cfg.Region = strings.TrimSpace(result.Region)

	if result.OCIProfile != "" {
		cfg.OCIProfile = result.OCIProfile
	}
	if result.SSHPublicKeyPath != "" {
		cfg.SSHPublicKeyPath = result.SSHPublicKeyPath
	}
	if len(result.OCPUs) > 0 {
		cfg.Schedule.OCPUs = sortedDesc(result.OCPUs)
	}

	cfg.Notify.TelegramBotToken = result.TelegramBotToken
	cfg.Notify.TelegramChatID = result.TelegramChatID
	return cfg
}

func validateCompartment(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errCompartmentRequired
	}
	if !ocidRegex.MatchString(s) {
		return errOCIDInvalid
	}
	return nil
}

func validateOptionalOCID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !ocidRegex.MatchString(s) {
		return errOCIDInvalid
	}
	return nil
}

func validateKeyPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errPathRequired
	}
	if _, err := os.Stat(config.ExpandHome(s)); err != nil {
		return fmt.Errorf("cannot read %s: %w", s, err)
	}
	return nil
}

func validateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return errSizesRequired
	}
	return nil
}

// sortedDesc returns a copy of sizes, largest first.
func sortedDesc(sizes []int) []int {
	out := append([]int(nil), sizes...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
