package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	wizardIsTerminal       = isInteractiveTTY
	wizardFileExists       = wizard.FileExists
	wizardConfirmOverwrite = wizard.ConfirmOverwrite
	wizardRunWizard        = wizard.RunWizard
	wizardBuildConfig      = wizard.BuildConfig
	wizardWriteConfig      = wizard.WriteConfig
)

var errNotInteractive = errors.New("init needs an interactive terminal; write the YAML by hand or set environment variables instead")

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if !wizardIsTerminal() {
		return errNotInteractive
	}

	if wizardFileExists(outputPath) {
		ok, err := wizardConfirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printWelcome()

	result, err := wizardRunWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizardBuildConfig(result)

	if err := wizardWriteConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("ociclaim - Always Free A1 on Oracle Cloud")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Println("This wizard writes a configuration with sensible defaults.")
	fmt.Println("Only the compartment OCID is required.")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Compartment:    %s\n", cfg.CompartmentID)
	if cfg.SubnetID != "" {
		fmt.Printf("  Subnet:         %s\n", cfg.SubnetID)
	} else {
		fmt.Println("  Subnet:         auto-discover")
	}
	if cfg.Region != "" {
		fmt.Printf("  Region:         %s\n", cfg.Region)
	}
	fmt.Printf("  OCPUs:          %v (x %d GB per OCPU)\n", cfg.Schedule.OCPUs, cfg.Schedule.MemPerOCPU)
	fmt.Printf("  SSH key:        %s\n", cfg.SSHPublicKeyPath)
	if cfg.Notify.Enabled() {
		fmt.Println("  Telegram:       enabled")
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Check the environment resolves:")
	fmt.Printf("     ociclaim resolve -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  2. Start claiming:")
	fmt.Printf("     ociclaim run -c %s\n", outputPath)
	fmt.Println()
}
