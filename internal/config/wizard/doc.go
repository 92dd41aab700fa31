// Package wizard provides an interactive configuration wizard for ociclaim.
//
// It uses charmbracelet/huh for form-based input collection. RunWizard
// returns a WizardResult, BuildConfig turns it into a config.Config, and
// WriteConfig writes the YAML file consumed by `ociclaim run --config`.
package wizard
