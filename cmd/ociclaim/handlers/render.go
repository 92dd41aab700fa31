package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/ociclaim/internal/provisioning"
	"github.com/imamik/ociclaim/internal/record"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

func writeTitle(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n")
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-14s", label+":")), value)
}

// renderEnvironment describes a resolved environment and the search order.
func renderEnvironment(env provisioning.ResolvedEnvironment, candidates []provisioning.CandidateSpec) string {
	var b strings.Builder

	writeTitle(&b, "ociclaim resolve")
	writeField(&b, "Region", env.Region)
	writeField(&b, "Compartment", env.CompartmentID)
	writeField(&b, "Subnet", env.SubnetID)
	writeField(&b, "Image", env.ImageID)
	writeField(&b, "ADs", strings.Join(env.AvailabilityDomains, ", "))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Candidates"))
	b.WriteString("\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d.", i+1)), c)
	}
	b.WriteString("\n")

	return b.String()
}

// renderRunSummary describes how a claim run ended.
func renderRunSummary(env provisioning.ResolvedEnvironment, state provisioning.RunState, successFile string) string {
	var b strings.Builder

	writeTitle(&b, "ociclaim run")
	writeField(&b, "Region", env.Region)
	writeField(&b, "Attempts", fmt.Sprint(state.Attempts))
	writeField(&b, "Passes", fmt.Sprint(state.Passes))

	switch state.State {
	case provisioning.StateSucceeded:
		writeField(&b, "Result", okStyle.Render("claimed"))
		if state.Record != nil {
			writeField(&b, "Instance", state.Record.InstanceID)
			writeField(&b, "Public IP", state.Record.PublicIP)
		}
		writeField(&b, "Record", successFile)
	case provisioning.StateAborted:
		writeField(&b, "Result", failStyle.Render("aborted"))
		writeField(&b, "Reason", state.LastOutcome.String())
	default:
		writeField(&b, "Result", dimStyle.Render("stopped"))
		if state.Attempts > 0 {
			writeField(&b, "Last outcome", state.LastOutcome.String())
		}
	}
	b.WriteString("\n")

	return b.String()
}

// renderPriorRecord explains why run did nothing.
func renderPriorRecord(rec *record.Record, successFile string) string {
	var b strings.Builder

	writeTitle(&b, "ociclaim run")
	writeField(&b, "Result", okStyle.Render("already claimed"))
	writeField(&b, "Instance", rec.InstanceID)
	writeField(&b, "Public IP", rec.PublicIP)
	writeField(&b, "Record", successFile)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Remove the record or pass --force to claim another instance."))
	b.WriteString("\n\n")

	return b.String()
}
