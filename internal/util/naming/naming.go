package naming

import (
	"fmt"
	"strings"
)

// ADSuffix returns the trailing character of an availability domain name,
// e.g. "1" for "Uocm:PHX-AD-1". It returns "" for an empty name.
func ADSuffix(availabilityDomain string) string {
	ad := strings.TrimSpace(availabilityDomain)
	if ad == "" {
		return ""
	}
	return ad[len(ad)-1:]
}

// Instance returns the display name for an instance launched in the given
// availability domain with the given sizing.
func Instance(prefix, availabilityDomain string, ocpus, memoryGB int) string {
	return fmt.Sprintf("%s-ad%s-%dc%dg", prefix, ADSuffix(availabilityDomain), ocpus, memoryGB)
}
