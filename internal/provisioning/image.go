package provisioning

import (
	"sort"
	"strings"

	"github.com/imamik/ociclaim/internal/platform/oci"
)

// armTokens identify aarch64 builds in platform image display names.
var armTokens = []string{"aarch64", "arm"}

// SelectImage returns the newest image whose display name contains the first
// version token that matches anything, together with an ARM token.
// Versions are tried in order; empty tokens are skipped.
func SelectImage(images []oci.Image, versions ...string) (oci.Image, bool) {
	sorted := append([]oci.Image(nil), images...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeCreated.After(sorted[j].TimeCreated)
	})

	for _, version := range versions {
		if version == "" {
			continue
		}
		for _, img := range sorted {
			name := strings.ToLower(img.DisplayName)
			if strings.Contains(name, strings.ToLower(version)) && containsAny(name, armTokens) {
				return img, true
			}
		}
	}
	return oci.Image{}, false
}
