package provisioning

import (
	"fmt"
	"sort"
	"strings"
)

// CandidateSpec is one placement the scheduler will try.
type CandidateSpec struct {
	AvailabilityDomain string
	OCPUs              int
	MemoryGB           int
}

func (c CandidateSpec) String() string {
	return fmt.Sprintf("AD=%s %d OCPU / %d GB", c.AvailabilityDomain, c.OCPUs, c.MemoryGB)
}

// BuildCandidates returns the AD-major cross product of ads and ocpus.
// The result depends only on its arguments.
func BuildCandidates(ads []string, ocpus []int, memPerOCPU int) []CandidateSpec {
	candidates := make([]CandidateSpec, 0, len(ads)*len(ocpus))
	for _, ad := range ads {
		for _, o := range ocpus {
			candidates = append(candidates, CandidateSpec{
				AvailabilityDomain: ad,
				OCPUs:              o,
				MemoryGB:           o * memPerOCPU,
			})
		}
	}
	return candidates
}

// OrderAvailabilityDomains maps configured AD names onto the names the
// provider reports, keeping configured priority. A configured name matches a
// real one exactly or as its suffix ("AD-1" matches "Uocm:PHX-AD-1").
// With no match the real list is used, sorted by name; with no real list the
// configured literals are returned unchanged.
func OrderAvailabilityDomains(configured, actual []string) []string {
	if len(actual) == 0 {
		return append([]string(nil), configured...)
	}

	names := append([]string(nil), actual...)
	sort.Strings(names)

	seen := make(map[string]bool, len(names))
	var ordered []string
	for _, want := range configured {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			if name == want || strings.HasSuffix(name, "-"+want) || strings.HasSuffix(name, ":"+want) {
				ordered = append(ordered, name)
				seen[name] = true
				break
			}
		}
	}

	if len(ordered) == 0 {
		return names
	}
	return ordered
}
