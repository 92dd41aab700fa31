package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCandidates(t *testing.T) {
	t.Parallel()

	got := BuildCandidates([]string{"A", "B"}, []int{4, 2}, 6)

	assert.Equal(t, []CandidateSpec{
		{AvailabilityDomain: "A", OCPUs: 4, MemoryGB: 24},
		{AvailabilityDomain: "A", OCPUs: 2, MemoryGB: 12},
		{AvailabilityDomain: "B", OCPUs: 4, MemoryGB: 24},
		{AvailabilityDomain: "B", OCPUs: 2, MemoryGB: 12},
	}, got)
}

func TestBuildCandidates_Deterministic(t *testing.T) {
	t.Parallel()

	ads := []string{"AD-1", "AD-2", "AD-3"}
	ocpus := []int{4, 2, 1}
	first := BuildCandidates(ads, ocpus, 6)
	assert.Len(t, first, 9)
	assert.Equal(t, first, BuildCandidates(ads, ocpus, 6))
	for _, c := range first {
		assert.Equal(t, c.OCPUs*6, c.MemoryGB)
	}
}

func TestBuildCandidates_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildCandidates(nil, []int{4}, 6))
	assert.Empty(t, BuildCandidates([]string{"AD-1"}, nil, 6))
}

func TestOrderAvailabilityDomains(t *testing.T) {
	t.Parallel()

	names := []string{"Uocm:PHX-AD-3", "Uocm:PHX-AD-1", "Uocm:PHX-AD-2"}

	tests := []struct {
		name       string
		configured []string
		actual     []string
		want       []string
	}{
		{
			name:       "suffix match keeps configured priority",
			configured: []string{"AD-2", "AD-1"},
			actual:     names,
			want:       []string{"Uocm:PHX-AD-2", "Uocm:PHX-AD-1"},
		},
		{
			name:       "exact match",
			configured: []string{"Uocm:PHX-AD-3"},
			actual:     names,
			want:       []string{"Uocm:PHX-AD-3"},
		},
		{
			name:       "no match uses sorted real list",
			configured: []string{"AD-9"},
			actual:     names,
			want:       []string{"Uocm:PHX-AD-1", "Uocm:PHX-AD-2", "Uocm:PHX-AD-3"},
		},
		{
			name:       "listing failed uses literals",
			configured: []string{"AD-1", "AD-2"},
			actual:     nil,
			want:       []string{"AD-1", "AD-2"},
		},
		{
			name:       "duplicates collapse",
			configured: []string{"AD-1", "AD-1", " "},
			actual:     names,
			want:       []string{"Uocm:PHX-AD-1"},
		},
		{
			name:       "single AD region",
			configured: []string{"AD-1", "AD-2", "AD-3"},
			actual:     []string{"qIZq:EU-FRANKFURT-1-AD-1"},
			want:       []string{"qIZq:EU-FRANKFURT-1-AD-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OrderAvailabilityDomains(tt.configured, tt.actual))
		})
	}

	// The input slice is not reordered.
	assert.Equal(t, "Uocm:PHX-AD-3", names[0])
}
