package tracehist

import (
	"fmt"
	"sort"
)

// NumPlanes is the number of wire planes in an anode face.
const NumPlanes = 3

// PlaneLetter returns 'u', 'v' or 'w' for planes 0, 1 and 2.
func PlaneLetter(plane int) byte {
	return byte('u' + plane)
}

// PlaneResolver maps a readout channel to its plane index.
type PlaneResolver interface {
	Resolve(channel int) (int, error)
}

// PlaneRange assigns the inclusive channel range [First, Last] to Plane.
type PlaneRange struct {
	Plane int `json:"plane"`
	First int `json:"first"`
	Last  int `json:"last"`
}

// RangeResolver resolves channels from a static list of ranges. It is used
// when the channel map is not read from the database.
type RangeResolver struct {
	ranges []PlaneRange
}

// NewRangeResolver checks the ranges and sorts them by first channel.
func NewRangeResolver(ranges []PlaneRange) (*RangeResolver, error) {
	sorted := make([]PlaneRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].First < sorted[j].First
	})
	for i, r := range sorted {
		if r.Last < r.First {
			return nil, &ConfigError{Field: "planes", Reason: fmt.Sprintf("empty channel range [%d,%d]", r.First, r.Last)}
		}
		if i > 0 && r.First <= sorted[i-1].Last {
			return nil, &ConfigError{Field: "planes", Reason: fmt.Sprintf("channel ranges [%d,%d] and [%d,%d] overlap",
				sorted[i-1].First, sorted[i-1].Last, r.First, r.Last)}
		}
	}
	return &RangeResolver{ranges: sorted}, nil
}

func (r *RangeResolver) Resolve(channel int) (int, error) {
	i := sort.Search(len(r.ranges), func(i int) bool {
		return r.ranges[i].Last >= channel
	})
	if i < len(r.ranges) && r.ranges[i].First <= channel {
		return r.ranges[i].Plane, nil
	}
	return -1, ErrUnresolvedChannel
}

// MapResolver resolves channels from an explicit channel to plane map.
type MapResolver struct {
	ToPlane map[int]int
}

func (m *MapResolver) Resolve(channel int) (int, error) {
	plane, ok := m.ToPlane[channel]
	if !ok {
		return -1, ErrUnresolvedChannel
	}
	return plane, nil
}
