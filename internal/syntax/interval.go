package syntax

import "sort"

// interval is a half-open byte range [Start, End).
type interval struct {
	Start, End int
}

// DirtySet is the union of an edit batch's affected byte ranges, stored as
// a sorted list of merged, non-overlapping intervals so AnyOverlap runs in
// O(log n) (spec §9: "interval index supporting any-overlap(start,end) in
// logarithmic time").
type DirtySet struct {
	ranges []interval
}

// NewDirtySet merges the given (start, end) spans into a DirtySet.
func NewDirtySet(spans [][2]int) *DirtySet {
	d := &DirtySet{}
	if len(spans) == 0 {
		return d
	}
	ivs := make([]interval, len(spans))
	for i, s := range spans {
		ivs[i] = interval{Start: s[0], End: s[1]}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })

	merged := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	d.ranges = merged
	return d
}

// Empty reports whether the set covers no bytes at all.
func (d *DirtySet) Empty() bool { return len(d.ranges) == 0 }

// AnyOverlap reports whether [start, end) intersects any range in the set.
// The merged ranges are sorted and non-overlapping, so this binary-searches
// for the last range starting before `end` and checks only that range
// instead of scanning linearly.
func (d *DirtySet) AnyOverlap(start, end int) bool {
	if len(d.ranges) == 0 {
		return false
	}
	// Largest index i such that ranges[i].Start < end.
	i := sort.Search(len(d.ranges), func(i int) bool { return d.ranges[i].Start >= end }) - 1
	if i < 0 {
		return false
	}
	return d.ranges[i].Start < end && start < d.ranges[i].End
}
