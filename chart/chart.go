// Package chart turns backend series into bar chart specs, renders them
// as SVG and maps click positions back to the bar they landed on.
package chart

import (
	"github.com/eringen/followdash/backend"
)

// Dataset is one row of bar values sharing the chart's label axis.
type Dataset struct {
	Label  string
	Values []int64
	Color  string // hex, no leading #
}

// Spec is everything needed to draw a bar chart. Labels keep the order they
// were given in; nothing here sorts.
type Spec struct {
	Labels   []string
	Datasets []Dataset
}

// Size is the pixel size of a rendered chart.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is the size the dashboard embeds charts at.
var DefaultSize = Size{Width: 720, Height: 260}

const (
	colorFollowers  = "3b82f6"
	colorFollowed   = "22c55e"
	colorUnfollowed = "ef4444"
)

// CountChart builds the total-follower chart: one bar per date.
func CountChart(series backend.Series) Spec {
	return Spec{
		Labels: series.Keys(),
		Datasets: []Dataset{
			{Label: "Followers", Values: series.Values(), Color: colorFollowers},
		},
	}
}

// EventChart builds the daily follow/unfollow chart. Labels come from
// followed first, then any dates only unfollowed carries. Values are
// plotted as magnitudes so both bars grow upward.
func EventChart(followed, unfollowed backend.Series) Spec {
	labels := followed.Keys()
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		seen[l] = true
	}
	for _, p := range unfollowed {
		if !seen[p.Date] {
			seen[p.Date] = true
			labels = append(labels, p.Date)
		}
	}
	return Spec{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Followed", Values: valuesFor(labels, followed.Abs()), Color: colorFollowed},
			{Label: "Unfollowed", Values: valuesFor(labels, unfollowed.Abs()), Color: colorUnfollowed},
		},
	}
}

func valuesFor(labels []string, s backend.Series) []int64 {
	byDate := make(map[string]int64, len(s))
	for _, p := range s {
		byDate[p.Date] += p.Count
	}
	out := make([]int64, len(labels))
	for i, l := range labels {
		out[i] = byDate[l]
	}
	return out
}

// Max returns the largest value across all datasets, or 0 for an empty spec.
func (s Spec) Max() int64 {
	var m int64
	for _, ds := range s.Datasets {
		for _, v := range ds.Values {
			if v > m {
				m = v
			}
		}
	}
	return m
}

func (s Spec) value(ds, i int) int64 {
	vals := s.Datasets[ds].Values
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
