package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Scenario{
	"orbit": {
		Name: "orbit", G: 500, Dt: 0.001, Duration: 20, TimeFactor: 1,
		Collision: "merge", PreviewResolution: 2, SampleEvery: 20, ValidateState: true,
		Bodies: []BodyConfig{
			{Pos: [2]float64{0, 0}, Mass: 1000, Pinned: true},
			{Pos: [2]float64{100, 0}, Vel: [2]float64{0, math.Sqrt(500 * 1000 / 100.0)}, Mass: 1},
		},
	},
	"binary": {
		Name: "binary", G: 500, Dt: 0.001, Duration: 20, TimeFactor: 1,
		Collision: "merge", PreviewResolution: 2, SampleEvery: 20, ValidateState: true,
		Bodies: []BodyConfig{
			{Pos: [2]float64{-80, 0}, Vel: [2]float64{0, -25}, Mass: 400},
			{Pos: [2]float64{80, 0}, Vel: [2]float64{0, 25}, Mass: 400},
		},
	},
	"system": {
		Name: "system", G: 500, Dt: 0.001, Duration: 30, TimeFactor: 1,
		Collision: "merge", PreviewResolution: 2, SampleEvery: 20, ValidateState: true, AutoOrbit: true,
		Bodies: []BodyConfig{
			{Pos: [2]float64{0, 0}, Mass: 2000, Pinned: true},
			{Pos: [2]float64{120, 0}, Mass: 4},
			{Pos: [2]float64{0, -200}, Mass: 9},
			{Pos: [2]float64{-300, 0}, Mass: 16},
		},
	},
	"sink": {
		Name: "sink", G: 500, Dt: 0.001, Duration: 10, TimeFactor: 1,
		Collision: "merge", PreviewResolution: 2, SampleEvery: 10, ValidateState: true,
		Bodies: []BodyConfig{
			{Pos: [2]float64{0, 0}, Mass: 900, Pinned: true},
			{Pos: [2]float64{150, 0}, Vel: [2]float64{0, 10}, Mass: 4},
			{Pos: [2]float64{-150, 40}, Vel: [2]float64{5, 0}, Mass: 4},
			{Pos: [2]float64{0, 180}, Mass: 9},
		},
	},
	"collision": {
		Name: "collision", G: 500, Dt: 0.001, Duration: 5, TimeFactor: 1,
		Collision: "merge", PreviewResolution: 2, SampleEvery: 10, ValidateState: true,
		Bodies: []BodyConfig{
			{Pos: [2]float64{-100, 0}, Vel: [2]float64{30, 5}, Mass: 25},
			{Pos: [2]float64{100, 0}, Vel: [2]float64{-30, -5}, Mass: 36},
		},
	},
	"cluster": {
		Name: "cluster", G: 500, Dt: 0.001, Duration: 10, TimeFactor: 1,
		Collision: "merge", MinSeparation: 1, PreviewResolution: 2, SampleEvery: 20,
		ValidateState: true, Seed: 42, Jitter: 5,
		Bodies: []BodyConfig{
			{Pos: [2]float64{-120, -40}, Mass: 10},
			{Pos: [2]float64{-60, 90}, Mass: 12},
			{Pos: [2]float64{10, -110}, Mass: 8},
			{Pos: [2]float64{70, 60}, Mass: 15},
			{Pos: [2]float64{140, -20}, Mass: 9},
			{Pos: [2]float64{-10, 10}, Mass: 20},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	c := s.Clone()
	if c.AutoOrbit {
		SetOrbitalVelocities(c.G, c.Bodies)
	}
	return c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
