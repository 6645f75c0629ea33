package main

import (
	"testing"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vec"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		n       int
		wantErr bool
	}{
		{"dt=0.01,0.001", "dt", 2, false},
		{"g=500", "g", 1, false},
		{" g = 1, 2 ,3", "g", 3, false},
		{"dt", "", 0, true},
		{"=1", "", 0, true},
		{"dt=", "", 0, true},
		{"dt=a", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, vals, err := parseParam(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || len(vals) != tt.n {
				t.Errorf("got %s %v", name, vals)
			}
		})
	}
}

func TestSeriesData(t *testing.T) {
	frames := []sim.Frame{
		{Time: 0, Bodies: []gravity.Body{
			{Position: vec.New(1, 2), Velocity: vec.New(3, 4), Mass: 5},
			{Position: vec.New(0, 0), Mass: 7, Pinned: true},
		}},
		{Time: 1, Bodies: []gravity.Body{
			{Position: vec.New(2, 3), Velocity: vec.New(0, 1), Mass: 12},
		}},
	}

	speed, _, err := seriesData(frames, "speed", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(speed) != 2 || speed[0] != 5 || speed[1] != 1 {
		t.Errorf("unexpected speed series %v", speed)
	}

	second, _, _ := seriesData(frames, "mass", 1)
	if len(second) != 1 {
		t.Errorf("series should stop when the body is gone, got %v", second)
	}

	total, _, _ := seriesData(frames, "total_mass", 0)
	if total[0] != 12 || total[1] != 12 {
		t.Errorf("unexpected total mass %v", total)
	}

	count, _, _ := seriesData(frames, "bodies", 0)
	if count[0] != 2 || count[1] != 1 {
		t.Errorf("unexpected counts %v", count)
	}

	if _, _, err := seriesData(frames, "nope", 0); err == nil {
		t.Error("expected unknown series error")
	}
}
