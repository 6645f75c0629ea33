package export

import (
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

func TestFrameToSVG(t *testing.T) {
	bodies := []gravity.Body{
		{Position: vec.New(0, 0), Mass: 100, Pinned: true},
		{Position: vec.New(50, 0), Mass: 4},
	}
	path := []vec.V2{vec.New(50, 0), vec.New(50, 10), vec.New(45, 20)}

	svg := FrameToSVG(bodies, path, 400, 300)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, pinnedColor) || !strings.Contains(svg, freeColor) {
		t.Error("expected pinned and free colors")
	}
	if strings.Count(svg, "<polyline") != 1 {
		t.Error("expected one trajectory polyline")
	}
}

func TestFrameToSVGEmpty(t *testing.T) {
	svg := FrameToSVG(nil, nil, 100, 100)
	if strings.Contains(svg, "<circle") || strings.Contains(svg, "<polyline") {
		t.Error("empty frame should have no shapes")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("empty frame produced NaN coordinates")
	}
}

func TestFrameToSVGRadiusScales(t *testing.T) {
	bodies := []gravity.Body{{Position: vec.New(0, 0), Mass: 16}}
	svg := FrameToSVG(bodies, nil, 100, 100)

	// span 8 padded by 0.8 each side: 100px / 9.6 units
	if !strings.Contains(svg, `r="41.7"`) {
		t.Errorf("unexpected radius in %s", svg)
	}
}
