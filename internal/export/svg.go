package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	freeColor       = "#00ccff"
	pinnedColor     = "#ffaa00"
	trajectoryColor = "#00ff88"
)

// FrameToSVG draws bodies as circles of radius sqrt(mass) and the trajectory
// as a polyline. Both axes share one scale so circles stay round; world y
// points up.
func FrameToSVG(bodies []gravity.Body, trajectory []vec.V2, width, height int) string {
	minP, maxP, ok := bounds(bodies, trajectory)
	if !ok {
		minP, maxP = vec.Splat(-1), vec.Splat(1)
	}

	span := maxP.Sub(minP)
	pad := 0.1 * math.Max(math.Max(span.X, span.Y), 1)
	minP = minP.Sub(vec.Splat(pad))
	maxP = maxP.Add(vec.Splat(pad))
	span = maxP.Sub(minP)

	scale := math.Min(float64(width)/span.X, float64(height)/span.Y)
	offX := (float64(width) - span.X*scale) / 2
	offY := (float64(height) - span.Y*scale) / 2
	project := func(p vec.V2) (float64, float64) {
		return offX + (p.X-minP.X)*scale, float64(height) - offY - (p.Y-minP.Y)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if len(trajectory) > 1 {
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3" points="`, trajectoryColor))
		for i, p := range trajectory {
			x, y := project(p)
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	for _, b := range bodies {
		if !b.IsFinite() {
			continue
		}
		x, y := project(b.Position)
		color := freeColor
		if b.Pinned {
			color = pinnedColor
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, b.Radius()*scale, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(bodies []gravity.Body, trajectory []vec.V2) (vec.V2, vec.V2, bool) {
	minP := vec.Splat(math.Inf(1))
	maxP := vec.Splat(math.Inf(-1))
	grow := func(p vec.V2, r float64) {
		minP = vec.New(math.Min(minP.X, p.X-r), math.Min(minP.Y, p.Y-r))
		maxP = vec.New(math.Max(maxP.X, p.X+r), math.Max(maxP.Y, p.Y+r))
	}
	for _, b := range bodies {
		if b.IsFinite() {
			grow(b.Position, b.Radius())
		}
	}
	for _, p := range trajectory {
		if p.IsFinite() {
			grow(p, 0)
		}
	}
	return minP, maxP, minP.IsFinite() && maxP.IsFinite()
}
