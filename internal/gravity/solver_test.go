package gravity

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/vec"
)

func mustAdd(t *testing.T, s *Solver, pos, vel vec.V2, pinned bool, mass float64) {
	t.Helper()
	if err := s.AddBody(pos, vel, pinned, mass); err != nil {
		t.Fatalf("add body failed: %v", err)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestAddBody_Invalid(t *testing.T) {
	tests := []struct {
		name string
		pos  vec.V2
		vel  vec.V2
		mass float64
	}{
		{"zero mass", vec.Zero, vec.Zero, 0},
		{"negative mass", vec.Zero, vec.Zero, -5},
		{"NaN mass", vec.Zero, vec.Zero, math.NaN()},
		{"infinite mass", vec.Zero, vec.Zero, math.Inf(1)},
		{"NaN position", vec.New(math.NaN(), 0), vec.Zero, 1},
		{"infinite velocity", vec.Zero, vec.New(0, math.Inf(-1)), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.AddBody(tt.pos, tt.vel, false, tt.mass)
			if !errors.Is(err, ErrInvalidBody) {
				t.Errorf("expected ErrInvalidBody, got %v", err)
			}
			if s.Len() != 0 {
				t.Errorf("expected no bodies, got %d", s.Len())
			}
		})
	}
}

func TestClearAndRemoveLast(t *testing.T) {
	s := New()
	if s.RemoveLast() {
		t.Error("RemoveLast on empty solver should report false")
	}

	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 1)
	mustAdd(t, s, vec.New(50, 0), vec.Zero, false, 2)
	mustAdd(t, s, vec.New(100, 0), vec.Zero, false, 3)

	if !s.RemoveLast() {
		t.Fatal("RemoveLast should report true")
	}
	bodies := s.Bodies()
	if len(bodies) != 2 || bodies[1].Mass != 2 {
		t.Errorf("expected last body removed, got %v", bodies)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty solver after Clear, got %d", s.Len())
	}
}

func TestBodies_ReturnsCopy(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(1, 2), vec.Zero, false, 4)

	bodies := s.Bodies()
	bodies[0].Mass = 99

	b, ok := s.Body(0)
	if !ok || b.Mass != 4 {
		t.Errorf("solver state mutated through snapshot: %v", b)
	}
	if _, ok := s.Body(1); ok {
		t.Error("out of range index should report false")
	}
}

func TestBody_Radius(t *testing.T) {
	if r := (Body{Mass: 25}).Radius(); r != 5 {
		t.Errorf("Radius() = %v, want 5", r)
	}
}

func TestForces_StoredWithMass(t *testing.T) {
	s := New(WithG(500))
	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 4)
	mustAdd(t, s, vec.New(100, 0), vec.Zero, false, 9)

	s.Step(0)

	bodies := s.Bodies()
	// G m1 m2 / r² = 500*4*9/10000
	want := 1.8
	if !near(bodies[0].Acceleration.X, want) || bodies[0].Acceleration.Y != 0 {
		t.Errorf("force on body 0 = %v, want (%v, 0)", bodies[0].Acceleration, want)
	}
	if !near(bodies[1].Acceleration.X, -want) {
		t.Errorf("force on body 1 = %v, want (%v, 0)", bodies[1].Acceleration, -want)
	}
}

func TestForces_PinnedReceivesNone(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.Zero, true, 100)
	mustAdd(t, s, vec.New(100, 0), vec.Zero, false, 1)

	s.Step(0)

	bodies := s.Bodies()
	if bodies[0].Acceleration != vec.Zero {
		t.Errorf("pinned body received force %v", bodies[0].Acceleration)
	}
	if !near(bodies[1].Acceleration.X, -5) {
		t.Errorf("free body force = %v, want (-5, 0)", bodies[1].Acceleration)
	}
}

func TestIntegrate_VelocityBeforePosition(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.Zero, true, 100)
	mustAdd(t, s, vec.New(100, 0), vec.Zero, false, 1)

	dt := 0.1
	s.Step(dt)

	b, _ := s.Body(1)
	// a = -5, v = a dt, p = p0 + v dt
	if !near(b.Velocity.X, -0.5) {
		t.Errorf("velocity = %v, want -0.5", b.Velocity.X)
	}
	if !near(b.Position.X, 99.95) {
		t.Errorf("position = %v, want 99.95", b.Position.X)
	}

	pinned, _ := s.Body(0)
	if pinned.Position != vec.Zero || pinned.Velocity != vec.Zero {
		t.Errorf("pinned body moved: %v", pinned)
	}
}

func TestCollision_Merge(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.New(1, 0), false, 4)
	mustAdd(t, s, vec.New(4, 0), vec.New(-2, 1), false, 9)

	s.Step(0)

	if s.Len() != 1 {
		t.Fatalf("expected 1 body after merge, got %d", s.Len())
	}
	b, _ := s.Body(0)
	if b.Mass != 13 {
		t.Errorf("merged mass = %v, want 13", b.Mass)
	}
	if !near(b.Velocity.X, -14.0/13) || !near(b.Velocity.Y, 9.0/13) {
		t.Errorf("merged velocity = %v", b.Velocity)
	}
	if b.Position != vec.Zero {
		t.Errorf("survivor should keep its position, got %v", b.Position)
	}

	events := s.LastCollisions()
	if len(events) != 1 || events[0].Kind != Merged || events[0].Lost != 0 {
		t.Errorf("unexpected collision events: %+v", events)
	}
}

func TestCollision_Sink(t *testing.T) {
	tests := []struct {
		name       string
		pinnedIdx  int
		freeOffset vec.V2
	}{
		{"pinned first", 0, vec.New(5, 0)},
		{"pinned second", 1, vec.New(0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			pinned := Body{Position: vec.New(10, 10), Pinned: true, Mass: 100}
			free := Body{Position: pinned.Position.Add(tt.freeOffset), Velocity: vec.New(3, 3), Mass: 1}
			order := []Body{pinned, free}
			if tt.pinnedIdx == 1 {
				order = []Body{free, pinned}
			}
			for _, b := range order {
				mustAdd(t, s, b.Position, b.Velocity, b.Pinned, b.Mass)
			}

			s.Step(0)

			if s.Len() != 1 {
				t.Fatalf("expected only the pinned body, got %d bodies", s.Len())
			}
			got, _ := s.Body(0)
			if !got.Pinned || got.Mass != 100 || got.Position != pinned.Position || got.Velocity != vec.Zero {
				t.Errorf("pinned body changed: %v", got)
			}
			events := s.LastCollisions()
			if len(events) != 1 || events[0].Kind != Absorbed || events[0].Lost != 1 {
				t.Errorf("unexpected collision events: %+v", events)
			}
		})
	}
}

func TestCollision_PinnedPairIsStable(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.Zero, true, 100)
	mustAdd(t, s, vec.New(1, 0), vec.Zero, true, 100)

	s.Step(1)

	if s.Len() != 2 {
		t.Errorf("pinned bodies should never be removed, got %d", s.Len())
	}
	if len(s.LastCollisions()) != 0 {
		t.Error("pinned overlap should not be reported as a collision")
	}
}

func TestCollision_Destroy(t *testing.T) {
	s := New(WithPolicy(Destroy))
	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 4)
	mustAdd(t, s, vec.New(3, 0), vec.Zero, false, 4)
	mustAdd(t, s, vec.New(200, 0), vec.Zero, false, 1)

	s.Step(0)

	if s.Len() != 1 {
		t.Fatalf("expected only the distant body, got %d", s.Len())
	}
	if b, _ := s.Body(0); b.Mass != 1 {
		t.Errorf("wrong survivor: %v", b)
	}
	events := s.LastCollisions()
	if len(events) != 1 || events[0].Kind != Destroyed || events[0].Lost != 8 {
		t.Errorf("unexpected collision events: %+v", events)
	}
}

func TestCollision_CascadingMerge(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 100)
	mustAdd(t, s, vec.New(19, 0), vec.Zero, false, 100)
	// Out of reach until the first merge grows the survivor's radius.
	mustAdd(t, s, vec.New(-14, 0), vec.Zero, false, 1)

	s.Step(0)

	if s.Len() != 1 {
		t.Fatalf("expected a single body, got %d", s.Len())
	}
	if b, _ := s.Body(0); b.Mass != 201 {
		t.Errorf("mass = %v, want 201", b.Mass)
	}
	if n := len(s.LastCollisions()); n != 2 {
		t.Errorf("expected 2 merges, got %d", n)
	}
}

func TestCoincidentBodies(t *testing.T) {
	t.Run("unguarded", func(t *testing.T) {
		s := New()
		mustAdd(t, s, vec.New(5, 5), vec.Zero, false, 1)
		mustAdd(t, s, vec.New(5, 5), vec.Zero, false, 1)

		s.Step(0.1)

		if s.Valid() {
			t.Error("coincident bodies should produce non-finite state without a minimum separation")
		}
	})

	t.Run("clamped", func(t *testing.T) {
		s := New(WithMinSeparation(1))
		mustAdd(t, s, vec.New(5, 5), vec.Zero, false, 1)
		mustAdd(t, s, vec.New(5, 5), vec.Zero, false, 1)

		s.Step(0.1)

		if !s.Valid() {
			t.Error("clamped separation should keep state finite")
		}
		if s.Len() != 1 {
			t.Errorf("coincident bodies should merge, got %d", s.Len())
		}
	})
}

func TestCenterOfMass(t *testing.T) {
	s := New()
	if _, ok := s.CenterOfMass(); ok {
		t.Error("empty solver should have undefined center of mass")
	}

	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 1)
	mustAdd(t, s, vec.New(10, 0), vec.Zero, false, 1)

	com, ok := s.CenterOfMass()
	if !ok || com != vec.New(5, 0) {
		t.Errorf("CenterOfMass() = %v, %v; want (5, 0), true", com, ok)
	}

	mustAdd(t, s, vec.New(10, 30), vec.Zero, true, 2)
	com, _ = s.CenterOfMass()
	if !near(com.X, 7.5) || !near(com.Y, 15) {
		t.Errorf("weighted center of mass = %v, want (7.5, 15)", com)
	}
}

func TestPredictTrajectory_FreeFlight(t *testing.T) {
	s := New()
	path, err := s.PredictTrajectory(Body{Velocity: vec.New(1, 0), Mass: 1}, 3)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(path) != 3*DefaultResolution {
		t.Fatalf("expected %d points, got %d", 3*DefaultResolution, len(path))
	}
	if last := path[len(path)-1]; !near(last.X, 3) || last.Y != 0 {
		t.Errorf("final position = %v, want (3, 0)", last)
	}
}

func TestPredictTrajectory_EdgeCases(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(100, 0), vec.Zero, true, 400)

	path, err := s.PredictTrajectory(Body{Velocity: vec.New(10, 0), Pinned: true, Mass: 1}, 10)
	if err != nil || len(path) != 0 {
		t.Errorf("pinned candidate: got %d points, err %v", len(path), err)
	}

	path, err = s.PredictTrajectory(Body{Mass: 1}, 0)
	if err != nil || len(path) != 0 {
		t.Errorf("zero duration: got %d points, err %v", len(path), err)
	}

	if _, err := s.PredictTrajectory(Body{Mass: 0}, 10); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody, got %v", err)
	}

	if _, err := s.PredictTrajectory(Body{Mass: 1}, math.Inf(1)); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}

	for _, d := range []float64{1e19, MaxPreviewSteps} {
		if _, err := s.PredictTrajectory(Body{Position: vec.New(0, 500), Mass: 1}, d); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %g: expected ErrInvalidDuration, got %v", d, err)
		}
	}
	path, err = s.PredictTrajectory(Body{Position: vec.New(0, 500), Mass: 1}, MaxPreviewSteps/2)
	if err != nil || len(path) == 0 {
		t.Errorf("longest allowed preview: got %d points, err %v", len(path), err)
	}

	// unguarded forces on a coincident candidate are NaN; the path ends there
	path, err = s.PredictTrajectory(Body{Position: vec.New(100, 0), Mass: 1}, 10)
	if err != nil || len(path) != 0 {
		t.Errorf("coincident candidate: got %v, err %v", path, err)
	}

	clamped := New(WithMinSeparation(1))
	mustAdd(t, clamped, vec.New(100, 0), vec.Zero, true, 400)
	path, err = clamped.PredictTrajectory(Body{Position: vec.New(100, 0), Mass: 1}, 10)
	if err != nil || len(path) != 0 {
		t.Errorf("coincident candidate, clamped: got %v, err %v", path, err)
	}
}

func TestPredictTrajectory_DoesNotMutate(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(0, 0), vec.Zero, false, 100)
	mustAdd(t, s, vec.New(300, 0), vec.New(0, 5), false, 10)
	before := s.Bodies()

	if _, err := s.PredictTrajectory(Body{Position: vec.New(0, 200), Velocity: vec.New(15, 0), Mass: 50}, 20); err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	after := s.Bodies()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("body %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestPredictTrajectory_Tunneling(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(100, 0), vec.Zero, true, 400)

	// One sub-step jumps from x=0 to x=205, clear of the radius-20 body on
	// both ends; only the midpoint lies inside it.
	path, err := s.PredictTrajectory(Body{Velocity: vec.New(400, 0), Mass: 1}, 5)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("expected the path to stop at the first sub-step, got %d points", len(path))
	}
}

func TestPredictTrajectory_StopsOutsideBodies(t *testing.T) {
	s := New()
	mustAdd(t, s, vec.New(100, 0), vec.Zero, true, 400)

	full := 20 * DefaultResolution
	path, err := s.PredictTrajectory(Body{Velocity: vec.New(20, 0), Mass: 1}, 20)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if len(path) == 0 || len(path) >= full {
		t.Fatalf("expected a truncated path, got %d of %d points", len(path), full)
	}
	for i, p := range path {
		if vec.Dist(p, vec.New(100, 0)) < 21 {
			t.Errorf("point %d at %v is inside the body", i, p)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", Merge, false},
		{"merge", Merge, false},
		{"destroy", Destroy, false},
		{"explode", Merge, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestEnergyAndMomentum(t *testing.T) {
	s := New(WithG(1))
	mustAdd(t, s, vec.New(0, 0), vec.New(1, 0), false, 2)
	mustAdd(t, s, vec.New(10, 0), vec.New(0, 2), false, 3)

	// ke = 0.5*2*1 + 0.5*3*4 = 7, pe = -1*2*3/10
	if e := s.Energy(); !near(e, 7-0.6) {
		t.Errorf("Energy() = %v, want %v", e, 7-0.6)
	}
	if p := s.Momentum(); p != vec.New(2, 6) {
		t.Errorf("Momentum() = %v, want (2, 6)", p)
	}
	// 3 * (10*2 - 0*0)
	if l := s.AngularMomentum(); !near(l, 60) {
		t.Errorf("AngularMomentum() = %v, want 60", l)
	}
}
