package gravity_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

var _ = Describe("Solver", func() {
	var s *gravity.Solver

	BeforeEach(func() {
		s = gravity.New(gravity.WithG(500))
	})

	Describe("merging free bodies", func() {
		It("conserves momentum and mass", func() {
			m1, m2 := 16.0, 25.0
			v1, v2 := vec.New(3, -1), vec.New(-1, 4)
			Expect(s.AddBody(vec.New(0, 0), v1, false, m1)).To(Succeed())
			Expect(s.AddBody(vec.New(6, 0), v2, false, m2)).To(Succeed())

			s.Step(0)

			Expect(s.Len()).To(Equal(1))
			merged, _ := s.Body(0)
			want := v1.Scale(m1).Add(v2.Scale(m2)).Div(m1 + m2)
			Expect(merged.Mass).To(Equal(m1 + m2))
			Expect(merged.Velocity.X).To(BeNumerically("~", want.X, 1e-12))
			Expect(merged.Velocity.Y).To(BeNumerically("~", want.Y, 1e-12))
		})
	})

	Describe("pinned sinks", func() {
		It("remove the free body and stay unchanged", func() {
			Expect(s.AddBody(vec.New(0, 0), vec.Zero, true, 900)).To(Succeed())
			Expect(s.AddBody(vec.New(20, 0), vec.New(0, 10), false, 4)).To(Succeed())
			before, _ := s.Body(0)

			s.Step(0.01)

			Expect(s.Len()).To(Equal(1))
			after, _ := s.Body(0)
			Expect(after.Position).To(Equal(before.Position))
			Expect(after.Velocity).To(Equal(before.Velocity))
			Expect(after.Mass).To(Equal(before.Mass))
		})
	})

	Describe("collision resolution", func() {
		It("leaves no overlapping pairs after a step", func() {
			rng := rand.New(rand.NewSource(7))
			Expect(s.AddBody(vec.New(-60, 0), vec.Zero, true, 200)).To(Succeed())
			Expect(s.AddBody(vec.New(60, 0), vec.Zero, true, 200)).To(Succeed())
			for i := 0; i < 60; i++ {
				pos := vec.New(rng.Float64()*200-100, rng.Float64()*200-100)
				vel := vec.New(rng.Float64()*10-5, rng.Float64()*10-5)
				Expect(s.AddBody(pos, vel, false, 1+rng.Float64()*24)).To(Succeed())
			}

			for tick := 0; tick < 20; tick++ {
				s.Step(0.01)

				bodies := s.Bodies()
				for i := range bodies {
					for j := i + 1; j < len(bodies); j++ {
						if bodies[i].Pinned && bodies[j].Pinned {
							continue
						}
						d := vec.Dist(bodies[i].Position, bodies[j].Position)
						Expect(d).To(BeNumerically(">=", bodies[i].Radius()+bodies[j].Radius()))
					}
				}
			}
		})

		It("conserves mass except for what sinks absorb", func() {
			rng := rand.New(rand.NewSource(11))
			Expect(s.AddBody(vec.New(0, 0), vec.Zero, true, 400)).To(Succeed())
			for i := 0; i < 40; i++ {
				pos := vec.New(rng.Float64()*300-150, rng.Float64()*300-150)
				Expect(s.AddBody(pos, vec.Zero, false, 1+rng.Float64()*9)).To(Succeed())
			}
			total := s.TotalMass()

			lost := 0.0
			for tick := 0; tick < 50; tick++ {
				s.Step(0.05)
				for _, c := range s.LastCollisions() {
					lost += c.Lost
				}
			}

			Expect(s.TotalMass() + lost).To(BeNumerically("~", total, 1e-9))
		})
	})

	Describe("semi-implicit Euler", func() {
		var attracted func() *gravity.Solver

		BeforeEach(func() {
			attracted = func() *gravity.Solver {
				out := gravity.New(gravity.WithG(500))
				Expect(out.AddBody(vec.New(0, 0), vec.Zero, true, 1000)).To(Succeed())
				Expect(out.AddBody(vec.New(100, 0), vec.Zero, false, 1)).To(Succeed())
				return out
			}
		})

		It("moves a resting body within its first step", func() {
			a := attracted()
			a.Step(0.1)
			b, _ := a.Body(1)
			Expect(b.Position.X).To(BeNumerically("<", 100))
		})

		It("depends on how elapsed time is split", func() {
			split := attracted()
			split.Step(0.1)
			split.Step(0.2)

			whole := attracted()
			whole.Step(0.3)

			a, _ := split.Body(1)
			b, _ := whole.Body(1)
			Expect(a.Position).NotTo(Equal(b.Position))
			Expect(a.Velocity).NotTo(Equal(b.Velocity))
		})
	})

	Describe("trajectory preview", func() {
		It("stops short when one sub-step would tunnel through a body", func() {
			Expect(s.AddBody(vec.New(100, 0), vec.Zero, true, 400)).To(Succeed())
			duration := 5.0

			path, err := s.PredictTrajectory(gravity.Body{Velocity: vec.New(400, 0), Mass: 1}, duration)

			Expect(err).NotTo(HaveOccurred())
			Expect(len(path)).To(BeNumerically("<", int(duration)*s.Resolution()))
		})

		It("runs the full duration when nothing is in the way", func() {
			Expect(s.AddBody(vec.New(0, 1000), vec.Zero, true, 100)).To(Succeed())

			path, err := s.PredictTrajectory(gravity.Body{Velocity: vec.New(1, 0), Mass: 1}, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(HaveLen(10 * s.Resolution()))
		})
	})

	Describe("center of mass", func() {
		It("is undefined for an empty solver", func() {
			_, ok := s.CenterOfMass()
			Expect(ok).To(BeFalse())
		})

		It("averages equal masses", func() {
			Expect(s.AddBody(vec.New(0, 0), vec.Zero, false, 1)).To(Succeed())
			Expect(s.AddBody(vec.New(10, 0), vec.Zero, false, 1)).To(Succeed())

			com, ok := s.CenterOfMass()
			Expect(ok).To(BeTrue())
			Expect(com).To(Equal(vec.New(5, 0)))
		})
	})

	Describe("two-body orbit", func() {
		It("keeps a circular orbit within a narrow band", func() {
			const (
				centralMass = 1000.0
				radius      = 100.0
				dt          = 0.001
			)
			speed := math.Sqrt(gravity.DefaultG * centralMass / radius)
			Expect(s.AddBody(vec.Zero, vec.Zero, true, centralMass)).To(Succeed())
			Expect(s.AddBody(vec.New(radius, 0), vec.New(0, speed), false, 1)).To(Succeed())
			l0 := s.AngularMomentum()

			for i := 0; i < 20000; i++ {
				s.Step(dt)
				if i%100 == 0 {
					Expect(s.Len()).To(Equal(2))
					b, _ := s.Body(1)
					Expect(b.Position.Mag()).To(BeNumerically("~", radius, 1.0))
				}
			}

			Expect(s.AngularMomentum()).To(BeNumerically("~", l0, math.Abs(l0)*1e-6))
		})
	})
})
