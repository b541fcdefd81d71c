package playback

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/trajectory"
)

// Scene mirrors one trajectory frame as ECS entities, one per record slot.
// Slots are created once; loading a frame only rewrites their components.
type Scene struct {
	world    *ecs.World
	mapper   *ecs.Map3[components.Slot, components.Position, components.Mass]
	filter   *ecs.Filter3[components.Slot, components.Position, components.Mass]
	entities []ecs.Entity

	reader *trajectory.Reader
	frame  []trajectory.Record
	day    int
	active int
}

// NewScene creates the slot entities for a trajectory and loads day 0.
func NewScene(reader *trajectory.Reader) (*Scene, error) {
	if reader.Frames() == 0 {
		return nil, fmt.Errorf("trajectory has no frames")
	}

	world := ecs.NewWorld()
	s := &Scene{
		world:    world,
		mapper:   ecs.NewMap3[components.Slot, components.Position, components.Mass](world),
		filter:   ecs.NewFilter3[components.Slot, components.Position, components.Mass](world),
		entities: make([]ecs.Entity, reader.Capacity()),
		reader:   reader,
		day:      -1,
	}

	for i := range s.entities {
		slot := components.Slot{Index: i}
		pos := components.Position{}
		mass := components.Mass{Value: components.SentinelMass}
		s.entities[i] = s.mapper.NewEntity(&slot, &pos, &mass)
	}

	if err := s.Load(0); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a day's frame into the slot entities.
func (s *Scene) Load(day int) error {
	if day == s.day {
		return nil
	}
	frame, err := s.reader.Frame(day, s.frame)
	if err != nil {
		return err
	}
	s.frame = frame

	for i, rec := range frame {
		_, pos, mass := s.mapper.Get(s.entities[i])
		pos.X = float32(rec.X)
		pos.Y = float32(rec.Y)
		mass.Value = rec.Mass
	}
	s.day = day
	s.active = trajectory.ActiveCount(frame)
	return nil
}

// Each calls fn for every slot holding a body.
func (s *Scene) Each(fn func(slot int, pos components.Position, mass int32)) {
	query := s.filter.Query()
	for query.Next() {
		slot, pos, mass := query.Get()
		if mass.Value < 0 {
			continue
		}
		fn(slot.Index, *pos, mass.Value)
	}
}

// TierCounts returns the number of bodies per display tier.
func (s *Scene) TierCounts() [3]int {
	var counts [3]int
	s.Each(func(_ int, _ components.Position, mass int32) {
		counts[components.TierOf(mass)]++
	})
	return counts
}

// Day returns the loaded day.
func (s *Scene) Day() int { return s.day }

// Active returns the number of bodies in the loaded frame.
func (s *Scene) Active() int { return s.active }

// Frames returns the number of days in the trajectory.
func (s *Scene) Frames() int { return s.reader.Frames() }
