// Package playback loads recorded trajectories into an ECS scene and steps
// through their frames.
package playback

// Player advances through frames at a configurable delay.
type Player struct {
	Frames  int
	Day     int
	Playing bool
	Loop    bool

	// Delay between frames in seconds
	Delay float32

	elapsed float32
}

// NewPlayer creates a paused player at day 0.
func NewPlayer(frames int, delay float32) *Player {
	return &Player{Frames: frames, Delay: delay}
}

// Update advances playback by dt seconds and returns true if the day changed.
// A zero delay advances one frame per update.
func (p *Player) Update(dt float32) bool {
	if !p.Playing || p.Frames == 0 {
		return false
	}

	p.elapsed += dt
	if p.elapsed < p.Delay {
		return false
	}
	p.elapsed = 0

	if p.Day+1 >= p.Frames {
		if !p.Loop {
			p.Playing = false
			return false
		}
		p.Day = 0
		return true
	}
	p.Day++
	return true
}

// Toggle switches between playing and paused. Starting from the last
// frame rewinds to the first.
func (p *Player) Toggle() {
	p.Playing = !p.Playing
	if p.Playing && p.Day+1 >= p.Frames {
		p.Day = 0
	}
	p.elapsed = 0
}

// Seek jumps to a day, clamped to the available frames.
func (p *Player) Seek(day int) {
	if day < 0 {
		day = 0
	}
	if day >= p.Frames {
		day = p.Frames - 1
	}
	p.Day = day
	p.elapsed = 0
}

// Step moves by n frames, clamped.
func (p *Player) Step(n int) {
	p.Seek(p.Day + n)
}
