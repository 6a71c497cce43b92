// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package animate

import "sync"

// Player advances a set of animations together and drops the finished ones.
//
// Player is safe for concurrent use. Animations are updated outside the
// Player's lock, so an animation's property handlers may add to the Player.
type Player struct {
	mu    sync.Mutex
	anims []Animation
}

// Add schedules a for the next Advance.
func (p *Player) Add(a Animation) {
	p.mu.Lock()
	p.anims = append(p.anims, a)
	p.mu.Unlock()
}

// Len returns the number of running animations.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.anims)
}

// Advance updates every animation by dt seconds and returns how many are
// still running.
func (p *Player) Advance(dt float32) int {
	p.mu.Lock()
	batch := p.anims
	p.anims = nil
	p.mu.Unlock()

	running := batch[:0]
	for _, a := range batch {
		if !a.Update(dt) {
			running = append(running, a)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// animations added during the update go after the survivors
	p.anims = append(running, p.anims...)
	return len(p.anims)
}
