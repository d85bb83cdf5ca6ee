// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"sync"
	"time"
)

// =============================================================================
// TUNING
// =============================================================================

const (
	// DefaultNearBottomThreshold is how close to the bottom the viewport
	// must be to still count as "following".
	DefaultNearBottomThreshold = 100

	// DefaultSmallDelta separates token-chasing jumps from big moves. Under
	// this distance the viewport snaps instantly so the text appears to
	// grow in place; over it the move is animated.
	DefaultSmallDelta = 50

	// DefaultElementOffset is how far above a revealed attachment's top
	// edge the viewport lands.
	DefaultElementOffset = 20

	// DefaultQuietPeriod is how long after the user's last scroll their
	// manual intent persists. It only clears once they are near the bottom
	// again.
	DefaultQuietPeriod = 150 * time.Millisecond

	// ProductRenderDelay gives a freshly shown product carousel time to
	// render before scrolling to it.
	ProductRenderDelay = 300 * time.Millisecond

	// TickInterval is the coalescing cadence for streaming mutations; token
	// bursts inside one tick produce a single decision.
	TickInterval = 33 * time.Millisecond
)

// =============================================================================
// DECISIONS
// =============================================================================

// Mode says how to move the viewport.
type Mode int

const (
	// ModeNone leaves the viewport alone.
	ModeNone Mode = iota

	// ModeInstant jumps without animation.
	ModeInstant

	// ModeSmooth animates the move.
	ModeSmooth
)

// Decision is one viewport adjustment. Target is the desired offset; Delay
// is how long the UI should wait before applying it.
type Decision struct {
	Mode   Mode
	Target int
	Delay  time.Duration
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller tracks viewport geometry and user scroll intent.
type Controller struct {
	mu sync.Mutex

	threshold     int
	smallDelta    int
	elementOffset int
	quiet         time.Duration

	offset        int
	contentHeight int
	viewHeight    int

	manualScroll   bool
	lastUserScroll time.Time

	now func() time.Time
}

// NewController returns a controller with the default tuning.
func NewController() *Controller {
	return &Controller{
		threshold:     DefaultNearBottomThreshold,
		smallDelta:    DefaultSmallDelta,
		elementOffset: DefaultElementOffset,
		quiet:         DefaultQuietPeriod,
		now:           time.Now,
	}
}

// SetGeometry records the current viewport shape. Called by the UI whenever
// the viewport resizes or content re-renders.
func (c *Controller) SetGeometry(offset, contentHeight, viewHeight int) {
	c.mu.Lock()
	c.offset = offset
	c.contentHeight = contentHeight
	c.viewHeight = viewHeight
	c.mu.Unlock()
}

// ObserveUserScroll records a user-initiated move. Scrolling upward away
// from the bottom marks manual intent; scrolling back down near the bottom
// starts the quiet period that eventually clears it.
func (c *Controller) ObserveUserScroll(newOffset int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	movedUp := newOffset < c.offset
	c.offset = newOffset
	c.lastUserScroll = c.now()

	if movedUp && !c.nearBottomLocked() {
		c.manualScroll = true
	}
}

// distanceFromBottom is how many lines of content sit below the viewport.
func (c *Controller) distanceFromBottom() int {
	d := c.contentHeight - c.viewHeight - c.offset
	if d < 0 {
		return 0
	}
	return d
}

func (c *Controller) nearBottomLocked() bool {
	return c.distanceFromBottom() <= c.threshold
}

// NearBottom reports whether the viewport counts as following the bottom.
func (c *Controller) NearBottom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nearBottomLocked()
}

// ManualScrolling reports whether the user's scroll intent still holds,
// clearing it once the quiet period has elapsed near the bottom.
func (c *Controller) ManualScrolling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manualScrollingLocked()
}

func (c *Controller) manualScrollingLocked() bool {
	if !c.manualScroll {
		return false
	}
	if c.nearBottomLocked() && c.now().Sub(c.lastUserScroll) >= c.quiet {
		c.manualScroll = false
	}
	return c.manualScroll
}

// bottomOffset is the offset that pins the viewport to the newest content.
func (c *Controller) bottomOffset() int {
	o := c.contentHeight - c.viewHeight
	if o < 0 {
		return 0
	}
	return o
}

// OnContentGrown decides the follow-up move after message content changed.
// streaming marks an actively growing assistant answer.
func (c *Controller) OnContentGrown(streaming bool) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manualScrollingLocked() {
		return Decision{Mode: ModeNone}
	}

	delta := c.distanceFromBottom()
	if delta == 0 {
		return Decision{Mode: ModeNone}
	}

	target := c.bottomOffset()
	if streaming && delta < c.smallDelta {
		// Chase the incoming text without animation stutter.
		return Decision{Mode: ModeInstant, Target: target}
	}
	return Decision{Mode: ModeSmooth, Target: target}
}

// OnProductsShown decides the move after a product attachment became
// visible. The delay lets the carousel render first.
func (c *Controller) OnProductsShown() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manualScrollingLocked() {
		return Decision{Mode: ModeNone}
	}
	return Decision{Mode: ModeSmooth, Target: c.bottomOffset(), Delay: ProductRenderDelay}
}

// OnAttachmentRevealed targets a re-shown attachment rather than the
// document bottom, landing slightly above its top edge. Honored even during
// manual scrolling since the user asked for the element explicitly.
func (c *Controller) OnAttachmentRevealed(elementTop int) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := elementTop - c.elementOffset
	if target < 0 {
		target = 0
	}
	if max := c.bottomOffset(); target > max {
		target = max
	}
	return Decision{Mode: ModeSmooth, Target: target}
}
