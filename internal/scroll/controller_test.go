// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"testing"
	"time"
)

// testController returns a controller with a fake clock the test advances.
func testController() (*Controller, *time.Time) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewController()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestOnContentGrown_SmallDeltaIsInstant(t *testing.T) {
	c, _ := testController()
	// 1000 lines of content, 40 visible, 30 below the viewport.
	c.SetGeometry(930, 1000, 40)

	d := c.OnContentGrown(true)
	if d.Mode != ModeInstant {
		t.Errorf("mode = %v, want instant", d.Mode)
	}
	if d.Target != 960 {
		t.Errorf("target = %d, want 960", d.Target)
	}
}

func TestOnContentGrown_LargeDeltaIsSmooth(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(880, 1000, 40)

	d := c.OnContentGrown(true)
	if d.Mode != ModeSmooth {
		t.Errorf("mode = %v, want smooth", d.Mode)
	}
}

func TestOnContentGrown_AtBottomIsNoOp(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(960, 1000, 40)

	if d := c.OnContentGrown(true); d.Mode != ModeNone {
		t.Errorf("mode = %v, want none", d.Mode)
	}
}

func TestOnContentGrown_NotStreamingNeverInstant(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(930, 1000, 40)

	if d := c.OnContentGrown(false); d.Mode != ModeSmooth {
		t.Errorf("mode = %v, want smooth", d.Mode)
	}
}

func TestManualScroll_SuppressesFollowing(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(960, 1000, 40)

	// User scrolls far upward.
	c.ObserveUserScroll(400)
	if !c.ManualScrolling() {
		t.Fatal("upward scroll away from bottom must set manual intent")
	}

	if d := c.OnContentGrown(true); d.Mode != ModeNone {
		t.Errorf("mode = %v, want none while manual scrolling", d.Mode)
	}
	if d := c.OnProductsShown(); d.Mode != ModeNone {
		t.Errorf("products mode = %v, want none while manual scrolling", d.Mode)
	}
}

func TestManualScroll_ClearsAfterQuietPeriodNearBottom(t *testing.T) {
	c, now := testController()
	c.SetGeometry(960, 1000, 40)
	c.ObserveUserScroll(400)

	// Quiet period elapses far from the bottom: intent must hold.
	*now = now.Add(time.Second)
	if !c.ManualScrolling() {
		t.Fatal("intent cleared while still far from bottom")
	}

	// Back near the bottom, but inside the quiet period.
	c.ObserveUserScroll(950)
	*now = now.Add(50 * time.Millisecond)
	if !c.ManualScrolling() {
		t.Fatal("intent cleared before the quiet period elapsed")
	}

	// Quiet period elapses near the bottom: intent clears.
	*now = now.Add(150 * time.Millisecond)
	if c.ManualScrolling() {
		t.Fatal("intent held after quiet period near bottom")
	}
	if d := c.OnContentGrown(true); d.Mode == ModeNone {
		t.Error("following must resume once intent clears")
	}
}

func TestScrollingDownNeverSetsIntent(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(400, 1000, 40)

	c.ObserveUserScroll(700)
	if c.ManualScrolling() {
		t.Error("downward scroll must not set manual intent")
	}
}

func TestOnProductsShown_DelaysForRender(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(940, 1000, 40)

	d := c.OnProductsShown()
	if d.Mode != ModeSmooth || d.Delay != ProductRenderDelay {
		t.Errorf("decision = %+v", d)
	}
	if d.Target != 960 {
		t.Errorf("target = %d, want 960", d.Target)
	}
}

func TestOnAttachmentRevealed_OffsetsAboveElement(t *testing.T) {
	c, _ := testController()
	c.SetGeometry(0, 1000, 40)

	d := c.OnAttachmentRevealed(500)
	if d.Mode != ModeSmooth || d.Target != 480 {
		t.Errorf("decision = %+v", d)
	}

	// Near the top the target clamps to zero.
	if d := c.OnAttachmentRevealed(5); d.Target != 0 {
		t.Errorf("target = %d, want 0", d.Target)
	}

	// Past the end the target clamps to the bottom offset.
	if d := c.OnAttachmentRevealed(2000); d.Target != 960 {
		t.Errorf("target = %d, want 960", d.Target)
	}
}
