// Package camera maps the fixed-size world onto a viewport of any resolution.
package camera

import "math"

// Camera projects the fixed world rectangle into the viewport, letterboxing
// the leftover space symmetrically. World y is height above the baseline
// (y-up); screen y grows downward. No other component computes zoom.
type Camera struct {
	// Viewport dimensions (screen pixels)
	ViewportW, ViewportH float64

	// World dimensions (world units)
	WorldW, WorldH float64

	// Pixels per world unit
	Zoom float64

	// Letterbox margins (screen pixels)
	MarginX, MarginY float64
}

// New creates a camera for the given viewport and world dimensions.
func New(viewportW, viewportH, worldW, worldH float64) *Camera {
	c := &Camera{WorldW: worldW, WorldH: worldH}
	c.Resize(viewportW, viewportH)
	return c
}

// Resize updates viewport dimensions and recalculates zoom and margins.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.Zoom = math.Min(viewportW/c.WorldW, viewportH/c.WorldH)
	c.MarginX = (viewportW - c.WorldW*c.Zoom) / 2
	c.MarginY = (viewportH - c.WorldH*c.Zoom) / 2
}

// WorldToScreen converts world coordinates to screen pixels.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	sx = c.MarginX + wx*c.Zoom
	sy = c.MarginY + (c.WorldH-wy)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen pixels to world coordinates. It is the exact
// inverse of WorldToScreen for the same viewport dimensions.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	wx = (sx - c.MarginX) / c.Zoom
	wy = c.WorldH - (sy-c.MarginY)/c.Zoom
	return wx, wy
}

// WorldSizeToPixels converts a world-unit length to screen pixels.
func (c *Camera) WorldSizeToPixels(wu float64) float64 {
	return wu * c.Zoom
}

// PixelsToWorldSize converts a pixel length to world units.
func (c *Camera) PixelsToWorldSize(px float64) float64 {
	return px / c.Zoom
}

// InWorld reports whether a world x position lies inside the world bounds,
// with a slack margin in world units.
func (c *Camera) InWorld(wx, slack float64) bool {
	return wx >= -slack && wx <= c.WorldW+slack
}
