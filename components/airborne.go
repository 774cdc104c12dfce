package components

// VelocityHistoryLen is the number of samples kept for averaged collision
// response. Single-frame velocity at impact is noisy under variable frame
// timing; a short rolling average gives stable bounce direction without
// perceptible input lag.
const VelocityHistoryLen = 5

// Airborne is the ballistic state of a scrap between release and landing.
// When Active is false, velocity and offset are zero.
type Airborne struct {
	Active bool

	Y     float64 // height above baseline, wu, >= 0 while active
	PrevY float64 // previous-frame height, for swept collision checks
	VX    float64 // horizontal velocity, wu/s
	VY    float64 // vertical velocity, wu/s

	// Mutator-driven multipliers, preserved across landings.
	GravityMult  float64
	MomentumMult float64

	// Rolling velocity history, newest at (Head-1+len)%len.
	HistVX  [VelocityHistoryLen]float64
	HistVY  [VelocityHistoryLen]float64
	HistLen int
	Head    int
}

// PushHistory records a velocity sample into the rolling history.
func (a *Airborne) PushHistory(vx, vy float64) {
	a.HistVX[a.Head] = vx
	a.HistVY[a.Head] = vy
	a.Head = (a.Head + 1) % VelocityHistoryLen
	if a.HistLen < VelocityHistoryLen {
		a.HistLen++
	}
}

// History returns the recorded velocity samples, oldest first.
func (a *Airborne) History() (vx, vy []float64) {
	vx = make([]float64, 0, a.HistLen)
	vy = make([]float64, 0, a.HistLen)
	start := (a.Head - a.HistLen + VelocityHistoryLen) % VelocityHistoryLen
	for i := 0; i < a.HistLen; i++ {
		j := (start + i) % VelocityHistoryLen
		vx = append(vx, a.HistVX[j])
		vy = append(vy, a.HistVY[j])
	}
	return vx, vy
}

// ClearHistory drops all recorded samples.
func (a *Airborne) ClearHistory() {
	a.HistLen = 0
	a.Head = 0
}

// Ground resets the state to landed: inactive, zero velocity, zero offset.
// PrevY is left holding the pre-landing height for one frame; the integrator
// settles it on the next update. Multipliers are preserved.
func (a *Airborne) Ground() {
	a.Active = false
	a.Y = 0
	a.VX = 0
	a.VY = 0
	a.ClearHistory()
}
