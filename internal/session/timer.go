package session

// Countdown is a tick-driven timer with one-second granularity. It can
// be suspended without losing its remaining time.
type Countdown struct {
	budget    int
	remaining int
	running   bool
}

// Start (re)arms the countdown with a fresh budget.
func (c *Countdown) Start(seconds int) {
	c.budget = seconds
	c.remaining = seconds
	c.running = seconds > 0
}

// Suspend pauses the countdown.
func (c *Countdown) Suspend() { c.running = false }

// Resume continues a suspended countdown.
func (c *Countdown) Resume() { c.running = c.remaining > 0 }

// Stop cancels the countdown.
func (c *Countdown) Stop() {
	c.running = false
	c.remaining = 0
}

// Tick consumes one second and reports whether the countdown just expired.
func (c *Countdown) Tick() bool {
	if !c.running {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		return true
	}
	return false
}

func (c *Countdown) Remaining() int { return c.remaining }
func (c *Countdown) Budget() int    { return c.budget }
func (c *Countdown) Running() bool  { return c.running }
