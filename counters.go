package main

import (
	"fmt"
	"time"
)

// Counters are the performance counters of one run. Steps counts every
// executed cell, including the final "@"; Start and End are only set when
// metrics collection is enabled.
type Counters struct {
	Steps uint64
	Start time.Time
	End   time.Time
}

// Elapsed returns the wall time between Start and End.
func (c Counters) Elapsed() time.Duration {
	if c.Start.IsZero() || c.End.Before(c.Start) {
		return 0
	}
	return c.End.Sub(c.Start)
}

// PerStep returns the average time spent per step.
func (c Counters) PerStep() time.Duration {
	if c.Steps == 0 {
		return 0
	}
	return c.Elapsed() / time.Duration(c.Steps)
}

// Rate returns steps per second.
func (c Counters) Rate() float64 {
	if el := c.Elapsed(); el > 0 {
		return float64(c.Steps) / el.Seconds()
	}
	return 0
}

// String formats a one line summary like:
//
//	execution took 1.5ms, 3000 steps, 500ns / step, 2.000 Msteps/s
func (c Counters) String() string {
	return fmt.Sprintf("execution took %v, %v steps, %v / step, %.3f Msteps/s",
		c.Elapsed(), c.Steps, c.PerStep(), c.Rate()/1e6)
}

func (c *Counters) begin(metrics bool) {
	if metrics {
		c.Start = time.Now()
		c.End = time.Time{}
	}
}

func (c *Counters) end(metrics bool) {
	if metrics {
		c.End = time.Now()
	}
}
