package view

import (
	"fmt"
	"lifegrid/src/universe"
	"time"
)

type ConsoleOut struct {
	e         *universe.Engine
	startTime time.Time
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{}
}

func (c *ConsoleOut) Refresh() {
	st := c.e.Status()
	if st.RunningMode == universe.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		fmt.Println("\nFinished:")
		fmt.Printf("  Last iteration: %v\n", st.IterationNum)
		fmt.Printf("  Total time: %v\n", totalTime)
		fmt.Printf("  Live cells: %v\n", st.LiveCells)
		if err, ok := st.Details["error"]; ok {
			fmt.Printf("  Error: %v\n", err)
		}
	} else if st.RunningMode == universe.RunningStateRun {
		if st.IterationNum%10 == 0 {
			fmt.Printf("  Iterations done: %v\n", st.IterationNum)
		}
	}
}

func (c *ConsoleOut) Register(e *universe.Engine) {
	c.e = e
	o := c.e.Options()
	fmt.Println("Running configuration:")
	fmt.Printf("  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Printf("  Edge mode: %v\n", o.EdgeMode)
	fmt.Printf("  Interval: %v\n", o.Interval)
	fmt.Printf("  Max iterations: %v steps\n", o.MaxSteps)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Println("\nSimulation started...")
}
