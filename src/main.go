package main

import (
	"fmt"
	"lifegrid/src/universe"
	"lifegrid/src/view"
	"strings"
	"time"

	"github.com/integrii/flaggy"
)

var (
	testSample = [][]int{
		{1, 1}, {1, 2},
		{2, 1}, {2, 2},
		{3, 3},
		{4, 2},
		{4, 3},
		{5, 3},
	}
)

//the grid is dumped to the console after a non-interactive run when it fits a terminal
const maxRenderWidth = 80

type EnvOptions struct {
	interactive bool
	randomData  bool
	useSample   bool
	edgeMode    string
}

func main() {
	eo, uo := initOptions()

	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the simulation status
	}

	e, err := universe.NewEngine(uo, stateCh)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	e.AddTemplate(
		universe.Template{
			Name:        "testSample1",
			Descr:       "the test sample with 3 stable patterns",
			Coordinates: testSample,
		})

	//the universe starts with the deterministic default pattern,
	//the flags replace it with random data or the test sample
	//both paths queue the clear and the settle on the command loop together,
	//so the run cannot start between them
	if eo.randomData {
		e.SettleWithRandomData()
	} else if eo.useSample {
		e.SettleWithTemplate("testSample1")
	}

	if eo.interactive {
		v := view.NewViewTerminal()
		e.RegisterViewer(v)
		v.Start()
		e.Close()
	} else {
		fmt.Printf("\"The Life\" game simulation started...\n")

		startTime := time.Now()
		e.Run()
		for {
			st := <-stateCh
			if st.RunningMode == universe.RunningStateFinished {
				totalTime := time.Since(startTime).Round(time.Millisecond)
				fmt.Printf("Finished, iteration is: %v, total running time: %v\n", st.IterationNum, totalTime)
				if errDetail, ok := st.Details["error"]; ok {
					fmt.Printf("Stopped with error: %v\n", errDetail)
				}
				if uo.Width <= maxRenderWidth {
					fmt.Print(e.Render())
				}
				break
			}
			if st.RunningMode == universe.RunningStateStep {
				if st.IterationNum%10 == 0 {
					fmt.Printf("Finished iterations: %v\n", st.IterationNum)
				}
			}
		}
		e.Close()
		close(stateCh)
	}

}

func initOptions() (eo *EnvOptions, uo *universe.Options) {

	uo = &universe.DefaultOptions
	eo = &EnvOptions{edgeMode: uo.EdgeMode.String()}
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.Bool(&eo.useSample, "t", "sample", "Settle with the test sample instead of the default pattern")
	flaggy.String(&eo.edgeMode, "e", "edgeMode", "Edge mode to use ["+strings.Join(universe.EdgeModeNames(), "|")+"]")

	flaggy.Parse()

	mode, err := universe.ParseEdgeMode(eo.edgeMode)
	if err != nil {
		flaggy.ShowHelpAndExit("unknown edge mode")
	}
	uo.EdgeMode = mode

	if !eo.interactive {
		flaggy.ShowHelp("")
	}

	return
}
