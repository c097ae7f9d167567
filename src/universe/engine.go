package universe

import (
	"math/rand"
	"sync"
	"time"
)

//Options represents the simulation's configurable options
type Options struct {
	Width           int
	Height          int
	EdgeMode        EdgeMode
	Interval        time.Duration
	MaxSteps        int
	MaxSkippedTicks int
}

//Status represents the status of the simulation at a concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Details       map[string]interface{} //advanced details, e.g. the tick error that finished the run
}

//Viewer is the interface to any viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(e *Engine)
	Start()
}

//Template represents the seeding template which can be used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates
}

//Grid is a point-in-time snapshot of the cell buffer for viewers
type Grid struct {
	Width  int
	Height int
	Cells  []Cell
}

//At returns the cell at (row, column) of the snapshot
func (g Grid) At(row int, column int) Cell {
	return g.Cells[row*g.Width+column]
}

//The simulation running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefMaxSkippedTicks    = 5
)

const (
	RunningStateManual   = 0x0
	RunningStateStep     = 0x1
	RunningStateRun      = 0x2
	RunningStateFinished = 0x3
)

var DefaultOptions = Options{
	Width:           DefUniverseWidth,
	Height:          DefUniverseHeight,
	EdgeMode:        DefEdgeMode,
	Interval:        DefSimulationInterval,
	MaxSteps:        DefMaxSteps,
	MaxSkippedTicks: DefMaxSkippedTicks,
}

//Engine drives a Universe: it owns the command loop which serializes all
//access to the grid, publishes Status updates and notifies registered viewers
type Engine struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	grid struct {
		u *Universe
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan bool
	rnd       *rand.Rand
}

//NewEngine creates the Engine instance and starts its command loop
//the universe is seeded with the deterministic default pattern
func NewEngine(o *Options, stateCh chan Status) (*Engine, error) {
	if o == nil {
		o = &DefaultOptions
	}
	u, err := NewUniverse(o.Width, o.Height, o.EdgeMode)
	if err != nil {
		return nil, err
	}

	e := Engine{
		options:   *o,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		stateCh:   stateCh,
		templates: map[string]Template{},
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.grid.u = u
	e.state.Details = make(map[string]interface{})
	e.state.LiveCells = u.Population()
	e.refreshView()
	go e.mainLoop()
	return &e, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (e *Engine) AddTemplate(tmpl Template) {
	e.templates[tmpl.Name] = tmpl
}

//Settle settles the universe with data
//vc - array of x,y coordinates
func (e *Engine) Settle(vc [][]int) {
	e.grid.Lock()
	e.settle(vc, Alive)
	e.grid.Unlock()
	e.setLiveCells(e.liveCells())
	e.refreshView()
}

//SettleTemplate populates the universe with the seeding template
func (e *Engine) SettleTemplate(name string) {
	tmpl, ok := e.templates[name]
	if !ok {
		return
	}
	e.grid.Lock()
	e.settle(tmpl.Coordinates, Alive)
	e.grid.Unlock()
	e.setLiveCells(e.liveCells())
	e.refreshView()
}

//SettleWithTemplate clears the universe and populates it with the seeding template
//the clear and the settle are queued as consecutive commands, so a settle
//issued right after cannot be wiped by a clear still waiting on the loop
func (e *Engine) SettleWithTemplate(name string) {
	tmpl, ok := e.templates[name]
	if !ok {
		return
	}
	if e.state.RunningMode == RunningStateManual || e.state.RunningMode == RunningStateFinished {
		e.controlCh <- e.clear
		e.controlCh <- func() {
			e.grid.Lock()
			e.settle(tmpl.Coordinates, Alive)
			e.grid.Unlock()
			e.setLiveCells(e.liveCells())
			e.refreshView()
		}
	}
}

//SettleWithRandomData populates the universe with random data
func (e *Engine) SettleWithRandomData() {
	if e.state.RunningMode == RunningStateManual || e.state.RunningMode == RunningStateFinished {
		e.controlCh <- e.clear
		e.controlCh <- func() {
			e.grid.Lock()
			e.grid.u.SeedRandom(e.rnd)
			e.grid.Unlock()
			e.setLiveCells(e.liveCells())
			e.refreshView()
		}
	}
}

//SettleDefault populates the universe with the deterministic default pattern
func (e *Engine) SettleDefault() {
	if e.state.RunningMode == RunningStateManual || e.state.RunningMode == RunningStateFinished {
		e.controlCh <- e.clear
		e.controlCh <- func() {
			e.grid.Lock()
			e.grid.u.SeedDefault()
			e.grid.Unlock()
			e.setLiveCells(e.liveCells())
			e.refreshView()
		}
	}
}

//InverseCell inverses the cell state at point x, y
func (e *Engine) InverseCell(x int, y int) {
	e.grid.Lock()
	e.grid.u.Toggle(y, x)
	e.grid.Unlock()
	e.setLiveCells(e.liveCells())
	e.refreshView()
}

//RegisterViewer registers the viewer - the engine will call the viewer when the state is changed
func (e *Engine) RegisterViewer(v Viewer) {
	e.views = append(e.views, v)
	v.Register(e)
}

//StateCh returns the channel with the simulation's status updates
func (e *Engine) StateCh() chan Status {
	return e.stateCh
}

//Status returns current simulation status represented by Status struct
func (e *Engine) Status() Status {
	return e.state.Status
}

//Options returns current simulation configuration represented by Options struct
func (e *Engine) Options() Options {
	return e.options
}

//Grid returns a snapshot of the universe's cells
func (e *Engine) Grid() Grid {
	e.grid.Lock()
	defer e.grid.Unlock()
	cells := make([]Cell, len(e.grid.u.Cells()))
	copy(cells, e.grid.u.Cells())
	return Grid{Width: e.grid.u.Width(), Height: e.grid.u.Height(), Cells: cells}
}

//Render returns the universe's textual snapshot, one line per row
func (e *Engine) Render() string {
	e.grid.Lock()
	defer e.grid.Unlock()
	return e.grid.u.Render()
}

//Run starts the simulation, returns immediately
func (e *Engine) Run() {
	e.controlCh <- e.run
}

//Stop stops the simulation, returns immediately
//the Status struct will be written to the stateCh on finish
func (e *Engine) Stop() {
	e.controlCh <- e.stop
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (e *Engine) Step() {
	e.controlCh <- e.step
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (e *Engine) Clear() {
	e.controlCh <- e.clear
}

//Close stops the main loop, close the channels, returns immediately
func (e *Engine) Close() {
	e.closeCh <- true
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (e *Engine) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-e.controlCh:
			cmd()
		case c = <-e.closeCh:

		}
	}
	close(e.closeCh)
	close(e.controlCh)
}

//settle places a cell state at each of the x,y coordinates
//callers must hold the grid lock
func (e *Engine) settle(vc [][]int, c Cell) {
	for _, v := range vc {
		e.grid.u.Set(v[1], v[0], c)
	}
}

//liveCells calculates the count of live cells
func (e *Engine) liveCells() int {
	e.grid.Lock()
	defer e.grid.Unlock()
	return e.grid.u.Population()
}

//setLiveCells updates the live cell counter under the state lock
//the Settle family and InverseCell run on the caller's goroutine, so their
//counter writes must not race the command loop mutating the state
func (e *Engine) setLiveCells(n int) {
	e.state.Lock()
	e.state.LiveCells = n
	e.state.Unlock()
}

//switchRunningState switch the state of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (e *Engine) switchRunningState(to RunningState) {
	e.state.Lock()
	e.state.RunningMode = to
	st := e.state.Status
	e.state.Unlock()
	if e.stateCh != nil {
		e.stateCh <- st
	}
}

//run starts the simulation cycle
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (e *Engine) run() {
	go func() {
		e.switchRunningState(RunningStateRun)
		skipped := 0
		done := make(chan bool)
		defer close(done)
		for {
			mode := e.state.RunningMode
			if mode != RunningStateRun && mode != RunningStateStep {
				break
			}
			if skipped > e.options.MaxSkippedTicks {
				e.switchRunningState(RunningStateFinished)
				break
			}
			//skip the tick if the universe is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				e.controlCh <- func() {
					e.step()
					done <- true
				}
				<-done
			} else {
				skipped++
			}
			if e.options.Interval > 0 {
				time.Sleep(e.options.Interval)
			}
		}
	}()
}

//stop stops the simulation running cycle
func (e *Engine) stop() {
	if e.state.RunningMode == RunningStateRun {
		e.switchRunningState(RunningStateManual)
	}
}

//step does the new one state calculation for the entire universe
//a tick failure (the unimplemented expand edge mode) finishes the run and is
//reported through the status details
func (e *Engine) step() {
	finished := false
	rm := e.state.RunningMode
	maxIter := e.options.MaxSteps
	e.state.IterationNum++
	defer func() {
		if finished {
			e.switchRunningState(RunningStateFinished)
		} else {
			e.switchRunningState(rm)
		}
		e.refreshView()
	}()

	if maxIter != 0 && e.state.IterationNum >= maxIter {
		finished = true
		return
	}
	e.switchRunningState(RunningStateStep)
	hasLive, changed, err := e.nextIteration()
	if err != nil {
		e.state.Details["error"] = err.Error()
		finished = true
		return
	}
	if !hasLive || !changed {
		finished = true
	}
}

//clear clears the universe data, reset all counters
func (e *Engine) clear() {
	e.state.Lock()
	e.grid.Lock()

	e.state.IterationNum = 0
	e.state.LiveCells = 0
	delete(e.state.Details, "error")
	e.grid.u.Clear()
	e.state.RunningMode = RunningStateManual
	e.grid.Unlock()
	e.state.Unlock()
	e.switchRunningState(RunningStateManual)
	e.refreshView()
}

//nextIteration does one simulation cycle
//the universe ticks into a fresh buffer, so the buffer held before the tick is
//the prior generation and the changed flag is a plain comparison of the two
func (e *Engine) nextIteration() (hasLiveEntities bool, changed bool, err error) {
	e.grid.Lock()
	defer e.grid.Unlock()
	start := time.Now()
	prev := e.grid.u.Cells()
	if err = e.grid.u.Tick(); err != nil {
		return false, false, err
	}
	cur := e.grid.u.Cells()
	for i := range cur {
		if cur[i] != prev[i] {
			changed = true
			break
		}
	}
	liveCells := e.grid.u.Population()
	e.state.Lock()
	e.state.LiveCells = liveCells
	e.state.IterationTime = time.Since(start)
	e.state.Unlock()
	hasLiveEntities = liveCells > 0
	return
}

//refreshView calls Refresh event for all registered views
func (e *Engine) refreshView() {
	for _, v := range e.views {
		v.Refresh()
	}
}
