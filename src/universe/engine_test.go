package universe

import (
	"testing"
	"time"
)

var testTemplate = Template{"ts1", "", [][]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}, {4, 2}, {4, 3}, {5, 3}}}

func newStateCh() chan Status {
	return make(chan Status, 10)
}

func newEngineOptions(mode EdgeMode) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.EdgeMode = mode
	return &o
}

//waitState drains the status channel until the wanted running state appears
func waitState(t *testing.T, stateCh chan Status, want RunningState) Status {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == want {
				return st
			}
		case <-deadline:
			t.Fatalf("no status with running state %v", want)
		}
	}
}

func TestEngineStepBlinker(t *testing.T) {
	o := newEngineOptions(EdgeWrap)
	o.Width = 5
	o.Height = 5
	stateCh := newStateCh()
	e, err := NewEngine(o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Clear()
	waitState(t, stateCh, RunningStateManual)
	e.Settle([][]int{{1, 2}, {2, 2}, {3, 2}}) //horizontal blinker, [x,y] pairs

	e.Step()
	st := waitState(t, stateCh, RunningStateManual)
	if st.IterationNum != 1 {
		t.Fatalf("iteration = %v, want 1", st.IterationNum)
	}
	if st.LiveCells != 3 {
		t.Fatalf("live cells = %v, want 3", st.LiveCells)
	}
	g := e.Grid()
	for _, rc := range [][]int{{1, 2}, {2, 2}, {3, 2}} {
		if g.At(rc[0], rc[1]) != Alive {
			t.Fatalf("cell (%v, %v) not alive in vertical phase", rc[0], rc[1])
		}
	}
}

//the clear queued by SettleWithTemplate must execute before the settle,
//never after it: seeding a blinker this way and stepping once has to leave
//the three oscillating cells, not an empty grid
func TestEngineSettleWithTemplateSurvivesClear(t *testing.T) {
	o := newEngineOptions(EdgeWrap)
	o.Width = 5
	o.Height = 5
	stateCh := newStateCh()
	e, err := NewEngine(o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.AddTemplate(Template{"blinker", "", [][]int{{1, 2}, {2, 2}, {3, 2}}})
	e.SettleWithTemplate("blinker")
	waitState(t, stateCh, RunningStateManual) //the queued clear reporting

	e.Step()
	st := waitState(t, stateCh, RunningStateManual)
	if st.LiveCells != 3 {
		t.Fatalf("live cells after settle and step = %v, want the blinker's 3", st.LiveCells)
	}
	g := e.Grid()
	for _, rc := range [][]int{{1, 2}, {2, 2}, {3, 2}} {
		if g.At(rc[0], rc[1]) != Alive {
			t.Fatalf("cell (%v, %v) not alive, the settle was wiped", rc[0], rc[1])
		}
	}
}

func TestEngineSettleWithUnknownTemplate(t *testing.T) {
	stateCh := newStateCh()
	e, err := NewEngine(newEngineOptions(EdgeWrap), stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	before := e.Status().LiveCells
	e.SettleWithTemplate("no-such-template") //must queue nothing
	e.Step()
	waitState(t, stateCh, RunningStateManual)
	if e.Status().IterationNum != 1 {
		t.Fatal("the step did not run")
	}
	if before == 0 {
		t.Fatal("default pattern missing before the step")
	}
}

//exercises the caller-goroutine settle path against the command loop,
//meaningful under the race detector
func TestEngineConcurrentSettleAndClear(t *testing.T) {
	stateCh := newStateCh()
	e, err := NewEngine(newEngineOptions(EdgeWrap), stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	done := make(chan bool)
	go func() {
		for i := 0; i < 100; i++ {
			e.Settle([][]int{{i % 5, i % 7}})
			e.InverseCell(i%3, i%3)
		}
		done <- true
	}()
	for i := 0; i < 10; i++ {
		e.Clear()
		waitState(t, stateCh, RunningStateManual)
	}
	<-done
}

func TestEngineRunFinishesOnStillLife(t *testing.T) {
	o := newEngineOptions(EdgeWrap)
	o.Width = 6
	o.Height = 6
	stateCh := newStateCh()
	e, err := NewEngine(o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Clear()
	waitState(t, stateCh, RunningStateManual)
	e.Settle([][]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}}) //2x2 block

	e.Run()
	st := waitState(t, stateCh, RunningStateFinished)
	if st.LiveCells != 4 {
		t.Fatalf("live cells = %v, want the unchanged block", st.LiveCells)
	}
	if _, failed := st.Details["error"]; failed {
		t.Fatalf("unexpected error detail: %v", st.Details["error"])
	}
}

func TestEngineExpandFailsFast(t *testing.T) {
	o := newEngineOptions(EdgeExpand)
	o.Width = 8
	o.Height = 8
	stateCh := newStateCh()
	e, err := NewEngine(o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	before := e.Grid()

	e.Step()
	st := waitState(t, stateCh, RunningStateFinished)
	if st.Details["error"] != ErrUnsupportedEdgeMode.Error() {
		t.Fatalf("error detail = %v, want the unsupported edge mode error", st.Details["error"])
	}
	after := e.Grid()
	for i := range after.Cells {
		if after.Cells[i] != before.Cells[i] {
			t.Fatal("cells modified by the failed tick")
		}
	}
}

func TestNewEngineRejectsBadDimensions(t *testing.T) {
	o := newEngineOptions(EdgeWrap)
	o.Width = 0
	if _, err := NewEngine(o, nil); err == nil {
		t.Fatal("zero width accepted")
	}
}

func engineStep(e *Engine, b *testing.B) {
	e.AddTemplate(testTemplate)
	stateCh := e.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e.Clear()
		<-stateCh //wait for finish
		e.SettleTemplate("ts1")
		b.StartTimer()
		e.Step()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateManual {
				break
			}
		}
	}
	e.Close()
	close(stateCh)
}

func engineRun(e *Engine, b *testing.B) {
	e.AddTemplate(testTemplate)
	stateCh := e.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e.Clear()
		<-stateCh //wait for finish
		e.SettleTemplate("ts1")
		b.StartTimer()
		e.Run()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	e.Close()
	close(stateCh)
}

func newBenchOptions(mode EdgeMode) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.Width = 200
	o.Height = 200
	o.EdgeMode = mode
	return &o
}

var benchModes = []EdgeMode{EdgeWrap, EdgeFixedDead, EdgeFixedAlive}

func Benchmark_Step(b *testing.B) {
	for _, m := range benchModes {
		b.Run(m.String(), func(b *testing.B) {
			e, err := NewEngine(newBenchOptions(m), newStateCh())
			if err != nil {
				b.Fatal(err)
			}
			engineStep(e, b)
		})
	}
}

func Benchmark_Run(b *testing.B) {
	for _, m := range benchModes {
		b.Run(m.String(), func(b *testing.B) {
			e, err := NewEngine(newBenchOptions(m), newStateCh())
			if err != nil {
				b.Fatal(err)
			}
			engineRun(e, b)
		})
	}
}
