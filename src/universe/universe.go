package universe

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

//Cell is the state of a single grid position
//Alive is 1 and Dead is 0 so a neighbor sum is plain addition over Cell values
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

//EdgeMode is the policy resolving neighbor lookups that fall outside the grid
type EdgeMode int

const (
	EdgeFixedAlive EdgeMode = iota //out-of-grid neighbors always count as alive
	EdgeFixedDead                  //out-of-grid neighbors always count as dead
	EdgeWrap                       //toroidal topology, lookups wrap to the opposite edge
	EdgeExpand                     //grow/shrink the grid at the borders, not implemented
)

//defaults used by New
const (
	DefUniverseWidth  = 64
	DefUniverseHeight = 64
	DefEdgeMode       = EdgeWrap
)

//ErrUnsupportedEdgeMode is returned by Tick when the universe uses EdgeExpand
//the resize semantics of that mode are undefined, so Tick refuses up front
//instead of producing a wrong generation
var ErrUnsupportedEdgeMode = errors.New("universe: tick with edge mode expand is not implemented")

//ConstructionError reports dimensions rejected by NewUniverse
type ConstructionError struct {
	Width  int
	Height int
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("universe: invalid dimensions %vx%v, width and height must be >= 1", e.Width, e.Height)
}

var edgeModeNames = map[EdgeMode]string{
	EdgeFixedAlive: "fixedAlive",
	EdgeFixedDead:  "fixedDead",
	EdgeWrap:       "wrap",
	EdgeExpand:     "expand",
}

func (m EdgeMode) String() string {
	if name, ok := edgeModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("edgeMode(%d)", int(m))
}

//EdgeModeNames returns the accepted mode names, sorted, for help texts
func EdgeModeNames() []string {
	names := make([]string, 0, len(edgeModeNames))
	for _, name := range edgeModeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//ParseEdgeMode resolves a mode name (as listed by EdgeModeNames) to an EdgeMode
func ParseEdgeMode(s string) (EdgeMode, error) {
	for mode, name := range edgeModeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("universe: unknown edge mode %q", s)
}

//Universe is the simulation state: a fixed-size grid of cells plus the edge policy
//cells is a row-major flat buffer, see getIndex
//a Universe has a single exclusive owner, there is no internal locking
type Universe struct {
	width      int
	height     int
	cells      []Cell
	edgeMode   EdgeMode
	generation int
}

//New creates a Universe with the default geometry and edge mode,
//seeded with the deterministic default pattern
func New() *Universe {
	u, _ := NewUniverse(DefUniverseWidth, DefUniverseHeight, DefEdgeMode)
	return u
}

//NewUniverse creates a width x height Universe with the given edge mode,
//seeded with the deterministic default pattern
func NewUniverse(width int, height int, mode EdgeMode) (*Universe, error) {
	if width < 1 || height < 1 {
		return nil, &ConstructionError{Width: width, Height: height}
	}
	u := &Universe{
		width:    width,
		height:   height,
		cells:    make([]Cell, width*height),
		edgeMode: mode,
	}
	u.SeedDefault()
	return u, nil
}

func (u *Universe) Width() int         { return u.width }
func (u *Universe) Height() int        { return u.height }
func (u *Universe) EdgeMode() EdgeMode { return u.edgeMode }
func (u *Universe) Generation() int    { return u.generation }

//Cells returns the live cell buffer
//read-only for callers, the slice is replaced wholesale by every Tick
func (u *Universe) Cells() []Cell { return u.cells }

//At returns the cell at (row, column), which must be in range
func (u *Universe) At(row int, column int) Cell {
	return u.cells[u.getIndex(row, column)]
}

//Set places a cell state at (row, column), out-of-range coordinates are ignored
func (u *Universe) Set(row int, column int, c Cell) {
	if row < 0 || row >= u.height || column < 0 || column >= u.width {
		return
	}
	u.cells[u.getIndex(row, column)] = c
}

//Toggle inverses the cell at (row, column), out-of-range coordinates are ignored
func (u *Universe) Toggle(row int, column int) {
	if row < 0 || row >= u.height || column < 0 || column >= u.width {
		return
	}
	i := u.getIndex(row, column)
	u.cells[i] ^= Alive
}

//Population returns the number of live cells
func (u *Universe) Population() int {
	count := 0
	for _, c := range u.cells {
		count += int(c)
	}
	return count
}

//Clear kills every cell and resets the generation counter
func (u *Universe) Clear() {
	for i := range u.cells {
		u.cells[i] = Dead
	}
	u.generation = 0
}

//SeedDefault populates the grid with the reproducible default pattern:
//the cell at linear offset i is alive iff i%2 == 0 or i%7 == 0
func (u *Universe) SeedDefault() {
	for i := range u.cells {
		if i%2 == 0 || i%7 == 0 {
			u.cells[i] = Alive
		} else {
			u.cells[i] = Dead
		}
	}
	u.generation = 0
}

//SeedRandom populates the grid from the given source
func (u *Universe) SeedRandom(rnd *rand.Rand) {
	for i := range u.cells {
		u.cells[i] = Cell(rnd.Intn(2))
	}
	u.generation = 0
}

//getIndex maps (row, column) to the offset in the flat buffer
//row-major with the width as the stride: 0 <= row < height, 0 <= column < width
//no bounds checking, callers pass coordinates already wrapped into range
func (u *Universe) getIndex(row int, column int) int {
	return row*u.width + column
}

//liveNeighborCount counts the live cells in the Moore neighborhood of (row, column)
//a lookup whose unwrapped coordinate leaves the grid is an edge access and is
//resolved by the edge mode, everything else reads the buffer directly
func (u *Universe) liveNeighborCount(row int, column int) int {
	count := 0
	for dr := -1; dr < 2; dr++ {
		for dc := -1; dc < 2; dc++ {
			//skip my position
			if dr == 0 && dc == 0 {
				continue
			}
			nr := row + dr
			nc := column + dc
			edge := nr < 0 || nr >= u.height || nc < 0 || nc >= u.width
			nr = (nr + u.height) % u.height
			nc = (nc + u.width) % u.width
			switch u.edgeMode {
			case EdgeFixedAlive:
				if edge {
					count++
					continue
				}
				count += int(u.cells[u.getIndex(nr, nc)])
			case EdgeFixedDead:
				if edge {
					continue
				}
				count += int(u.cells[u.getIndex(nr, nc)])
			case EdgeWrap, EdgeExpand:
				count += int(u.cells[u.getIndex(nr, nc)])
			}
		}
	}
	return count
}

//Tick advances the universe by one generation in place
//the next generation is computed into a fresh buffer so every neighbor read
//during the pass sees the prior generation, then the buffer is swapped in
func (u *Universe) Tick() error {
	if u.edgeMode == EdgeExpand {
		return ErrUnsupportedEdgeMode
	}

	next := make([]Cell, len(u.cells))
	for row := 0; row < u.height; row++ {
		for column := 0; column < u.width; column++ {
			i := u.getIndex(row, column)
			me := u.cells[i]

			// Any live cell with fewer than two live neighbours dies, as if caused by underpopulation.
			// Any live cell with two or three live neighbours lives on to the next generation.
			// Any live cell with more than three live neighbours dies, as if by overpopulation.
			// Any dead cell with exactly three live neighbours becomes a live cell, as if by reproduction.
			switch u.liveNeighborCount(row, column) {
			case 2:
				next[i] = me
			case 3:
				next[i] = Alive
			default:
				next[i] = Dead
			}
		}
	}
	u.cells = next
	u.generation++
	return nil
}

//glyphs used by Render
const (
	aliveGlyph = '◼'
	deadGlyph  = '◻'
)

//Render returns the grid as text: one line per row, one glyph per cell,
//every row terminated by a newline
func (u *Universe) Render() string {
	var b strings.Builder
	b.Grow(u.height * (u.width*3 + 1)) //the glyphs are 3 bytes in utf-8
	for row := 0; row < u.height; row++ {
		for column := 0; column < u.width; column++ {
			if u.cells[u.getIndex(row, column)] == Alive {
				b.WriteRune(aliveGlyph)
			} else {
				b.WriteRune(deadGlyph)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
