package main

type direction uint8

const (
	east direction = iota
	south
	west
	north
)

var directionNames = [...]string{"east", "south", "west", "north"}

func (dir direction) String() string {
	if int(dir) < len(directionNames) {
		return directionNames[dir]
	}
	return "invalid"
}

// ip is the instruction pointer: a position that is always within the grid,
// a direction of travel, and whether string mode is on.
type ip struct {
	x, y       int
	dir        direction
	stringMode bool
}

// advance moves one cell in the current direction, wrapping at the edges.
func (p *ip) advance() {
	switch p.dir {
	case east:
		if p.x++; p.x == gridWidth {
			p.x = 0
		}
	case south:
		if p.y++; p.y == gridHeight {
			p.y = 0
		}
	case west:
		if p.x--; p.x < 0 {
			p.x = gridWidth - 1
		}
	case north:
		if p.y--; p.y < 0 {
			p.y = gridHeight - 1
		}
	}
}
