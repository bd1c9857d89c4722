/* Package main: gofunge -- a fast Befunge-93 engine

Befunge is a stack language whose program is a two dimensional grid of
single byte commands, 80 columns wide and 25 rows tall. An instruction
pointer starts at the top left corner moving east, executing each cell it
passes over. Moving off any edge re-enters the grid at the opposite edge, so
the program space is a torus.

The grid is also the program's only random access memory: the "g" command
reads any cell, and the "p" command writes one. Since the instruction
pointer executes whatever a cell holds when it gets there, programs
routinely rewrite their own code as they run.

Everything else happens on a stack of 32-bit integers. Popping an empty
stack yields 0, arithmetic wraps on overflow, and dividing by zero yields 0.
None of these are errors: the only way a program ends is by reaching an "@"
command (or by exceeding a configured step limit).

Commands

	0-9    push the digit's value
	+ - *  pop b, pop a, push a+b, a-b, a*b
	/ %    pop b, pop a, push a/b (truncated), a%b; 0 if b is 0
	!      pop a, push 1 if a is 0, else 0
	`      pop b, pop a, push 1 if a > b, else 0
	> < ^ v  move east, west, north, south
	?      move in a random direction
	_      pop a, move east if a is 0, else west
	|      pop a, move south if a is 0, else north
	"      toggle string mode: push each cell's byte until the next "
	:      duplicate the top value
	\      swap the top two values
	$      pop and discard
	.      pop and write as a decimal number followed by a space
	,      pop and write as a byte
	#      bridge: skip the next cell
	p      pop y, pop x, pop v; write byte v to cell (x, y)
	g      pop y, pop x; push the byte at cell (x, y)
	&      read a decimal integer from input; -1 at end of input
	~      read one byte from input; -1 at end of input
	@      halt

All other bytes, including space, do nothing.

The same binary that interprets programs can also emit them: given -o, it
copies itself with the loaded program attached, producing a standalone
executable that runs that program without reading any source file.

*/
package main
