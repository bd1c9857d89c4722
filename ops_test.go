package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_arithmetic(t *testing.T) {
	vmTestCases{
		vmTest("digits").withSource("0123456789@").
			expectStack(0, 1, 2, 3, 4, 5, 6, 7, 8, 9).
			expectHalted(true).
			expectPosition(10, 0).
			expectSteps(11),
		vmTest("add").withSource("23+@").expectStack(5),
		vmTest("sub").withSource("52-@").expectStack(3),
		vmTest("sub negative").withSource("25-@").expectStack(-3),
		vmTest("mul").withSource("23*@").expectStack(6),
		vmTest("div").withSource("72/@").expectStack(3),
		vmTest("div truncates toward zero").withSource("09-2/@").expectStack(-4),
		vmTest("mod").withSource("72%@").expectStack(1),
		vmTest("mod sign follows dividend").withSource("07-3%@").expectStack(-1),
		vmTest("div by zero").withSource("50/@").expectStack(0),
		vmTest("mod by zero").withSource("50%@").expectStack(0),
		vmTest("not zero").withSource("0!@").expectStack(1),
		vmTest("not nonzero").withSource("5!@").expectStack(0),
		vmTest("greater").withSource("53`@").expectStack(1),
		vmTest("not greater").withSource("35`@").expectStack(0),
		vmTest("equal is not greater").withSource("55`@").expectStack(0),
		vmTest("add wraps").
			withStack(math.MaxInt32).
			withSource("1+@").
			expectStack(math.MinInt32),
		vmTest("mul wraps").
			withStack(1<<30).
			withSource("4*@").
			expectStack(0),
		vmTest("div overflow").
			withStack(math.MinInt32, -1).
			withSource("/@").
			expectStack(math.MinInt32),
		vmTest("underflow add").withSource("+@").expectStack(0),
		vmTest("underflow sub").withSource("3-@").expectStack(-3),
	}.run(t)
}

func TestVM_stack(t *testing.T) {
	vmTestCases{
		vmTest("dup").withStack(1, 2).withSource(":@").expectStack(1, 2, 2),
		vmTest("dup empty").withSource(":@").expectStack(0, 0),
		vmTest("swap").withStack(1, 2).withSource(`\@`).expectStack(2, 1),
		vmTest("swap one").withStack(7).withSource(`\@`).expectStack(7, 0),
		vmTest("swap empty").withSource(`\@`).expectStack(0, 0),
		vmTest("drop").withStack(1, 2).withSource("$@").expectStack(1),
		vmTest("drop empty").withSource("$@").expectStack(),
		vmTest("space is a nop").
			withStack(1, 2).
			withSource(" @").
			withSteps(1).
			expectStack(1, 2).
			expectPosition(1, 0).
			expectCell(0, 0, ' ').
			expectHalted(false),
		vmTest("unknown bytes are nops").
			withSource("1xyz\x01\xff2@").
			expectStack(1, 2),
	}.run(t)
}

func TestVM_flow(t *testing.T) {
	vmTestCases{
		vmTest("south then east").
			withSource("v", ">1@").
			expectStack(1).
			expectPosition(2, 1).
			expectDirection(east).
			expectSteps(4),
		vmTest("west wraps").
			withSource("<@1").
			expectStack(1).
			expectPosition(1, 0).
			expectDirection(west).
			expectSteps(80),
		vmTest("north wraps").
			withSource("^", "@", "1").
			expectStack(1).
			expectPosition(0, 1).
			expectDirection(north).
			expectSteps(25),
		vmTest("east wraps").
			withSource(strings.Repeat(" ", 79)+"1", "@").
			withSteps(80).
			expectStack(1).
			expectPosition(0, 0).
			expectHalted(false),
		vmTest("bridge then branch west").
			withSource("1#@_2@").
			expectStack().
			expectPosition(2, 0).
			expectDirection(west).
			expectSteps(4),
		vmTest("bridge then branch east").
			withSource("0#@_2@").
			expectStack(2).
			expectPosition(5, 0).
			expectSteps(5),
		vmTest("branch north").
			withSource("1|", " @", " 2").
			expectStack(2).
			expectPosition(1, 1).
			expectSteps(26),
		vmTest("branch south").
			withSource("0|", " @").
			expectStack().
			expectPosition(1, 1).
			expectSteps(3),
		vmTest("bridge wraps").
			withSource(strings.Repeat(" ", 79)+"#", "@").
			withSteps(80).
			expectPosition(1, 0),
		vmTest("halt stays put").
			withSource("@1").
			withSteps(5).
			expectHalted(true).
			expectPosition(0, 0).
			expectSteps(1).
			expectStack(),
	}.run(t)
}

func TestVM_stringMode(t *testing.T) {
	vmTestCases{
		vmTest("pushes characters").
			withSource(`"abc"@`).
			expectStack('a', 'b', 'c').
			expectStringMode(false).
			expectPosition(5, 0),
		vmTest("commands are data").
			withSource(`"@1+"@`).
			expectStack('@', '1', '+').
			expectHalted(true).
			expectPosition(5, 0),
		vmTest("spaces are data").
			withSource(`"a b"@`).
			expectStack('a', ' ', 'b'),
		vmTest("high bytes push unsigned").
			withSource("\"\xc8\"@").
			expectStack(200),
		vmTest("mode persists between steps").
			withSource(`"abc"@`).
			withSteps(2).
			expectStringMode(true).
			expectStack('a').
			expectPosition(2, 0),
	}.run(t)
}

func TestVM_output(t *testing.T) {
	vmTestCases{
		vmTest("hello world").
			withSource(`"!dlrow ,olleH">:#,_@`).
			expectOutput("Hello, world!").
			withTestOutput().
			expectStack(0).
			expectPosition(20, 0),
		vmTest("int").withSource("12+.@").expectOutput("3 "),
		vmTest("negative int").withSource("05-.@").expectOutput("-5 "),
		vmTest("int underflow").withSource(".@").expectOutput("0 "),
		vmTest("bytes").withSource(`"ih",,@`).expectOutput("hi"),
		vmTest("byte truncates").
			withStack(256+'A').
			withSource(",@").
			expectOutput("A"),
	}.run(t)
}

func TestVM_input(t *testing.T) {
	vmTestCases{
		vmTest("sum two ints").
			withSource("&&+.@").
			withInput("2 3").
			expectOutput("5 "),
		vmTest("sum two ints without halt").
			withSource("&&+.").
			withInput("2 3").
			withStepLimit(4).
			expectOutput("5 ").
			expectStatus(ExitStepLimit).
			expectHalted(false),
		vmTest("int at eof").
			withSource("&.@").
			expectOutput("-1 "),
		vmTest("int without digits").
			withSource("&.@").
			withInput("abc").
			expectOutput("-1 "),
		vmTest("int skips junk").
			withSource("&.&.@").
			withInput("x12 -7z").
			expectOutput("12 -7 "),
		vmTest("lone minus is skipped").
			withSource("&.@").
			withInput("- 5").
			expectOutput("5 "),
		vmTest("int leaves terminator").
			withSource("&~,@").
			withInput("12x").
			expectOutput("x").
			expectStack(12),
		vmTest("int consumes one space").
			withSource("&~,@").
			withInput("12 x").
			expectOutput("x").
			expectStack(12),
		vmTest("int wraps").
			withSource("&.@").
			withInput("2147483648").
			expectOutput("-2147483648 "),
		vmTest("bytes then eof").
			withSource("~.~.~.@").
			withInput("ab").
			expectOutput("97 98 -1 "),
	}.run(t)
}

func TestVM_grid(t *testing.T) {
	vmTestCases{
		vmTest("self modification").
			withSource(`"@"70p 9`).
			expectHalted(true).
			expectPosition(7, 0).
			expectCell(7, 0, '@').
			expectStack().
			expectSteps(8),
		vmTest("get").withSource("10g@").expectStack('0'),
		vmTest("get wraps negative").withSource("01-0g@").expectStack(' '),
		vmTest("get wraps far").
			withStack(1, 3*gridHeight).
			withSource("g@").
			expectStack('@'),
		vmTest("get is signed").
			withStack(-56).
			withSource("90p90g@").
			expectStack(-56).
			expectCell(9, 0, 200),
		vmTest("put wraps").
			withStack('@', 85, 25).
			withSource("p    1").
			expectHalted(true).
			expectPosition(5, 0).
			expectStack(),
		vmTest("put wraps negative").
			withStack('@', -75, -25).
			withSource("p    1").
			expectHalted(true).
			expectPosition(5, 0),
		vmTest("put behind the ip").
			withSource(`"."00p@`).
			expectCell(0, 0, '.').
			expectStack(),
	}.run(t)
}

func TestVM_limits(t *testing.T) {
	truncated := []string{"v" + strings.Repeat("x", 100), "1", "."}
	for len(truncated) < gridHeight+5 {
		if len(truncated) < gridHeight {
			truncated = append(truncated, "")
		} else {
			truncated = append(truncated, "@")
		}
	}

	vmTestCases{
		vmTest("step limit").
			withSource(">").
			withStepLimit(100).
			expectStatus(ExitStepLimit).
			expectSteps(100).
			expectHalted(false),
		vmTest("step limit not reached").
			withSource("12@").
			withStepLimit(100).
			expectStatus(ExitHalted).
			expectSteps(3),
		vmTest("timeout").
			withSource(">").
			withTimeout(10 * time.Millisecond).
			expectError(context.DeadlineExceeded),
		vmTest("truncated source").
			withSource(truncated...).
			withStepLimit(60).
			expectOutput("1 1 1 ").
			expectCell(79, 0, 'x').
			expectStatus(ExitStepLimit),
	}.run(t)
}

func TestVM_Step(t *testing.T) {
	vm := New(Load([]byte("123@")))
	defer vm.Close()

	halted, err := vm.Step(2)
	require.NoError(t, err)
	assert.False(t, halted)
	assert.Equal(t, []int32{1, 2}, vm.Stack())
	x, y := vm.Position()
	assert.Equal(t, [2]int{2, 0}, [2]int{x, y})

	halted, err = vm.Step(10)
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, uint64(4), vm.Counters().Steps)

	halted, err = vm.Step(10)
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, uint64(4), vm.Counters().Steps, "expected no steps after halt")

	status, err := vm.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExitHalted, status)
}

func TestVM_StepLimit(t *testing.T) {
	vm := New(Load([]byte(">")), WithStepLimit(10))
	for i := 0; i < 3; i++ {
		halted, err := vm.Step(4)
		require.NoError(t, err)
		assert.False(t, halted)
	}
	assert.Equal(t, uint64(10), vm.Counters().Steps)
}

func TestVM_random(t *testing.T) {
	dirs := func(seed uint64) []direction {
		vm := New(nil, WithSeed(seed))
		var res []direction
		for i := 0; i < 200; i++ {
			vm.goAway()
			res = append(res, vm.ip.dir)
		}
		return res
	}

	a := dirs(7)
	assert.Equal(t, a, dirs(7), "expected the same seed to choose the same directions")

	seen := make(map[direction]int)
	for _, dir := range a {
		seen[dir]++
	}
	for _, dir := range []direction{east, south, west, north} {
		assert.NotZero(t, seen[dir], "expected %v to be chosen", dir)
	}
}

var errBoom = errors.New("boom")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errBoom }

func TestVM_errors(t *testing.T) {
	vm := New(Load([]byte("1.~@")), WithOutput(failWriter{}))
	_, err := vm.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom), "expected write error, got %v", err)
	assert.Equal(t, "error at (2,0): boom", err.Error())
}

func TestVM_trace(t *testing.T) {
	var trace []string
	vm := New(Load([]byte("1@")), WithLogf(func(mess string, args ...interface{}) {
		trace = append(trace, strings.TrimSpace(fmt.Sprintf(mess, args...)))
	}))
	_, err := vm.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"> @0,0 east '1' -- s:[]",
		"> @1,0 east '@' -- s:[1]",
	}, trace)
}

func TestVM_dump(t *testing.T) {
	vmTestCases{
		vmTest("halted").
			withSource("12@").
			expectDump(lines(
				"# VM Dump",
				"  ip: @2,0 east halted",
				"  steps: 3",
				"  stack: [1 2]",
				"# Grid",
				"       v",
				">  0 12@",
				"  ... 24 blank rows",
			)),
		vmTest("string mode").
			withSource(`"a`, "", "", `@`).
			withSteps(2).
			expectDump(lines(
				"# VM Dump",
				"  ip: @2,0 east string",
				"  steps: 2",
				"  stack: [97]",
				"# Grid",
				"       v",
				`>  0 "a`,
				"  ... 2 blank rows",
				"   3 @",
				"  ... 21 blank rows",
			)),
	}.run(t)
}

func TestStandard(t *testing.T) {
	assert.Equal(t, Befunge93, New(nil).Standard())
	assert.Equal(t, Befunge98, New(nil, RunConfig{Standard: Befunge98}).Standard())
	assert.Equal(t, Befunge98, New(nil, WithStandard(Befunge98)).Standard())

	var std Standard
	require.NoError(t, std.UnmarshalText([]byte("98")))
	assert.Equal(t, Befunge98, std)
	assert.Equal(t, "98", std.String())
	assert.EqualError(t, std.Set("97"), `invalid standard "97", expected 93 or 98`)
	assert.EqualError(t, std.Set("x"), `invalid standard "x", expected 93 or 98`)
	assert.Equal(t, Befunge98, std, "expected failed Set to leave the value alone")
}
