package proto

import (
	"testing"
	"time"

	"linecached/cache"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

func newTestDispatcher() (*Dispatcher, *fakeClock) {
	clk := &fakeClock{t: int64(time.Hour)}
	return NewDispatcher(cache.NewPool(cache.Options{Clock: clk})), clk
}

// run sends a sequence of lines and compares replies one by one.
func run(t *testing.T, d *Dispatcher, script [][2]string) {
	t.Helper()
	for i, step := range script {
		got, _ := d.HandleLine(step[0])
		if got != step[1] {
			t.Fatalf("step %d %q: got %q, want %q", i, step[0], got, step[1])
		}
	}
}

func TestDispatch_SetGet(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"set foo s|hello", "OK"},
		{"get foo", "hello"},
		{"get nope", "MISS"},
	})
}

func TestDispatch_AddExists(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"add x i|10", "OK"},
		{"add x i|20", "EXISTS"},
		{"get x", "10"},
	})
}

func TestDispatch_Counter(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"set counter i|0", "OK"},
		{"increment counter", "1"},
		{"increment counter", "2"},
		{"increment counter", "3"},
		{"increment counter", "4"},
		{"decrement counter", "3"},
		{"increment missing", "MISS"},
	})
}

func TestDispatch_TTLExpiry(t *testing.T) {
	t.Parallel()

	d, clk := newTestDispatcher()
	run(t, d, [][2]string{{"set t s|bye 1", "OK"}})
	clk.add(500 * time.Millisecond)
	run(t, d, [][2]string{{"get t", "bye"}})
	clk.add(500 * time.Millisecond)
	run(t, d, [][2]string{{"get t", "MISS"}})
}

func TestDispatch_FlushStatus(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"set a i|1", "OK"},
		{"set b i|2", "OK"},
		{"set c i|3", "OK"},
		{"status", "items=3; oldest=a; newest=c; lru=a"},
		{"flush", "3"},
		{"status", "items=0; oldest=-; newest=-; lru=-"},
	})
}

func TestDispatch_HasDelete(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"set k b|true", "OK"},
		{"has k", "true"},
		{"get k", "true"},
		{"delete k", "OK"},
		{"delete k", "MISS"},
		{"has k", "false"},
	})
}

func TestDispatch_Replace(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"replace k s|v", "MISS"},
		{"set k s|v", "OK"},
		{"replace k s|w", "OK"},
		{"get k", "w"},
	})
}

func TestDispatch_Errors(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	run(t, d, [][2]string{
		{"bogus", "Invalid command"},
		{"", "Invalid command"},
		{"get", "Invalid arguments"},
		{"set k", "Invalid arguments"},
		{"flush please", "Invalid arguments"},
	})
}

func TestDispatch_Close(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	reply, closing := d.HandleLine("close")
	if reply != "Closing connection" || !closing {
		t.Fatalf("close: got %q closing=%v", reply, closing)
	}
	reply, closing = d.HandleLine("CLOSE ")
	if reply != "Closing connection" || !closing {
		t.Fatalf("CLOSE with trailing space: got %q closing=%v", reply, closing)
	}
	if _, closing := d.HandleLine("get k"); closing {
		t.Fatal("ordinary commands must not close")
	}
}
