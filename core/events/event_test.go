package events

import "testing"

type testEvent string

func (e testEvent) EventType() string { return string(e) }

func TestBufferFlushPreservesOrder(t *testing.T) {
	buf := NewBuffer()
	buf.Emit(testEvent("a"))
	buf.Emit(testEvent("b"))
	buf.Emit(nil)

	var got []string
	buf.Flush(Func(func(evt Event) { got = append(got, evt.EventType()) }))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected flush order: %v", got)
	}
	if len(buf.Events()) != 0 {
		t.Fatalf("flush must clear the buffer")
	}
}

func TestBufferResetDropsEvents(t *testing.T) {
	buf := NewBuffer()
	buf.Emit(testEvent("a"))
	buf.Reset()
	called := false
	buf.Flush(Func(func(Event) { called = true }))
	if called {
		t.Fatalf("reset buffer must not emit")
	}
}

func TestMultiFansOut(t *testing.T) {
	var first, second int
	m := Multi{
		Func(func(Event) { first++ }),
		nil,
		Func(func(Event) { second++ }),
	}
	m.Emit(testEvent("x"))
	if first != 1 || second != 1 {
		t.Fatalf("expected both emitters to fire, got %d %d", first, second)
	}
}
