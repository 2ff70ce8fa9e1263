package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ n int }
type pong struct{}

func TestDispatchByType(t *testing.T) {
	b := New()
	var got []int
	On(b, func(_ context.Context, p ping) { got = append(got, p.n) })
	On(b, func(_ context.Context, p ping) { got = append(got, p.n*10) })
	var pongs int
	On(b, func(context.Context, pong) { pongs++ })

	Emit(context.Background(), b, ping{n: 2})
	require.Equal(t, []int{2, 20}, got)
	require.Zero(t, pongs)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var a, c int
	handler := func(counter *int) Handler[ping] {
		return func(context.Context, ping) { *counter++ }
	}
	offA := On(b, handler(&a))
	On(b, handler(&c))

	offA()
	offA()
	Emit(context.Background(), b, ping{})
	require.Equal(t, 0, a)
	require.Equal(t, 1, c)
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	b := New()
	var calls int
	var off func()
	off = On(b, func(context.Context, ping) {
		calls++
		off()
	})
	On(b, func(context.Context, ping) { calls++ })

	Emit(context.Background(), b, ping{})
	Emit(context.Background(), b, ping{})
	require.Equal(t, 3, calls)
}

func TestGlobalBus(t *testing.T) {
	t.Cleanup(func() { Use(nil) })

	Use(nil)
	Subscribe(func(context.Context, ping) { t.Fatal("no bus installed") })()
	Publish(context.Background(), ping{})

	Use(New())
	var got ping
	off := Subscribe(func(_ context.Context, p ping) { got = p })
	Publish(context.Background(), ping{n: 7})
	require.Equal(t, ping{n: 7}, got)

	off()
	Publish(context.Background(), ping{n: 8})
	require.Equal(t, ping{n: 7}, got)
}
