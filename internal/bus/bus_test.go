package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostedActionsRunInOrder(t *testing.T) {
	d := New()
	go d.Run()
	defer d.Stop()

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		d.Post(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actions never ran")
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestStopCausesRunToReturn(t *testing.T) {
	d := New()
	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	d.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestPostAfterStopIsDropped(t *testing.T) {
	d := New()
	d.Stop()

	ran := false
	d.Post(func() { ran = true })

	d.Run() // returns immediately since stopped and queue is empty
	assert.False(t, ran)
}

func TestPostFromWithinAnActionIsServicedInALaterBatch(t *testing.T) {
	d := New()
	go d.Run()
	defer d.Stop()

	done := make(chan struct{})
	d.Post(func() {
		d.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested Post never ran")
	}
}

func TestConcurrentPostersAreAllServiced(t *testing.T) {
	d := New()
	go d.Run()
	defer d.Stop()

	const n = 50
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		go d.Post(func() { results <- i })
	}

	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		select {
		case v := <-results:
			seen[v] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for all posted actions")
		}
	}
	require.Len(t, seen, n)
}
