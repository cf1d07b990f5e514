package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PutAndDelete(t *testing.T) {
	table := NewTable[int, string]()

	e := table.Lock(1)
	_, ok := e.Value()
	assert.False(t, ok)
	e.Put("game", 0, nil)
	e.Unlock()

	assert.True(t, table.Has(1))
	assert.Equal(t, 1, table.Len())

	e = table.Lock(1)
	v, ok := e.Value()
	require.True(t, ok)
	assert.Equal(t, "game", v)
	e.Delete()
	e.Unlock()

	assert.False(t, table.Has(1))
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.slots)
}

func TestTable_Expiry(t *testing.T) {
	table := NewTable[int, string]()
	expired := make(chan string, 1)

	e := table.Lock(7)
	e.Put("stale", 20*time.Millisecond, func(v string) { expired <- v })
	e.Unlock()

	select {
	case v := <-expired:
		assert.Equal(t, "stale", v)
	case <-time.After(time.Second):
		t.Fatal("expiry callback never ran")
	}
	assert.False(t, table.Has(7))
}

func TestTable_DeleteCancelsExpiry(t *testing.T) {
	table := NewTable[int, string]()
	called := make(chan struct{}, 1)

	e := table.Lock(1)
	e.Put("game", 20*time.Millisecond, func(string) { called <- struct{}{} })
	e.Delete()
	e.Unlock()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, called)
}

func TestTable_TouchPostponesExpiry(t *testing.T) {
	table := NewTable[int, string]()
	expired := make(chan struct{}, 1)

	e := table.Lock(1)
	e.Put("game", 50*time.Millisecond, func(string) { expired <- struct{}{} })
	e.Unlock()

	time.Sleep(30 * time.Millisecond)
	e = table.Lock(1)
	e.Touch(200 * time.Millisecond)
	e.Unlock()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, table.Has(1), "touched game expired on the old deadline")

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback never ran")
	}
}

func TestTable_StaleTimerIgnoresNewGame(t *testing.T) {
	table := NewTable[int, string]()
	called := make(chan string, 2)

	// Hold the key while the first timer fires so its callback queues on the lock
	e := table.Lock(1)
	e.Put("first", time.Millisecond, func(v string) { called <- v })
	time.Sleep(20 * time.Millisecond)
	e.Put("second", 0, nil)
	e.Unlock()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, called)

	e = table.Lock(1)
	v, ok := e.Value()
	e.Unlock()
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestTable_SerializesPerKey(t *testing.T) {
	table := NewTable[int, int]()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := table.Lock(1)
			defer e.Unlock()
			v, _ := e.Value()
			e.Put(v+1, 0, nil)
		}()
	}
	wg.Wait()

	e := table.Lock(1)
	defer e.Unlock()
	v, _ := e.Value()
	assert.Equal(t, 50, v)
}
