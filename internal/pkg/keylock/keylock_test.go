//go:build unit

package keylock_test

import (
	"sync"
	"testing"

	"bookmarket/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesPerKey(t *testing.T) {
	k := keylock.New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("order-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	k := keylock.New()

	unlockA := k.Lock("a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		defer unlockB()
		close(acquired)
	}()

	// Deadlocks here (and trips the test timeout) if "b" waits on "a".
	<-acquired
}

func TestLockIsReusableAfterUnlock(t *testing.T) {
	k := keylock.New()

	unlock := k.Lock("x")
	unlock()

	unlock = k.Lock("x")
	unlock()
}
