package confirm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_OfferResolvesWait(t *testing.T) {
	b := NewBroker()
	prompt := b.Expect("tok")
	got := make(chan string, 1)
	go func() {
		reply, ok := prompt.Wait(context.Background(), time.Second)
		if ok {
			got <- reply
		}
		close(got)
	}()

	assert.False(t, b.Offer("other", "y"))
	assert.True(t, b.Offer("tok", "y"))
	assert.Equal(t, "y", <-got)
	assert.False(t, b.Pending("tok"))
	assert.False(t, b.Offer("tok", "y"), "prompts resolve once")
}

func TestBroker_Timeout(t *testing.T) {
	b := NewBroker()
	reply, ok := b.Expect("tok").Wait(context.Background(), 10*time.Millisecond)
	assert.False(t, ok)
	assert.Empty(t, reply)
	assert.False(t, b.Pending("tok"))
}

func TestBroker_ContextCancel(t *testing.T) {
	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	prompt := b.Expect("tok")
	done := make(chan bool, 1)
	go func() {
		_, ok := prompt.Wait(ctx, time.Minute)
		done <- ok
	}()
	cancel()
	assert.False(t, <-done)
	assert.False(t, b.Pending("tok"))
}

func TestBroker_LaterExpectSupersedes(t *testing.T) {
	b := NewBroker()
	first := b.Expect("tok")
	second := b.Expect("tok")

	_, ok := first.Wait(context.Background(), time.Minute)
	assert.False(t, ok, "superseded prompt resolves at once")
	assert.True(t, b.Pending("tok"))

	require.True(t, b.Offer("tok", "yes"))
	reply, ok := second.Wait(context.Background(), time.Minute)
	require.True(t, ok)
	assert.Equal(t, "yes", reply)
}

func TestAffirmative(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, Affirmative(s), s)
	}
	for _, s := range []string{"", "n", "no", "yess", "ok"} {
		assert.False(t, Affirmative(s), s)
	}
}

func TestBroker_ExpectIsPendingBeforeWait(t *testing.T) {
	b := NewBroker()
	prompt := b.Expect("tok")
	assert.True(t, b.Pending("tok"))
	assert.True(t, b.Offer("tok", "yes"))

	reply, ok := prompt.Wait(context.Background(), time.Second)
	require.True(t, ok)
	assert.Equal(t, "yes", reply)
}
