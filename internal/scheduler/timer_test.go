package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGocronTimerFiresOnce(t *testing.T) {
	timer := NewGocronTimer()
	defer timer.Stop()

	fired := make(chan struct{}, 2)
	_, err := timer.AfterFunc(0, func() { fired <- struct{}{} })
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("zero-delay job did not run")
	}
}

func TestGocronTimerCancel(t *testing.T) {
	timer := NewGocronTimer()
	defer timer.Stop()

	fired := make(chan struct{}, 1)
	cancel, err := timer.AfterFunc(time.Second, func() { fired <- struct{}{} })
	require.NoError(t, err)
	cancel()

	select {
	case <-fired:
		t.Fatal("cancelled job ran")
	case <-time.After(1500 * time.Millisecond):
	}
}
