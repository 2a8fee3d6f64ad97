package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bh1mart/bh1mart/internal/auth"
)

func TestTimingDelay_FailurePadsToTarget(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 50})

	start := time.Now()
	timing.WaitFrom(start, false)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestTimingDelay_SuccessSkipsDelay(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 200})

	start := time.Now()
	timing.WaitFrom(start, true)

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_SlowWorkNotPaddedFurther(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 20})

	// Pretend the failed login path already took longer than the target.
	start := time.Now().Add(-100 * time.Millisecond)
	before := time.Now()
	timing.WaitFrom(start, false)

	assert.Less(t, time.Since(before), 50*time.Millisecond)
}

func TestTimingDelay_ZeroConfigIsNoop(t *testing.T) {
	timing := auth.NewTimingDelay(auth.TimingConfig{})

	start := time.Now()
	timing.WaitFrom(start, false)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
