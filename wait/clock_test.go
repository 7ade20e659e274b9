package wait

import (
	"testing"
	"time"
)

func TestSystemClockSinceIsPositiveForPastTime(t *testing.T) {
	clock := SystemClock{}
	past := clock.Now().Add(-10 * time.Millisecond)
	if d := clock.Since(past); d <= 0 {
		t.Fatalf("Since(past) = %s, want > 0", d)
	}
}

func TestSystemClockSinceClampsToZeroForFutureTime(t *testing.T) {
	clock := SystemClock{}
	future := clock.Now().Add(time.Hour)
	if d := clock.Since(future); d != 0 {
		t.Fatalf("Since(future) = %s, want 0", d)
	}
}
