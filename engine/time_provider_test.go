package engine

import (
	"testing"
	"time"
)

func TestTimeProvider(t *testing.T) {
	provider := NewTimeProvider()

	t1 := provider.Now()
	time.Sleep(5 * time.Millisecond)
	t2 := provider.Now()

	if !t2.After(t1) {
		t.Errorf("Expected t2 after t1, got t1=%v, t2=%v", t1, t2)
	}
}

func TestMockTimeProvider(t *testing.T) {
	startTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(startTime)

	if !mock.Now().Equal(startTime) {
		t.Errorf("Expected initial time %v, got %v", startTime, mock.Now())
	}

	newTime := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.SetTime(newTime)
	mock.Advance(time.Hour)
	mock.Advance(15 * time.Minute)

	expected := newTime.Add(time.Hour + 15*time.Minute)
	if !mock.Now().Equal(expected) {
		t.Errorf("Expected %v after advances, got %v", expected, mock.Now())
	}
}

func TestPausableClock_ExcludesPausedTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)
	clock := NewPausableClock(mock)

	mock.Advance(100 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 100*time.Millisecond {
		t.Fatalf("Expected 100ms elapsed, got %v", got)
	}

	if !clock.Pause() {
		t.Fatal("Expected first Pause to transition")
	}
	if clock.Pause() {
		t.Error("Expected second Pause to be a no-op")
	}

	mock.Advance(time.Second)
	if got := clock.Now().Sub(start); got != 100*time.Millisecond {
		t.Errorf("Expected frozen time at 100ms, got %v", got)
	}
	if got := clock.TotalPauseDuration(); got != time.Second {
		t.Errorf("Expected 1s ongoing pause, got %v", got)
	}

	if !clock.Resume() {
		t.Fatal("Expected Resume to transition")
	}
	mock.Advance(50 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 150*time.Millisecond {
		t.Errorf("Expected 150ms elapsed after resume, got %v", got)
	}
	if clock.IsPaused() || clock.Resume() {
		t.Error("Expected clock running and second Resume a no-op")
	}
}
