package game

import (
	"errors"
	"testing"
)

func TestScheduler_SpawnsOnTimerAndAdvances(t *testing.T) {
	s, err := NewScheduler([]Wave{{Count: 2, Interval: 100}, {Count: 1, Interval: 50}})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	if r := s.Tick(99, 0); r.Spawn {
		t.Fatalf("spawned before the interval elapsed")
	}
	if r := s.Tick(1, 0); !r.Spawn {
		t.Fatalf("expected spawn when the timer reaches zero")
	}
	if r := s.Tick(100, 1); !r.Spawn {
		t.Fatalf("expected second spawn")
	}
	if r := s.Tick(10, 2); r.WaveStarted || r.Spawn {
		t.Fatalf("advanced while enemies are still active: %+v", r)
	}
	r := s.Tick(10, 0)
	if !r.WaveStarted || r.Spawn {
		t.Fatalf("expected wave start without spawn, got %+v", r)
	}
	if s.WaveNumber() != 2 || !s.FinalWave() {
		t.Errorf("wave %d final=%v", s.WaveNumber(), s.FinalWave())
	}
	if r := s.Tick(40, 0); !r.Spawn {
		t.Fatalf("expected spawn in final wave")
	}
	if !s.Exhausted() {
		t.Errorf("expected exhausted schedule")
	}
	if r := s.Tick(1000, 0); r.WaveStarted || r.Spawn {
		t.Errorf("scheduler advanced past the final wave: %+v", r)
	}
	if s.WaveNumber() != 2 {
		t.Errorf("wave %d, want 2", s.WaveNumber())
	}
}

func TestScheduler_OneSpawnPerTick(t *testing.T) {
	s, _ := NewScheduler([]Wave{{Count: 10, Interval: 10}})
	if r := s.Tick(1000, 0); !r.Spawn {
		t.Fatalf("expected spawn")
	}
	if s.Remaining() != 9 {
		t.Errorf("remaining %d, want 9 without catch-up", s.Remaining())
	}
}

func TestScheduler_Empty(t *testing.T) {
	if _, err := NewScheduler(nil); !errors.Is(err, ErrNoWaves) {
		t.Errorf("expected ErrNoWaves, got %v", err)
	}
}

func TestMoneyReward_StepFunction(t *testing.T) {
	cases := []struct {
		towers int
		want   int
	}{
		{0, 10}, {19, 10}, {20, 8}, {29, 8}, {30, 7}, {49, 7}, {50, 5}, {69, 5}, {70, 3}, {500, 3},
	}
	for _, c := range cases {
		if got := MoneyReward(10, c.towers); got != c.want {
			t.Errorf("MoneyReward(10, %d) = %d, want %d", c.towers, got, c.want)
		}
	}
}

func TestScoreReward(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{0, 15}, {499, 15}, {500, 14}, {4999, 6}, {5000, 5}, {100000, 5},
	}
	for _, c := range cases {
		if got := ScoreReward(15, c.score); got != c.want {
			t.Errorf("ScoreReward(15, %d) = %d, want %d", c.score, got, c.want)
		}
	}
}
