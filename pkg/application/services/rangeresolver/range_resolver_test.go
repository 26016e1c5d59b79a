package rangeresolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

type stubRangeRepo struct {
	rng   *entities.SimulationRange
	err   error
	calls atomic.Int32
}

func (s *stubRangeRepo) GetSimulationRange(ctx context.Context) (*entities.SimulationRange, error) {
	s.calls.Add(1)
	return s.rng, s.err
}

func intPtr(v int) *int { return &v }

func TestRangeResolver_Resolve(t *testing.T) {
	testCases := []struct {
		name          string
		rng           *entities.SimulationRange
		err           error
		expectedStart int
		expectedEnd   int
		expectedDay   int
		fallback      bool
	}{
		{
			name:          "min day only",
			rng:           &entities.SimulationRange{MaxDay: 30, MinDay: intPtr(1)},
			expectedStart: 1, expectedEnd: 30, expectedDay: 30,
		},
		{
			name:          "lookback wins over min day",
			rng:           &entities.SimulationRange{MaxDay: 60, MinDay: intPtr(1), LookbackMin: intPtr(31)},
			expectedStart: 31, expectedEnd: 60, expectedDay: 60,
		},
		{
			name:          "no lower bound",
			rng:           &entities.SimulationRange{MaxDay: 12},
			expectedStart: 1, expectedEnd: 12, expectedDay: 12,
		},
		{
			name:          "backend unreachable",
			err:           errors.New("connection refused"),
			expectedStart: 1, expectedEnd: 30, expectedDay: 30, fallback: true,
		},
		{
			name:          "malformed max day",
			rng:           &entities.SimulationRange{MaxDay: 0},
			expectedStart: 1, expectedEnd: 30, expectedDay: 30, fallback: true,
		},
		{
			name:          "empty response",
			expectedStart: 1, expectedEnd: 30, expectedDay: 30, fallback: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewRangeResolver(&stubRangeRepo{rng: tc.rng, err: tc.err}, nil)
			res := resolver.Resolve(context.Background())

			if res.Window.Start != tc.expectedStart || res.Window.End != tc.expectedEnd {
				t.Errorf("Expected window [%d, %d], got %s", tc.expectedStart, tc.expectedEnd, res.Window)
			}
			if res.SimulationDay != tc.expectedDay {
				t.Errorf("Expected simulation day %d, got %d", tc.expectedDay, res.SimulationDay)
			}
			if res.Fallback != tc.fallback {
				t.Errorf("Expected fallback %v, got %v", tc.fallback, res.Fallback)
			}
			if tc.fallback && res.Err == nil {
				t.Error("Expected fallback resolution to carry the cause")
			}
		})
	}
}

func TestRangeResolver_CallsBackendOnce(t *testing.T) {
	repo := &stubRangeRepo{err: errors.New("timeout")}
	resolver := NewRangeResolver(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolver.Resolve(context.Background())
		}()
	}
	wg.Wait()
	resolver.Resolve(context.Background())

	if calls := repo.calls.Load(); calls != 1 {
		t.Errorf("Expected exactly 1 backend call, got %d", calls)
	}
}
