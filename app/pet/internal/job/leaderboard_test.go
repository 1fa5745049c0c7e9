package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/redis"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []*model.LeaderboardEntry
	err     error
}

func (s *fakeSource) TopByTotalXP(_ context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

type fakeBoard struct {
	mu       sync.Mutex
	replaced [][]*model.LeaderboardEntry
}

func (b *fakeBoard) Replace(_ context.Context, entries []*model.LeaderboardEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaced = append(b.replaced, entries)
	return nil
}

func (b *fakeBoard) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.replaced)
}

type fakeLocker struct {
	held bool
	keys []string
}

func (l *fakeLocker) WithLock(_ context.Context, key string, _ time.Duration, fn func() error) error {
	l.keys = append(l.keys, key)
	if l.held {
		return redis.ErrLockFailed
	}
	return fn()
}

func entries(n int) []*model.LeaderboardEntry {
	out := make([]*model.LeaderboardEntry, n)
	for i := range out {
		out[i] = &model.LeaderboardEntry{UserID: string(rune('a' + i)), TotalXP: int64(100 - i)}
	}
	return out
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name     string
		source   *fakeSource
		held     bool
		wantErr  bool
		replaced int
	}{
		{"replaces cached board", &fakeSource{entries: entries(5)}, false, false, 1},
		{"lock held elsewhere", &fakeSource{entries: entries(5)}, true, false, 0},
		{"source failure", &fakeSource{err: errors.New("db down")}, false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &fakeBoard{}
			locker := &fakeLocker{held: tt.held}
			j, err := NewLeaderboardRebuilder(&LeaderboardConfig{Size: 3}, tt.source, board, locker, logger.NewNoop())
			require.NoError(t, err)

			err = j.Rebuild(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.replaced, board.calls())
			assert.Equal(t, []string{"lock:pet:leaderboard"}, locker.keys)
			if tt.replaced > 0 {
				assert.Len(t, board.replaced[0], 3)
			}
		})
	}
}

func TestInvalidSpec(t *testing.T) {
	_, err := NewLeaderboardRebuilder(&LeaderboardConfig{Spec: "every now and then"}, &fakeSource{}, &fakeBoard{}, &fakeLocker{}, logger.NewNoop())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	board := &fakeBoard{}
	j, err := NewLeaderboardRebuilder(&LeaderboardConfig{Spec: "@every 1h"},
		&fakeSource{entries: entries(2)}, board, &fakeLocker{}, logger.NewNoop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	assert.Eventually(t, func() bool { return board.calls() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("rebuilder did not stop")
	}
}
