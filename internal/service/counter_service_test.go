package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/repository"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

type memCounterRepo struct {
	mu      sync.Mutex
	count   int64
	loadErr error
	saveErr error
	saves   []int64
}

func (r *memCounterRepo) Load(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, r.loadErr
}

func (r *memCounterRepo) Save(_ context.Context, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, count)
	if r.saveErr != nil {
		return r.saveErr
	}
	r.count = count
	return nil
}

func TestCounterService_ConcurrentAllocationsAreContiguous(t *testing.T) {
	const prev, n = 41, 200
	repo := &memCounterRepo{count: prev}
	svc, err := NewCounterService(context.Background(), repo, zap.NewNop(), nil)
	require.NoError(t, err)

	got := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = svc.IncrementAndSave(context.Background())
		}(i)
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(prev+1+i), v)
	}
	assert.Equal(t, int64(prev+n), svc.Current())
	assert.Equal(t, int64(prev+n), repo.count)
	assert.True(t, sort.SliceIsSorted(repo.saves, func(i, j int) bool { return repo.saves[i] < repo.saves[j] }),
		"persisted values must never go backwards")
}

func TestCounterService_StartsFreshOnMissingOrCorrupt(t *testing.T) {
	for _, loadErr := range []error{
		repository.ErrCounterNotFound,
		fmt.Errorf("%w: bad json", repository.ErrCounterCorrupt),
	} {
		svc, err := NewCounterService(context.Background(), &memCounterRepo{count: 99, loadErr: loadErr}, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Zero(t, svc.Current())
		assert.Equal(t, int64(1), svc.IncrementAndSave(context.Background()))
	}
}

func TestCounterService_TransportFailureIsFatal(t *testing.T) {
	_, err := NewCounterService(context.Background(), &memCounterRepo{loadErr: errors.New("dial tcp: refused")}, zap.NewNop(), nil)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, errorutil.CodePersistenceFailed))
}

func TestCounterService_SaveFailureStillAdvances(t *testing.T) {
	repo := &memCounterRepo{count: 3}
	metrics := observability.NewMetrics()
	svc, err := NewCounterService(context.Background(), repo, zap.NewNop(), metrics)
	require.NoError(t, err)

	repo.saveErr = errors.New("disk full")
	assert.Equal(t, int64(4), svc.IncrementAndSave(context.Background()))
	assert.Equal(t, int64(5), svc.IncrementAndSave(context.Background()))
	assert.Equal(t, int64(3), repo.count)
	assert.Equal(t, int64(2), metrics.Snapshot().Counters[observability.MetricCounterPersistError])
}

func TestCounterService_FileRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticket_counter.json")
	ctx := context.Background()

	first, err := NewCounterService(ctx, repository.NewFileCounterRepository(path), zap.NewNop(), nil)
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		first.IncrementAndSave(ctx)
	}

	restarted, err := NewCounterService(ctx, repository.NewFileCounterRepository(path), zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), restarted.Current())
	assert.Equal(t, int64(8), restarted.IncrementAndSave(ctx))
}
