package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type loaderFunc func(ctx context.Context) ([]domain.User, error)

func (f loaderFunc) Load(ctx context.Context) ([]domain.User, error) { return f(ctx) }

// countingLoader returns each queued response in turn, then repeats the last.
type countingLoader struct {
	mu        sync.Mutex
	calls     atomic.Int32
	responses []response
}

type response struct {
	users []domain.User
	err   error
}

func (l *countingLoader) Load(context.Context) ([]domain.User, error) {
	n := int(l.calls.Add(1)) - 1
	l.mu.Lock()
	defer l.mu.Unlock()
	if n >= len(l.responses) {
		n = len(l.responses) - 1
	}
	r := l.responses[n]
	return r.users, r.err
}

func at(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func scenario() []domain.User {
	return []domain.User{
		{ID: "1", Gender: domain.GenderMale, Location: domain.Location{Country: "US"}, RegisteredAt: at("2022-01-01")},
		{ID: "2", Gender: domain.GenderFemale, Location: domain.Location{Country: "US"}, RegisteredAt: at("2023-01-01")},
		{ID: "3", Gender: domain.GenderMale, Location: domain.Location{Country: "FR"}, RegisteredAt: at("2021-01-01")},
	}
}

func newTestService(t *testing.T, loader source.Loader) *Service {
	t.Helper()
	svc := NewService(NewMemoryStore(time.Hour), loader, zap.NewNop(), WithLoadTimeout(time.Second))
	t.Cleanup(svc.Close)
	return svc
}

func waitStatus(t *testing.T, svc *Service, id string, want domain.LoadStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		sess, err := svc.Session(context.Background(), id)
		return err == nil && sess.Status == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMountLoadsOnce(t *testing.T) {
	loader := &countingLoader{responses: []response{{users: scenario()}}}
	svc := newTestService(t, loader)
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLoading, sess.Status)
	assert.False(t, sess.UI.IsExpanded)
	assert.Equal(t, domain.FilterAll, sess.UI.Filter)

	waitStatus(t, svc, sess.ID, domain.StatusReady)
	assert.EqualValues(t, 1, loader.calls.Load())

	page, err := svc.Page(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, page.Countries, 2)
	assert.Equal(t, "US", page.Countries[0].Name)
	assert.Equal(t, 2, page.Countries[0].Total)
	assert.Equal(t, "FR", page.Countries[1].Name)
}

func TestEndToEndInteraction(t *testing.T) {
	svc := newTestService(t, &countingLoader{responses: []response{{users: scenario()}}})
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)
	waitStatus(t, svc, sess.ID, domain.StatusReady)

	_, err = svc.ToggleCountry(ctx, sess.ID, "US")
	require.NoError(t, err)
	page, err := svc.Page(ctx, sess.ID)
	require.NoError(t, err)
	us, ok := page.ExpandedCountry()
	require.True(t, ok)
	require.Len(t, us.Members, 2)
	assert.Equal(t, "2", us.Members[0].ID)
	assert.Equal(t, "1", us.Members[1].ID)

	_, err = svc.SetFilter(ctx, sess.ID, domain.FilterFemale)
	require.NoError(t, err)
	page, _ = svc.Page(ctx, sess.ID)
	us, _ = page.ExpandedCountry()
	assert.Equal(t, "US", us.Name)
	require.Len(t, us.Members, 1)
	assert.Equal(t, "2", us.Members[0].ID)

	updated, err := svc.ToggleCountry(ctx, sess.ID, "FR")
	require.NoError(t, err)
	assert.True(t, updated.UI.IsOpen("FR"))
	assert.False(t, updated.UI.IsOpen("US"))

	updated, err = svc.ToggleCountry(ctx, sess.ID, "FR")
	require.NoError(t, err)
	assert.False(t, updated.UI.IsExpanded)
}

func TestSetFilterRejectsUnknownValue(t *testing.T) {
	svc := newTestService(t, &countingLoader{responses: []response{{users: scenario()}}})
	sess, err := svc.Mount(context.Background())
	require.NoError(t, err)

	_, err = svc.SetFilter(context.Background(), sess.ID, "robot")
	assert.True(t, errors.Is(err, domain.ErrInvalidFilter))
}

func TestUnknownSession(t *testing.T) {
	svc := newTestService(t, &countingLoader{responses: []response{{}}})
	ctx := context.Background()

	_, err := svc.Page(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	_, err = svc.ToggleCountry(ctx, "missing", "US")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	_, err = svc.Reload(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	assert.True(t, errors.Is(svc.Unmount(ctx, "missing"), domain.ErrSessionNotFound))
}

func TestLoadFailureIsVisibleAndRetryable(t *testing.T) {
	fail := &source.FetchError{Op: "test", Err: errors.New("connection refused")}
	loader := &countingLoader{responses: []response{{err: fail}, {users: scenario()}}}
	svc := newTestService(t, loader)
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)
	_, err = svc.ToggleCountry(ctx, sess.ID, "US")
	require.NoError(t, err)
	waitStatus(t, svc, sess.ID, domain.StatusFailed)

	page, err := svc.Page(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, page.Status)
	assert.Contains(t, page.Error, "connection refused")
	assert.Empty(t, page.Countries)

	_, err = svc.Reload(ctx, sess.ID)
	require.NoError(t, err)
	waitStatus(t, svc, sess.ID, domain.StatusReady)

	got, err := svc.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Users, 3)
	assert.Empty(t, got.Error)
	assert.True(t, got.UI.IsOpen("US"), "loads never touch UI state")
}

func TestReloadFailureKeepsPreviousUsers(t *testing.T) {
	loader := &countingLoader{responses: []response{
		{users: scenario()},
		{err: &source.FetchError{Op: "test", Err: errors.New("status 503")}},
	}}
	svc := newTestService(t, loader)
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)
	waitStatus(t, svc, sess.ID, domain.StatusReady)

	_, err = svc.Reload(ctx, sess.ID)
	require.NoError(t, err)
	waitStatus(t, svc, sess.ID, domain.StatusFailed)

	got, err := svc.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Users, 3)
}

func TestReloadWhileLoading(t *testing.T) {
	release := make(chan struct{})
	svc := newTestService(t, loaderFunc(func(ctx context.Context) ([]domain.User, error) {
		select {
		case <-release:
			return scenario(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)

	_, err = svc.Reload(ctx, sess.ID)
	assert.True(t, errors.Is(err, domain.ErrLoadInProgress))

	close(release)
	waitStatus(t, svc, sess.ID, domain.StatusReady)
	_, err = svc.Reload(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestUnmountCancelsInFlightLoad(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	svc := newTestService(t, loaderFunc(func(ctx context.Context) ([]domain.User, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return scenario(), nil
	}))
	ctx := context.Background()

	sess, err := svc.Mount(ctx)
	require.NoError(t, err)
	<-started

	require.NoError(t, svc.Unmount(ctx, sess.ID))

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("load was not cancelled on unmount")
	}
	svc.Close()

	_, err = svc.Session(ctx, sess.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound), "cancelled load must not resurrect the session")
}

func TestCloseCancelsAllLoads(t *testing.T) {
	var returned atomic.Int32
	svc := NewService(NewMemoryStore(time.Hour), loaderFunc(func(ctx context.Context) ([]domain.User, error) {
		<-ctx.Done()
		returned.Add(1)
		return nil, ctx.Err()
	}), zap.NewNop())

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := svc.Mount(context.Background())
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}

	svc.Close()

	assert.EqualValues(t, 3, returned.Load())
	for _, id := range ids {
		sess, err := svc.Session(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLoading, sess.Status, "discarded loads write nothing")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	svc := newTestService(t, &countingLoader{responses: []response{{users: scenario()}}})
	ctx := context.Background()

	a, err := svc.Mount(ctx)
	require.NoError(t, err)
	b, err := svc.Mount(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = svc.ToggleCountry(ctx, a.ID, "US")
	require.NoError(t, err)

	got, err := svc.Session(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.UI.IsExpanded, "a fresh mount starts from the initial state")
}
