package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/source"
	"github.com/actuallystonmai/country-directory/internal/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultLoadTimeout = 15 * time.Second

// Store persists session snapshots for the lifetime of a session.
type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Set(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// Service is the controller of mounted directories. Each session owns at
// most one in-flight load; its context is cancelled on Unmount and on Close,
// and a cancelled load never writes its result.
type Service struct {
	store       Store
	loader      source.Loader
	log         *zap.Logger
	loadTimeout time.Duration
	now         func() time.Time

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu serialises every read-modify-write of a snapshot and guards inflight.
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

type Option func(*Service)

func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, loader source.Loader, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:       store,
		loader:      loader,
		log:         log.Named("service"),
		loadTimeout: defaultLoadTimeout,
		now:         time.Now,
		base:        base,
		cancel:      cancel,
		inflight:    make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount creates a session in its initial state and starts its first load.
func (s *Service) Mount(ctx context.Context) (*domain.Session, error) {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UI:        view.Initial(),
		Status:    domain.StatusLoading,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.startLoadLocked(sess.ID)

	s.log.Info("session_mounted", zap.String("session", sess.ID))
	return sess, nil
}

// Unmount cancels any in-flight load and discards the session.
func (s *Service) Unmount(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return err
	}
	if cancel, ok := s.inflight[sessionID]; ok {
		cancel()
		delete(s.inflight, sessionID)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.log.Info("session_unmounted", zap.String("session", sessionID))
	return nil
}

func (s *Service) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// Page projects the session's users through its UI state.
func (s *Service) Page(ctx context.Context, sessionID string) (view.Page, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return view.Page{}, err
	}

	page := view.Project(sess.Users, sess.UI)
	page.Status = sess.Status
	page.Error = sess.Error
	return page, nil
}

func (s *Service) ToggleCountry(ctx context.Context, sessionID, country string) (*domain.Session, error) {
	return s.dispatch(ctx, sessionID, view.ToggleCountry{Country: country})
}

func (s *Service) SetFilter(ctx context.Context, sessionID string, filter domain.GenderFilter) (*domain.Session, error) {
	f, err := domain.ParseGenderFilter(string(filter))
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, sessionID, view.SetFilter{Filter: f})
}

func (s *Service) dispatch(ctx context.Context, sessionID string, e view.Event) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.UI = view.Reduce(sess.UI, e)
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Reload replaces the session's users with a fresh batch. The previous users
// stay visible until the new batch arrives and are kept if it fails.
func (s *Service) Reload(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, busy := s.inflight[sessionID]; busy {
		return nil, domain.ErrLoadInProgress
	}

	sess.Status = domain.StatusLoading
	sess.Error = ""
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.startLoadLocked(sessionID)

	s.log.Info("session_reload", zap.String("session", sessionID))
	return sess, nil
}

// Close cancels every in-flight load and waits for the loaders to return.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) startLoadLocked(sessionID string) {
	ctx, cancel := context.WithCancel(s.base)
	s.inflight[sessionID] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.load(ctx, sessionID)
	}()
}

func (s *Service) load(ctx context.Context, sessionID string) {
	start := s.now()
	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	users, loadErr := s.loader.Load(loadCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Unmount or Close got here first: the session no longer wants this result.
	if ctx.Err() != nil {
		s.log.Debug("load_discarded", zap.String("session", sessionID))
		return
	}
	delete(s.inflight, sessionID)

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.log.Error("load_apply_failed", zap.String("session", sessionID), zap.Error(err))
		}
		return
	}

	if loadErr != nil {
		s.log.Warn("fetch_failed",
			zap.String("session", sessionID),
			zap.Bool("fetch_error", source.IsFetchError(loadErr)),
			zap.Error(loadErr),
		)
		sess.Status = domain.StatusFailed
		sess.Error = loadErr.Error()
	} else {
		sess.Users = users
		sess.Status = domain.StatusReady
		sess.Error = ""
		sess.LoadedAt = s.now().UTC()
		s.log.Info("users_loaded",
			zap.String("session", sessionID),
			zap.Int("count", len(users)),
			zap.Duration("took", s.now().Sub(start)),
		)
	}

	if err := s.store.Set(ctx, sess); err != nil {
		s.log.Error("load_apply_failed", zap.String("session", sessionID), zap.Error(err))
	}
}
