package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adboard/adboard-api/internal/config"
	"github.com/adboard/adboard-api/internal/domain"
	"github.com/adboard/adboard-api/internal/service/auth"
	"github.com/adboard/adboard-api/internal/store"
)

// memStore is an in-memory stand-in for the postgres stores. It mirrors
// their contracts: server-assigned IDs and timestamps, newest-first
// ordering with ID as the tie-break, totals over the full filtered set.
type memStore struct {
	users        map[int64]*domain.User
	usersByEmail map[string]int64
	listings     map[int64]*domain.Listing

	nextUserID    int64
	nextListingID int64
	clock         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[int64]*domain.User),
		usersByEmail: make(map[string]int64),
		listings:     make(map[int64]*domain.Listing),
		clock:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so consecutive inserts get distinct
// creation times.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Create(ctx context.Context, user *domain.User) error {
	if _, exists := s.usersByEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.tick()
	copied := *user
	s.users[user.ID] = &copied
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.GetByID(ctx, id)
}

// memListingStore adapts memStore to store.ListingStore.
type memListingStore struct {
	s *memStore
}

func (m *memListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	if _, ok := m.s.users[listing.UserID]; !ok {
		return fmt.Errorf("%w: user with ID %d not found", store.ErrInvalidEntity, listing.UserID)
	}
	m.s.nextListingID++
	listing.ID = m.s.nextListingID
	listing.CreatedAt = m.s.tick()
	copied := *listing
	m.s.listings[listing.ID] = &copied
	return nil
}

func (m *memListingStore) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, ok := m.s.listings[id]
	if !ok {
		return nil, store.ErrListingNotFound
	}
	copied := *listing
	return &copied, nil
}

func (m *memListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	existing, ok := m.s.listings[listing.ID]
	if !ok {
		return store.ErrListingNotFound
	}
	existing.Title = listing.Title
	existing.Description = listing.Description
	return nil
}

func (m *memListingStore) Delete(ctx context.Context, id int64) error {
	if _, ok := m.s.listings[id]; !ok {
		return store.ErrListingNotFound
	}
	delete(m.s.listings, id)
	return nil
}

func (m *memListingStore) List(
	ctx context.Context,
	filter store.ListingFilter,
) ([]*domain.Listing, int, error) {
	all := m.sorted()
	if filter.OwnerID != nil {
		filtered := all[:0]
		for _, l := range all {
			if l.UserID == *filter.OwnerID {
				filtered = append(filtered, l)
			}
		}
		all = filtered
	}

	total := len(all)
	start := filter.Offset
	if start > total {
		start = total
	}
	if start < 0 {
		start = 0
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memListingStore) Search(ctx context.Context, query string) ([]*domain.Listing, error) {
	needle := strings.ToLower(query)
	matches := []*domain.Listing{}
	for _, l := range m.sorted() {
		if strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Description), needle) {
			matches = append(matches, l)
		}
	}
	return matches, nil
}

func (m *memListingStore) sorted() []*domain.Listing {
	all := make([]*domain.Listing, 0, len(m.s.listings))
	for _, l := range m.s.listings {
		copied := *l
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all
}

// memSession records commit/rollback calls so pipeline behavior can be
// asserted. It operates directly on the shared memStore; transactional
// isolation is not simulated.
type memSession struct {
	s *memStore

	commitErr  error
	committed  bool
	rolledBack bool
}

func (s *memSession) Users() store.UserStore       { return s.s }
func (s *memSession) Listings() store.ListingStore { return &memListingStore{s: s.s} }

func (s *memSession) Commit() error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *memSession) Rollback() error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}

// memSessionFactory hands out memSessions over one shared store and keeps
// them for inspection.
type memSessionFactory struct {
	s        *memStore
	beginErr error

	commitErr error
	sessions  []*memSession
}

func (f *memSessionFactory) Begin(ctx context.Context) (store.Session, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	sess := &memSession{s: f.s, commitErr: f.commitErr}
	f.sessions = append(f.sessions, sess)
	return sess, nil
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	router   http.Handler
	store    *memStore
	sessions *memSessionFactory
	tokens   auth.TokenService
	hasher   auth.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newMemStore()
	sessions := &memSessionFactory{s: st}

	tokens, err := auth.NewTokenService(config.AuthConfig{
		JWTSecret:            "test-secret-key-0123456789abcdefghij",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	hasher := auth.NewBcryptHasher(4) // minimum cost keeps tests fast

	log := slog.Default()
	renderer, err := NewRenderer(log)
	require.NoError(t, err)

	pipeline := NewPipeline(sessions, tokens, log)
	authHandler := NewAuthHandler(tokens, hasher, log)
	listingHandler := NewListingHandler(renderer, log)

	return &testEnv{
		router:   NewRouter(pipeline, authHandler, listingHandler, renderer),
		store:    st,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
	}
}
