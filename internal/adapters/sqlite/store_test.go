package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duet/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, name string) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "hash-"+name)
	require.NoError(t, err)
	return u
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "duet.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestUsers_CreateGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")

	got, err := s.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	list, err := s.ListUsers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{*bob, *carol}, list)

	creds, err := s.GetCredentials(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, creds.User.ID)
	assert.Equal(t, "hash-carol", creds.PasswordHash)
}

func TestUsers_DuplicateAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "alice")

	_, err := s.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = s.GetCredentials(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestConversations_CreateFindGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")

	pair, err := domain.NewPair(b.ID, a.ID)
	require.NoError(t, err)

	_, err = s.FindConversation(ctx, pair)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := s.CreateConversation(ctx, pair)
	require.NoError(t, err)
	assert.Equal(t, a.ID, created.User1)
	assert.Equal(t, b.ID, created.User2)

	found, err := s.FindConversation(ctx, pair)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	byID, err := s.GetConversation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	_, err = s.GetConversation(ctx, created.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversations_PairIsUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")
	pair, _ := domain.NewPair(a.ID, b.ID)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		duplicate int
	)
	for range 8 {
		wg.Go(func() {
			_, err := s.CreateConversation(ctx, pair)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDuplicateConversation):
				duplicate++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, duplicate)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestConversations_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "alice")
	pair, _ := domain.NewPair(a.ID, a.ID+50)

	_, err := s.CreateConversation(context.Background(), pair)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMessages_AppendAndReadOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")
	pair, _ := domain.NewPair(a.ID, b.ID)
	conv, err := s.CreateConversation(ctx, pair)
	require.NoError(t, err)

	bodies := []struct {
		sender domain.UserID
		body   string
	}{
		{a.ID, "hi"},
		{b.ID, "hello"},
		{a.ID, "how are you?"},
	}
	for i, m := range bodies {
		got, err := s.AppendMessage(ctx, conv.ID, m.sender, m.body)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), got.Seq)
		assert.NotZero(t, got.ID)
	}

	msgs, err := s.ReadOrdered(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, len(bodies))
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
		assert.Equal(t, bodies[i].sender, m.SenderID)
		assert.Equal(t, bodies[i].body, m.Body)
		assert.Equal(t, conv.ID, m.ConversationID)
		if i > 0 {
			assert.False(t, m.Timestamp.Before(msgs[i-1].Timestamp))
		}
	}
}

func TestMessages_SeqIsPerConversationAndGapless(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")
	b := mustUser(t, s, "bob")
	c := mustUser(t, s, "carol")
	p1, _ := domain.NewPair(a.ID, b.ID)
	p2, _ := domain.NewPair(a.ID, c.ID)
	c1, _ := s.CreateConversation(ctx, p1)
	c2, _ := s.CreateConversation(ctx, p2)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := s.AppendMessage(ctx, c1.ID, a.ID, "x")
			assert.NoError(t, err)
		})
	}
	wg.Wait()
	m, err := s.AppendMessage(ctx, c2.ID, c.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Seq)

	msgs, err := s.ReadOrdered(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}

func TestMessages_UnknownConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustUser(t, s, "alice")

	msgs, err := s.ReadOrdered(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = s.AppendMessage(ctx, 404, a.ID, "lost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ListUsers(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = s.AppendMessage(context.Background(), 1, 1, "x")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
