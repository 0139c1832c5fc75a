package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
)

// Resolver maps an unordered pair of users to their single conversation.
// Concurrent in-process calls for one pair share a single store round trip;
// the store's unique constraint covers callers in other processes.
type Resolver struct {
	store core.ConversationStore
	group singleflight.Group
}

func NewResolver(store core.ConversationStore) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) ResolveOrCreate(ctx context.Context, a, b domain.UserID) (domain.ConversationID, error) {
	pair, err := domain.NewPair(a, b)
	if err != nil {
		return 0, err
	}
	key := fmt.Sprintf("%d:%d", pair.Low, pair.High)
	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, pair)
	})
	if err != nil {
		return 0, err
	}
	conv := v.(*domain.Conversation)
	log.Debug().Str("module", "app.resolver").Str("pair", key).Int64("conversation", int64(conv.ID)).Bool("shared", shared).Msg("resolved")
	return conv.ID, nil
}

func (r *Resolver) resolve(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	conv, err := r.store.FindConversation(ctx, pair)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	conv, err = r.store.CreateConversation(ctx, pair)
	if errors.Is(err, domain.ErrDuplicateConversation) {
		log.Debug().Str("module", "app.resolver").Int64("low", int64(pair.Low)).Int64("high", int64(pair.High)).Msg("lost creation race, re-reading")
		return r.store.FindConversation(ctx, pair)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.resolver").Int64("conversation", int64(conv.ID)).Int64("low", int64(pair.Low)).Int64("high", int64(pair.High)).Msg("conversation created")
	return conv, nil
}
