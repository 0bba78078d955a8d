// Package director resolves storylet choices against persisted worlds.
//
// A resolution loads the world and storylet, casts every role from a snapshot
// of the world's NPCs and, only when casting succeeds, applies the choice's
// outcome, saves the world and publishes the result.
package director

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/storage"
	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

// EventPublisher receives every successfully applied resolution.
type EventPublisher interface {
	Publish(ctx context.Context, worldID uuid.UUID, result *EventResult) error
}

// Request identifies the choice to resolve.
type Request struct {
	WorldID    uuid.UUID `json:"world_id"`
	StoryletID string    `json:"storylet_id"`
	ChoiceID   string    `json:"choice_id"`
}

// EventResult is the outcome of a resolution or preview.
type EventResult struct {
	ResolutionID  uuid.UUID    `json:"resolution_id"`
	WorldID       uuid.UUID    `json:"world_id"`
	StoryletID    string       `json:"storylet_id"`
	ChoiceID      string       `json:"choice_id"`
	Cast          casting.Cast `json:"cast"`
	Prompt        string       `json:"prompt,omitempty"`
	OutcomePrompt string       `json:"outcome_prompt,omitempty"`
	Applied       bool         `json:"applied"`
	ResolvedAt    time.Time    `json:"resolved_at"`
}

// Director coordinates storage, casting and event publication.
type Director struct {
	store      storage.Storage
	engine     *casting.Engine
	bands      casting.BandTable
	publishers []EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Director.
type Option func(*Director)

// WithScorer replaces the default scorer and band table.
func WithScorer(s *casting.Scorer) Option {
	return func(d *Director) {
		if s == nil {
			return
		}
		d.engine = casting.NewEngine(s)
		d.bands = s.Bands
	}
}

// WithPublisher adds a destination for applied resolutions.
// Publishers are called in the order they were added.
func WithPublisher(p EventPublisher) Option {
	return func(d *Director) {
		if p != nil {
			d.publishers = append(d.publishers, p)
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Director) {
		d.now = now
	}
}

// New creates a Director backed by store.
func New(store storage.Storage, logger *slog.Logger, opts ...Option) *Director {
	if logger == nil {
		logger = slog.Default()
	}
	scorer := casting.DefaultScorer()
	d := &Director{
		store:  store,
		engine: casting.NewEngine(scorer),
		bands:  scorer.Bands,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// plan is everything a resolution needs once casting has succeeded.
type plan struct {
	world    *world.World
	storylet *storylet.Storylet
	choice   storylet.Choice
	cast     casting.Cast
	names    map[string]string
}

// Preview casts the choice without applying or publishing anything.
func (d *Director) Preview(ctx context.Context, req Request) (*EventResult, error) {
	p, err := d.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return d.result(req, p, false), nil
}

// Resolve casts the choice and, on success, applies its outcome to the world.
// A casting failure returns a *ResolutionError and leaves the world untouched.
func (d *Director) Resolve(ctx context.Context, req Request) (*EventResult, error) {
	log := d.logger.With("world_id", req.WorldID.String(), "storylet_id", req.StoryletID, "choice_id", req.ChoiceID)

	p, err := d.plan(ctx, req)
	if err != nil {
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			log.Info("choice not resolved", "unfilled_roles", resErr.UnfilledRoles)
		}
		return nil, err
	}

	next := p.world.Clone()
	worker := newOutcomeWorker(next, p.choice.Outcome, p.cast, log)
	if err := worker.Apply(p.storylet.ID + "/" + p.choice.ID); err != nil {
		return nil, fmt.Errorf("failed to apply outcome: %w", err)
	}
	next.UpdatedAt = d.now().UTC()

	if err := d.store.SaveWorld(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save world: %w", err)
	}

	result := d.result(req, p, true)
	for _, pub := range d.publishers {
		if err := pub.Publish(ctx, req.WorldID, result); err != nil {
			log.Error("failed to publish resolved event", "error", err)
		}
	}

	log.Info("choice resolved", "resolution_id", result.ResolutionID.String(), "cast_size", len(result.Cast))
	return result, nil
}

func (d *Director) plan(ctx context.Context, req Request) (*plan, error) {
	w, err := d.store.LoadWorld(ctx, req.WorldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	if w == nil {
		return nil, fmt.Errorf("world %s: %w", req.WorldID, ErrNotFound)
	}

	s, err := d.store.GetStorylet(ctx, req.StoryletID)
	if err != nil {
		if errors.Is(err, storage.ErrStoryletNotFound) {
			return nil, fmt.Errorf("storylet %s: %w", req.StoryletID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load storylet: %w", err)
	}

	choice, ok := s.Choice(req.ChoiceID)
	if !ok {
		return nil, fmt.Errorf("choice %s of storylet %s: %w", req.ChoiceID, req.StoryletID, ErrNotFound)
	}

	view, err := world.NewPoolView(w, d.bands)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate pool: %w", err)
	}

	tb := casting.NewTieBreaker(casting.Key{
		WorldSeed:  w.Seed,
		StoryletID: s.ID,
		ChoiceID:   choice.ID,
	})
	cast, err := d.engine.Assign(s.Roles, view.Candidates(), tb)
	if err != nil {
		return nil, &ResolutionError{
			StoryletID:    s.ID,
			ChoiceID:      choice.ID,
			UnfilledRoles: casting.UnfilledRoles(err),
			Err:           err,
		}
	}

	return &plan{
		world:    w,
		storylet: s,
		choice:   choice,
		cast:     cast,
		names:    view.Names(),
	}, nil
}

func (d *Director) result(req Request, p *plan, applied bool) *EventResult {
	return &EventResult{
		ResolutionID:  uuid.New(),
		WorldID:       req.WorldID,
		StoryletID:    p.storylet.ID,
		ChoiceID:      p.choice.ID,
		Cast:          p.cast,
		Prompt:        storylet.RenderPrompt(p.storylet.Prompt, p.cast, p.names),
		OutcomePrompt: storylet.RenderPrompt(p.choice.Outcome.Prompt, p.cast, p.names),
		Applied:       applied,
		ResolvedAt:    d.now().UTC(),
	}
}
