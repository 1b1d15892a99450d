package beer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/entity"
	"beercatalog/internal/core/id"
	"beercatalog/internal/core/tx"
	"beercatalog/internal/domain"
	"beercatalog/pkg/logger"
)

var tracer = otel.Tracer("beercatalog/beer")

// Service orchestrates the catalog operations over a Repository.
// It keeps no state between calls; every operation reads and writes through the repository.
type Service struct {
	repo      Repository
	txManager tx.Manager
	hooks     *domain.HookRegistry[Change]
}

// NewService creates a new beer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[Change](),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[Change] {
	return s.hooks
}

// Create stores a new record built from in. ID, version and timestamps
// in the input are ignored and assigned by the service.
func (s *Service) Create(ctx context.Context, in *Beer) (*Beer, error) {
	ctx, span := tracer.Start(ctx, "beer.Create")
	defer span.End()

	b := &Beer{BaseEntity: entity.NewBaseEntity()}
	Replace(b, in)

	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, b); err != nil {
			return fmt.Errorf("create %s: %w", EntityName, err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	span.SetAttributes(attribute.String("beer.id", b.ID.String()))
	logger.Info(ctx, "beer created", "beer_id", b.ID, "version", b.Version)
	s.runHooks(ctx, domain.AfterCreate, Change{Action: ActionCreate, After: b.Clone()})

	return b, nil
}

// Get retrieves a record by ID.
func (s *Service) Get(ctx context.Context, beerID id.ID) (*Beer, error) {
	ctx, span := tracer.Start(ctx, "beer.Get", trace.WithAttributes(attribute.String("beer.id", beerID.String())))
	defer span.End()

	b, err := s.repo.FindByID(ctx, beerID)
	if err != nil {
		return nil, s.fail(span, s.normalizeGetErr(ctx, err, beerID))
	}
	return b, nil
}

// List returns the records matching f. QuantityOnHand is cleared on every
// record unless f.ShowInventory is explicitly true. Never nil.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Beer, error) {
	p := BuildPredicate(f)
	visible := InventoryVisible(f)

	ctx, span := tracer.Start(ctx, "beer.List", trace.WithAttributes(
		attribute.String("beer.predicate", p.Kind.String()),
		attribute.Bool("beer.show_inventory", visible),
	))
	defer span.End()

	beers, err := s.repo.Find(ctx, p)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("list %s: %w", EntityName, err))
	}
	if beers == nil {
		beers = []*Beer{}
	}

	logger.Debug(ctx, "beers listed", "predicate", p.String(), "count", len(beers), "show_inventory", visible)
	return ApplyInventoryVisibility(beers, visible), nil
}

// Update replaces every mutable field of the record with the values from in.
func (s *Service) Update(ctx context.Context, beerID id.ID, in *Beer) (*Beer, error) {
	ctx, span := tracer.Start(ctx, "beer.Update", trace.WithAttributes(attribute.String("beer.id", beerID.String())))
	defer span.End()

	return s.mutate(ctx, span, beerID, ActionUpdate, func(b *Beer) {
		Replace(b, in)
	})
}

// Patch merges the present fields of p into the record.
func (s *Service) Patch(ctx context.Context, beerID id.ID, p Patch) (*Beer, error) {
	ctx, span := tracer.Start(ctx, "beer.Patch", trace.WithAttributes(attribute.String("beer.id", beerID.String())))
	defer span.End()

	return s.mutate(ctx, span, beerID, ActionPatch, func(b *Beer) {
		fields := p.ApplyTo(b)
		span.SetAttributes(attribute.StringSlice("beer.patched_fields", fields))
	})
}

// Delete permanently removes the record and returns it as it was just before removal.
func (s *Service) Delete(ctx context.Context, beerID id.ID) (*Beer, error) {
	ctx, span := tracer.Start(ctx, "beer.Delete", trace.WithAttributes(attribute.String("beer.id", beerID.String())))
	defer span.End()

	var deleted *Beer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByID(ctx, beerID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteByID(ctx, beerID); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.normalizeGetErr(ctx, err, beerID))
	}

	logger.Info(ctx, "beer deleted", "beer_id", beerID, "version", deleted.Version)
	s.runHooks(ctx, domain.AfterDelete, Change{Action: ActionDelete, Before: deleted.Clone()})

	return deleted, nil
}

// mutate runs the read-modify-write cycle shared by Update and Patch.
// The NotFound check precedes validation of the merged record.
func (s *Service) mutate(ctx context.Context, span trace.Span, beerID id.ID, action Action, apply func(b *Beer)) (*Beer, error) {
	var before, after *Beer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByID(ctx, beerID)
		if err != nil {
			return err
		}
		before = existing.Clone()

		apply(existing)
		if err := existing.Validate(ctx); err != nil {
			return err
		}
		existing.Touch()

		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}
		after = existing
		return nil
	})
	if err != nil {
		return nil, s.fail(span, s.normalizeGetErr(ctx, err, beerID))
	}

	logger.Info(ctx, "beer updated", "beer_id", beerID, "action", string(action), "version", after.Version)
	s.runHooks(ctx, domain.AfterUpdate, Change{Action: action, Before: before, After: after.Clone()})

	return after, nil
}

// normalizeGetErr keeps AppErrors, re-labels NotFound with this entity and
// wraps anything else as an opaque infrastructure failure.
func (s *Service) normalizeGetErr(ctx context.Context, err error, beerID id.ID) error {
	if apperror.IsNotFound(err) {
		logger.Debug(ctx, "beer not found", "beer_id", beerID)
		return apperror.NewNotFound(EntityName, beerID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return fmt.Errorf("%s %s: %w", EntityName, beerID, err)
}

func (s *Service) fail(span trace.Span, err error) error {
	if !apperror.IsNotFound(err) && !apperror.IsValidation(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// runHooks runs after-commit hooks. The mutation is already durable,
// so a failing hook is logged and never surfaced to the caller.
func (s *Service) runHooks(ctx context.Context, event domain.HookEvent, c Change) {
	if err := s.hooks.Run(ctx, event, c); err != nil {
		logger.Warn(ctx, "beer hook failed", "event", string(event), "beer_id", c.BeerID(), "error", err)
	}
}
