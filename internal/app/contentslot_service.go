// Package app contains application services that orchestrate use cases.
// It coordinates domain types and infrastructure through ports and owns the
// translation of repository "absent" results into domain not-found errors.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

const (
	entityContentSlot = "contentslot"

	// defaultViewConcurrency bounds how many views ListByViews loads at once.
	// Each load holds one pooled connection.
	defaultViewConcurrency = 4

	// maxViewsPerRequest caps ListByViews input.
	maxViewsPerRequest = 50
)

// ContentSlotService orchestrates content slot use cases over the repository port.
type ContentSlotService struct {
	repo            ports.ContentSlotRepository
	viewConcurrency int
	logger          *slog.Logger
}

// ContentSlotServiceConfig contains the dependencies of ContentSlotService.
type ContentSlotServiceConfig struct {
	Repository ports.ContentSlotRepository

	// ViewConcurrency bounds parallel view loads in ListByViews. Defaults to 4.
	ViewConcurrency int

	Logger *slog.Logger
}

// NewContentSlotService creates the service. It panics without a repository.
func NewContentSlotService(cfg ContentSlotServiceConfig) *ContentSlotService {
	if cfg.Repository == nil {
		panic("app: content slot repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.ViewConcurrency
	if concurrency <= 0 {
		concurrency = defaultViewConcurrency
	}

	return &ContentSlotService{
		repo:            cfg.Repository,
		viewConcurrency: concurrency,
		logger:          logger.With(slog.String("component", "app.ContentSlotService")),
	}
}

func (s *ContentSlotService) loggerFor(ctx context.Context, method string) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger).With(slog.String("method", method))
}

// Create stores a new slot and returns its identifier.
func (s *ContentSlotService) Create(ctx context.Context, slot domain.ContentSlot) (int64, error) {
	logger := s.loggerFor(ctx, "Create")

	slot, err := normalizeSlot(slot)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, slot)
	if err != nil {
		logRepositoryError(ctx, logger, "creating content slot failed", err)
		return 0, fmt.Errorf("creating content slot: %w", err)
	}

	logger.InfoContext(ctx, "content slot created",
		slog.Int64(logging.KeySlotID, id),
		slog.Int64(logging.KeyViewID, slot.ViewID),
		slog.String("component_type", slot.ComponentType),
		slog.Int("options", len(slot.Options)),
	)

	return id, nil
}

// Get returns one slot with its options.
func (s *ContentSlotService) Get(ctx context.Context, id int64) (domain.ContentSlot, error) {
	if err := validateID("id", id); err != nil {
		return domain.ContentSlot{}, err
	}

	slot, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logRepositoryError(ctx, s.loggerFor(ctx, "Get"), "loading content slot failed", err)
		return domain.ContentSlot{}, fmt.Errorf("getting content slot: %w", err)
	}

	if !found {
		return domain.ContentSlot{}, domain.NewNotFoundError(entityContentSlot, strconv.FormatInt(id, 10))
	}

	return slot, nil
}

// Update rewrites a slot and its options. A slot that does not exist or that
// the update left unchanged is reported as not found.
func (s *ContentSlotService) Update(ctx context.Context, slot domain.ContentSlot) (int64, error) {
	logger := s.loggerFor(ctx, "Update").With(slog.Int64(logging.KeySlotID, slot.ID))

	if err := validateID("id", slot.ID); err != nil {
		return 0, err
	}

	slot, err := normalizeSlot(slot)
	if err != nil {
		return 0, err
	}

	id, found, err := s.repo.Update(ctx, slot)
	if err != nil {
		logRepositoryError(ctx, logger, "updating content slot failed", err)
		return 0, fmt.Errorf("updating content slot: %w", err)
	}

	if !found {
		logger.DebugContext(ctx, "update changed nothing")
		return 0, domain.NewNotFoundError(entityContentSlot, strconv.FormatInt(slot.ID, 10))
	}

	logger.InfoContext(ctx, "content slot updated")

	return id, nil
}

// Delete removes a slot and, through the schema, its options.
func (s *ContentSlotService) Delete(ctx context.Context, id int64) error {
	logger := s.loggerFor(ctx, "Delete").With(slog.Int64(logging.KeySlotID, id))

	if err := validateID("id", id); err != nil {
		return err
	}

	_, found, err := s.repo.DeleteOne(ctx, id)
	if err != nil {
		logRepositoryError(ctx, logger, "deleting content slot failed", err)
		return fmt.Errorf("deleting content slot: %w", err)
	}

	if !found {
		return domain.NewNotFoundError(entityContentSlot, strconv.FormatInt(id, 10))
	}

	logger.InfoContext(ctx, "content slot deleted")

	return nil
}

// ListByView returns the slots of a view with their options.
func (s *ContentSlotService) ListByView(ctx context.Context, viewID int64) ([]domain.ContentSlot, error) {
	if err := validateID("viewId", viewID); err != nil {
		return nil, err
	}

	slots, err := s.repo.GetByViewID(ctx, viewID)
	if err != nil {
		logRepositoryError(ctx, s.loggerFor(ctx, "ListByView"), "listing view slots failed", err)
		return nil, fmt.Errorf("listing slots of view %d: %w", viewID, err)
	}

	return slots, nil
}

// ListByViews loads several views concurrently, at most ViewConcurrency at a
// time. The first failure cancels the remaining loads.
func (s *ContentSlotService) ListByViews(ctx context.Context, viewIDs []int64) (map[int64][]domain.ContentSlot, error) {
	if len(viewIDs) == 0 {
		return nil, domain.NewValidationError("viewIds", "at least one view id is required")
	}

	if len(viewIDs) > maxViewsPerRequest {
		return nil, domain.NewValidationErrorWithValue("viewIds",
			fmt.Sprintf("at most %d view ids are allowed", maxViewsPerRequest), len(viewIDs))
	}

	for _, viewID := range viewIDs {
		if err := validateID("viewIds", viewID); err != nil {
			return nil, err
		}
	}

	byView, err := loadEach(ctx, s.viewConcurrency, dedupe(viewIDs), s.ListByView)
	if err != nil {
		return nil, err
	}

	return byView, nil
}

// ListByComponentType returns the slots rendering componentType. Their
// options are not loaded.
func (s *ContentSlotService) ListByComponentType(ctx context.Context, componentType string) ([]domain.ContentSlot, error) {
	componentType = strings.TrimSpace(componentType)
	if componentType == "" {
		return nil, domain.NewValidationError("componentType", "cannot be empty")
	}

	slots, err := s.repo.GetByComponentType(ctx, componentType)
	if err != nil {
		logRepositoryError(ctx, s.loggerFor(ctx, "ListByComponentType"), "listing component slots failed", err)
		return nil, fmt.Errorf("listing slots of component %q: %w", componentType, err)
	}

	return slots, nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return domain.NewValidationErrorWithValue(field, "must be a positive integer", id)
	}

	return nil
}

// normalizeSlot trims the component type the way ListByComponentType trims
// its filter, then checks the fields the store relies on.
func normalizeSlot(slot domain.ContentSlot) (domain.ContentSlot, error) {
	slot.ComponentType = strings.TrimSpace(slot.ComponentType)
	if slot.ComponentType == "" {
		return slot, domain.NewValidationError("componentType", "cannot be empty")
	}

	if slot.ViewID <= 0 {
		return slot, domain.NewValidationErrorWithValue("viewId", "must be a positive integer", slot.ViewID)
	}

	return slot, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// logRepositoryError logs duplicates at warn level and everything else at error.
func logRepositoryError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if domain.IsDuplicateEntry(err) {
		logger.WarnContext(ctx, msg, slog.Any("error", err))
		return
	}

	logger.ErrorContext(ctx, msg, slog.Any("error", err))
}
