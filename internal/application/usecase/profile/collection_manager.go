package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

const reorderLockTTL = 10 * time.Second

// ManagerDeps are shared by every collection manager. Cache, Locker and
// Events are optional.
type ManagerDeps struct {
	Profiles profile.Repository
	Users    user.Repository
	Cache    service.ProfileCache
	Locker   service.Locker
	Events   service.EventPublisher
	Logger   logger.Logger
}

// CollectionManager implements add, list, update, delete, toggle and reorder
// for one embedded collection.
type CollectionManager[T any, P profile.RecordPtr[T]] struct {
	section profile.Section[T, P]
	deps    ManagerDeps
	newID   func() (string, error)
}

func NewCollectionManager[T any, P profile.RecordPtr[T]](section profile.Section[T, P], deps ManagerDeps) *CollectionManager[T, P] {
	return &CollectionManager[T, P]{
		section: section,
		deps:    deps,
		newID:   func() (string, error) { return gonanoid.New() },
	}
}

func (m *CollectionManager[T, P]) Section() profile.Section[T, P] {
	return m.section
}

type AddItemInput[P any] struct {
	UserID uuid.UUID
	Record P
}

type UpdateItemInput[P any] struct {
	UserID          uuid.UUID
	ItemID          string
	Record          P
	ExpectedVersion int64
}

type DeleteItemInput struct {
	UserID uuid.UUID
	ItemID string
}

// ToggleFieldInput flips Field, or sets it when Value is non-nil.
type ToggleFieldInput struct {
	UserID          uuid.UUID
	ItemID          string
	Field           profile.Flag
	Value           *bool
	ExpectedVersion int64
}

type ReorderInput[P any] struct {
	UserID          uuid.UUID
	Records         []P
	ExpectedVersion int64
}

// MutationOutput carries the refreshed profile and the affected record, if any.
type MutationOutput[P any] struct {
	Profile *profile.Profile
	Item    P
}

func (m *CollectionManager[T, P]) startSpan(ctx context.Context, op string, userID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, op)
	span.SetAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("collection", string(m.section.Collection)),
	)
	return ctx, span
}

func (m *CollectionManager[T, P]) validate(rec P) error {
	if rec == nil {
		return apperror.NewValidation(string(m.section.Collection), fmt.Errorf("record is required"))
	}
	if err := profile.Validate(rec); err != nil {
		return apperror.NewValidation(string(m.section.Collection), err)
	}
	return nil
}

func (m *CollectionManager[T, P]) AddItem(ctx context.Context, in AddItemInput[P]) (*MutationOutput[P], error) {
	ctx, span := m.startSpan(ctx, "AddItem", in.UserID)
	defer span.End()

	if err := m.validate(in.Record); err != nil {
		span.RecordError(err)
		return nil, err
	}

	itemID, err := m.newID()
	if err != nil {
		err = apperror.NewInternal("failed to generate item id", err)
		span.RecordError(err)
		return nil, err
	}
	in.Record.SetItemID(itemID)

	p, err := m.deps.Profiles.PushItem(ctx, in.UserID, m.section.Collection, in.Record)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("add %s item failed: %w", m.section.Collection, err)
	}

	m.afterMutation(ctx, p, profile.EventItemAdded, itemID)
	return &MutationOutput[P]{Profile: p, Item: in.Record}, nil
}

// ListItems returns the collection in stored order, never nil.
func (m *CollectionManager[T, P]) ListItems(ctx context.Context, userID uuid.UUID) ([]T, error) {
	ctx, span := m.startSpan(ctx, "ListItems", userID)
	defer span.End()

	if _, err := m.deps.Users.FindByID(ctx, userID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, err := loadProfile(ctx, m.deps, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return m.section.Items(p), nil
}

func (m *CollectionManager[T, P]) UpdateItem(ctx context.Context, in UpdateItemInput[P]) (*MutationOutput[P], error) {
	ctx, span := m.startSpan(ctx, "UpdateItem", in.UserID)
	defer span.End()

	if err := m.validate(in.Record); err != nil {
		span.RecordError(err)
		return nil, err
	}
	in.Record.SetItemID(in.ItemID)

	p, err := m.deps.Profiles.ReplaceItem(ctx, in.UserID, m.section.Collection, in.ItemID, in.Record, in.ExpectedVersion)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update %s item failed: %w", m.section.Collection, err)
	}

	m.afterMutation(ctx, p, profile.EventItemUpdated, in.ItemID)
	return &MutationOutput[P]{Profile: p, Item: in.Record}, nil
}

// DeleteItem removes the record with ItemID. An absent item is not an error.
func (m *CollectionManager[T, P]) DeleteItem(ctx context.Context, in DeleteItemInput) (*MutationOutput[P], error) {
	ctx, span := m.startSpan(ctx, "DeleteItem", in.UserID)
	defer span.End()

	if _, err := m.deps.Users.FindByID(ctx, in.UserID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, removed, err := m.deps.Profiles.PullItem(ctx, in.UserID, m.section.Collection, in.ItemID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("delete %s item failed: %w", m.section.Collection, err)
	}

	if removed {
		m.afterMutation(ctx, p, profile.EventItemDeleted, in.ItemID)
	} else {
		m.deps.Logger.Info("Delete of absent item ignored",
			zap.String("user_id", in.UserID.String()),
			zap.String("collection", string(m.section.Collection)),
			zap.String("item_id", in.ItemID),
		)
	}
	return &MutationOutput[P]{Profile: p}, nil
}

// ToggleField changes one boolean flag through the same replace path as
// UpdateItem, guarded by the version it read.
func (m *CollectionManager[T, P]) ToggleField(ctx context.Context, in ToggleFieldInput) (*MutationOutput[P], error) {
	ctx, span := m.startSpan(ctx, "ToggleField", in.UserID)
	defer span.End()

	if !in.Field.Valid() {
		err := apperror.NewValidation(string(m.section.Collection), fmt.Errorf("field %q cannot be toggled", in.Field))
		span.RecordError(err)
		return nil, err
	}

	p, err := m.deps.Profiles.GetByUserID(ctx, in.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rec, ok := m.section.Find(p, in.ItemID)
	if !ok {
		err := apperror.NewNotFound(apperror.ResourceItem, in.ItemID)
		span.RecordError(err)
		return nil, err
	}

	current, supported := rec.Flag(in.Field)
	if !supported {
		err := apperror.NewValidation(string(m.section.Collection), fmt.Errorf("%s has no %s field", m.section.Collection, in.Field))
		span.RecordError(err)
		return nil, err
	}
	next := !current
	if in.Value != nil {
		next = *in.Value
	}
	rec.SetFlag(in.Field, next)

	expected := in.ExpectedVersion
	if expected == 0 {
		expected = p.Version
	}

	return m.UpdateItem(ctx, UpdateItemInput[P]{
		UserID:          in.UserID,
		ItemID:          in.ItemID,
		Record:          rec,
		ExpectedVersion: expected,
	})
}

// Reorder replaces the whole collection. The submitted records must be a
// permutation of the stored ones.
func (m *CollectionManager[T, P]) Reorder(ctx context.Context, in ReorderInput[P]) (*MutationOutput[P], error) {
	ctx, span := m.startSpan(ctx, "Reorder", in.UserID)
	defer span.End()

	if m.deps.Locker != nil {
		key := fmt.Sprintf("lock:reorder:%s:%s", in.UserID, m.section.Collection)
		unlock, err := m.deps.Locker.Lock(ctx, key, reorderLockTTL)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		defer unlock()
	}

	p, err := m.deps.Profiles.GetByUserID(ctx, in.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := m.checkPermutation(m.section.ItemIDs(p), in.Records); err != nil {
		span.RecordError(err)
		return nil, err
	}

	records := make([]profile.Record, 0, len(in.Records))
	for _, rec := range in.Records {
		if err := m.validate(rec); err != nil {
			span.RecordError(err)
			return nil, err
		}
		records = append(records, rec)
	}

	expected := in.ExpectedVersion
	if expected == 0 {
		expected = p.Version
	}

	p, err = m.deps.Profiles.ReplaceCollection(ctx, in.UserID, m.section.Collection, records, expected)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reorder %s failed: %w", m.section.Collection, err)
	}

	m.afterMutation(ctx, p, profile.EventItemsReordered, "")
	return &MutationOutput[P]{Profile: p}, nil
}

func (m *CollectionManager[T, P]) checkPermutation(stored []string, submitted []P) error {
	invalid := func(format string, args ...any) error {
		return apperror.NewValidation(string(m.section.Collection), fmt.Errorf(format, args...))
	}

	if len(submitted) != len(stored) {
		return invalid("reorder must contain all %d items, got %d", len(stored), len(submitted))
	}

	want := make(map[string]bool, len(stored))
	for _, id := range stored {
		want[id] = true
	}
	seen := make(map[string]bool, len(submitted))
	for _, rec := range submitted {
		if rec == nil || rec.GetItemID() == "" {
			return invalid("every reordered item needs an itemId")
		}
		id := rec.GetItemID()
		if seen[id] {
			return invalid("item %s appears more than once", id)
		}
		if !want[id] {
			return invalid("item %s is not part of %s", id, m.section.Collection)
		}
		seen[id] = true
	}
	return nil
}

func (m *CollectionManager[T, P]) afterMutation(ctx context.Context, p *profile.Profile, t profile.EventType, itemID string) {
	notifyChange(ctx, m.deps, p, profile.NewEvent(t, p, m.section.Collection, itemID))
}
