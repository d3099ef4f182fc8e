package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

const profileCollection = "user_profiles"

type profileDocument struct {
	ID             string                  `bson:"_id"`
	UserID         string                  `bson:"userId"`
	Education      []profile.Education     `bson:"education"`
	Experience     []profile.Experience    `bson:"experience"`
	Projects       []profile.Project       `bson:"projects"`
	Certifications []profile.Certification `bson:"certifications"`
	Involvement    []profile.Involvement   `bson:"involvement"`
	Skills         []profile.Skill         `bson:"skills"`
	Contact        []profile.Contact       `bson:"contact"`
	Summary        []profile.Summary       `bson:"summary"`
	Image          *profile.Image          `bson:"image,omitempty"`
	Version        int64                   `bson:"version"`
	CreatedAt      time.Time               `bson:"createdAt"`
	UpdatedAt      time.Time               `bson:"updatedAt"`
}

func (d *profileDocument) toDomain() (*profile.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.UserID, err)
	}

	p := &profile.Profile{
		ID:             id,
		UserID:         userID,
		Education:      d.Education,
		Experience:     d.Experience,
		Projects:       d.Projects,
		Certifications: d.Certifications,
		Involvement:    d.Involvement,
		Skills:         d.Skills,
		Contact:        d.Contact,
		Summary:        d.Summary,
		Image:          d.Image,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	p.Normalize()
	return p, nil
}

type mongoProfileRepo struct {
	coll   *mongo.Collection
	logger logger.Logger
}

func NewMongoProfileRepo(db *mongo.Database, log logger.Logger) profile.Repository {
	return &mongoProfileRepo{coll: db.Collection(profileCollection), logger: log}
}

// EnsureProfileIndexes creates the unique userId index that makes upserts
// safe under concurrency.
func EnsureProfileIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(profileCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
	})
	if err != nil {
		return fmt.Errorf("create profile index: %w", err)
	}
	return nil
}

// newDocumentFields are written only when an upsert inserts, leaving out
// the collection the same update writes to.
func newDocumentFields(now time.Time, except string) bson.M {
	fields := bson.M{
		"_id":       uuid.New().String(),
		"createdAt": now,
	}
	for _, c := range profile.Collections {
		if string(c) != except {
			fields[string(c)] = bson.A{}
		}
	}
	return fields
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (r *mongoProfileRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*profile.Profile, error) {
	var doc profileDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *mongoProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	var doc profileDocument
	err := r.coll.FindOne(ctx, bson.M{"userId": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		return nil, apperror.NewPersistence("failed to find profile", err)
	}

	p, err := doc.toDomain()
	if err != nil {
		return nil, apperror.NewPersistence("failed to decode profile", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	now := time.Now().UTC()
	insert := newDocumentFields(now, "")
	insert["version"] = int64(1)
	insert["updatedAt"] = now

	p, err := r.findOneAndUpdate(ctx,
		bson.M{"userId": userID.String()},
		bson.M{"$setOnInsert": insert},
		afterUpdate().SetUpsert(true),
	)
	if err != nil {
		return nil, apperror.NewPersistence("failed to get or create profile", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) PushItem(ctx context.Context, userID uuid.UUID, c profile.Collection, rec profile.Record) (*profile.Profile, error) {
	if !c.Valid() {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", c), nil)
	}
	now := time.Now().UTC()

	p, err := r.findOneAndUpdate(ctx,
		bson.M{"userId": userID.String()},
		bson.M{
			"$push":        bson.M{string(c): rec},
			"$inc":         bson.M{"version": 1},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": newDocumentFields(now, string(c)),
		},
		afterUpdate().SetUpsert(true),
	)
	if err != nil {
		return nil, apperror.NewPersistence("failed to push item", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) ReplaceItem(ctx context.Context, userID uuid.UUID, c profile.Collection, itemID string, rec profile.Record, expectedVersion int64) (*profile.Profile, error) {
	if !c.Valid() {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", c), nil)
	}

	filter := bson.M{"userId": userID.String(), string(c) + ".itemId": itemID}
	if expectedVersion != 0 {
		filter["version"] = expectedVersion
	}

	p, err := r.findOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{string(c) + ".$": rec, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}, afterUpdate())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.classifyMiss(ctx, userID, c, itemID, expectedVersion)
	}
	if err != nil {
		return nil, apperror.NewPersistence("failed to replace item", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) PullItem(ctx context.Context, userID uuid.UUID, c profile.Collection, itemID string) (*profile.Profile, bool, error) {
	if !c.Valid() {
		return nil, false, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", c), nil)
	}

	p, err := r.findOneAndUpdate(ctx,
		bson.M{"userId": userID.String(), string(c) + ".itemId": itemID},
		bson.M{
			"$pull": bson.M{string(c): bson.M{"itemId": itemID}},
			"$inc":  bson.M{"version": 1},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		afterUpdate(),
	)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, apperror.NewPersistence("failed to pull item", err)
	}
	return p, true, nil
}

func (r *mongoProfileRepo) ReplaceCollection(ctx context.Context, userID uuid.UUID, c profile.Collection, records []profile.Record, expectedVersion int64) (*profile.Profile, error) {
	if !c.Valid() {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", c), nil)
	}
	if records == nil {
		records = []profile.Record{}
	}

	filter := bson.M{"userId": userID.String()}
	if expectedVersion != 0 {
		filter["version"] = expectedVersion
	}

	p, err := r.findOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{string(c): records, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}, afterUpdate())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.classifyMiss(ctx, userID, c, "", expectedVersion)
	}
	if err != nil {
		return nil, apperror.NewPersistence("failed to replace collection", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) SetImage(ctx context.Context, userID uuid.UUID, img *profile.Image) (*profile.Profile, error) {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID.String()}

	if img == nil {
		p, err := r.findOneAndUpdate(ctx, filter, bson.M{
			"$unset": bson.M{"image": ""},
			"$inc":   bson.M{"version": 1},
			"$set":   bson.M{"updatedAt": now},
		}, afterUpdate())
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		if err != nil {
			return nil, apperror.NewPersistence("failed to clear profile image", err)
		}
		return p, nil
	}

	p, err := r.findOneAndUpdate(ctx, filter, bson.M{
		"$set":         bson.M{"image": img, "updatedAt": now},
		"$inc":         bson.M{"version": 1},
		"$setOnInsert": newDocumentFields(now, ""),
	}, afterUpdate().SetUpsert(true))
	if err != nil {
		return nil, apperror.NewPersistence("failed to store profile image", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) SetImageThumbnail(ctx context.Context, userID uuid.UUID, publicID, thumbnailURL string) (*profile.Profile, error) {
	filter := bson.M{"userId": userID.String(), "image.publicId": publicID}
	p, err := r.findOneAndUpdate(ctx, filter, bson.M{
		"$set": bson.M{"image.thumbnailUrl": thumbnailURL, "updatedAt": time.Now().UTC()},
	}, afterUpdate())
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, apperror.NewNotFound(apperror.ResourceImage, publicID)
	}
	if err != nil {
		return nil, apperror.NewPersistence("failed to store image thumbnail", err)
	}
	return p, nil
}

func (r *mongoProfileRepo) classifyMiss(ctx context.Context, userID uuid.UUID, c profile.Collection, itemID string, expectedVersion int64) error {
	current, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if itemID != "" {
		found := false
		recs, _ := current.Records(c)
		for _, rec := range recs {
			if rec.GetItemID() == itemID {
				found = true
				break
			}
		}
		if !found {
			return apperror.NewNotFound(apperror.ResourceItem, itemID)
		}
	}

	if expectedVersion != 0 && current.Version != expectedVersion {
		return apperror.NewVersionConflict(apperror.ResourceProfile, expectedVersion)
	}

	r.logger.Warn("Profile update matched no document",
		zap.String("user_id", userID.String()),
		zap.String("collection", string(c)),
	)
	return apperror.NewPersistence("profile update matched no document", nil)
}
