package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

const profileTable = "user_profiles"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var profileColumns = []string{
	"id", "user_id",
	"education", "experience", "projects", "certifications",
	"involvement", "skills", "contact", "summary",
	"image", "version", "created_at", "updated_at",
}

var returningProfile = "RETURNING " + strings.Join(profileColumns, ", ")

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

// column maps a collection to its JSONB column. Collections are a closed
// set so the identifier is never user supplied.
func column(c profile.Collection) (string, error) {
	if !c.Valid() {
		return "", apperror.NewInvalidInput(fmt.Sprintf("unknown collection %q", c), nil)
	}
	return pgx.Identifier{string(c)}.Sanitize(), nil
}

func (r *postgresProfileRepo) scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var raw [8][]byte
	var imageBytes []byte

	err := row.Scan(
		&p.ID, &p.UserID,
		&raw[0], &raw[1], &raw[2], &raw[3],
		&raw[4], &raw[5], &raw[6], &raw[7],
		&imageBytes, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := [8]any{
		&p.Education, &p.Experience, &p.Projects, &p.Certifications,
		&p.Involvement, &p.Skills, &p.Contact, &p.Summary,
	}
	for i, target := range targets {
		if len(raw[i]) == 0 {
			continue
		}
		if err := json.Unmarshal(raw[i], target); err != nil {
			r.logger.Error("Failed to decode profile collection", err,
				zap.String("user_id", p.UserID.String()),
				zap.String("collection", string(profile.Collections[i])),
			)
			return nil, apperror.NewPersistence(fmt.Sprintf("failed to decode profile %s", profile.Collections[i]), err)
		}
	}

	if len(imageBytes) > 0 {
		var img profile.Image
		if err := json.Unmarshal(imageBytes, &img); err != nil {
			r.logger.Error("Failed to decode profile image", err, zap.String("user_id", p.UserID.String()))
			return nil, apperror.NewPersistence("failed to decode profile image", err)
		}
		p.Image = &img
	}

	p.Normalize()
	return p, nil
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From(profileTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		return nil, apperror.NewPersistence("failed to query profile", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query, args, err := psql.Insert(profileTable).
		Columns("id", "user_id").
		Values(uuid.New(), userID).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return nil, apperror.NewPersistence("failed to create profile", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *postgresProfileRepo) PushItem(ctx context.Context, userID uuid.UUID, c profile.Collection, rec profile.Record) (*profile.Profile, error) {
	col, err := column(c)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal item", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO user_profiles (id, user_id, %[1]s)
		VALUES ($1, $2, jsonb_build_array($3::jsonb))
		ON CONFLICT (user_id) DO UPDATE SET
			%[1]s = user_profiles.%[1]s || jsonb_build_array($3::jsonb),
			version = user_profiles.version + 1,
			updated_at = NOW()
		%[2]s
	`, col, returningProfile)

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, uuid.New(), userID, string(raw)))
	if err != nil {
		return nil, apperror.NewPersistence("failed to push item", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) ReplaceItem(ctx context.Context, userID uuid.UUID, c profile.Collection, itemID string, rec profile.Record, expectedVersion int64) (*profile.Profile, error) {
	col, err := column(c)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal item", err)
	}

	replaced := sq.Expr(fmt.Sprintf(`(
		SELECT jsonb_agg(CASE WHEN t.elem->>'itemId' = ? THEN ?::jsonb ELSE t.elem END ORDER BY t.ord)
		FROM jsonb_array_elements(%s) WITH ORDINALITY AS t(elem, ord)
	)`, col), itemID, string(raw))

	builder := psql.Update(profileTable).
		Set(string(c), replaced).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		Where(containsItem(col, itemID)).
		Suffix(returningProfile)
	if expectedVersion != 0 {
		builder = builder.Where(sq.Eq{"version": expectedVersion})
	}

	p, err := r.execProfileUpdate(ctx, builder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyMiss(ctx, userID, col, itemID, expectedVersion)
	}
	if err != nil {
		return nil, apperror.NewPersistence("failed to replace item", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) PullItem(ctx context.Context, userID uuid.UUID, c profile.Collection, itemID string) (*profile.Profile, bool, error) {
	col, err := column(c)
	if err != nil {
		return nil, false, err
	}

	remaining := sq.Expr(fmt.Sprintf(`COALESCE((
		SELECT jsonb_agg(t.elem ORDER BY t.ord)
		FROM jsonb_array_elements(%s) WITH ORDINALITY AS t(elem, ord)
		WHERE t.elem->>'itemId' <> ?
	), '[]'::jsonb)`, col), itemID)

	builder := psql.Update(profileTable).
		Set(string(c), remaining).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		Where(containsItem(col, itemID)).
		Suffix(returningProfile)

	p, err := r.execProfileUpdate(ctx, builder)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (r *postgresProfileRepo) ReplaceCollection(ctx context.Context, userID uuid.UUID, c profile.Collection, records []profile.Record, expectedVersion int64) (*profile.Profile, error) {
	col, err := column(c)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []profile.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal collection", err)
	}

	builder := psql.Update(profileTable).
		Set(string(c), sq.Expr("?::jsonb", string(raw))).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		Suffix(returningProfile)
	if expectedVersion != 0 {
		builder = builder.Where(sq.Eq{"version": expectedVersion})
	}

	p, err := r.execProfileUpdate(ctx, builder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyMiss(ctx, userID, col, "", expectedVersion)
	}
	if err != nil {
		return nil, apperror.NewPersistence("failed to replace collection", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) SetImage(ctx context.Context, userID uuid.UUID, img *profile.Image) (*profile.Profile, error) {
	if img == nil {
		builder := psql.Update(profileTable).
			Set("image", nil).
			Set("version", sq.Expr("version + 1")).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"user_id": userID}).
			Suffix(returningProfile)

		p, err := r.execProfileUpdate(ctx, builder)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		if err != nil {
			return nil, apperror.NewPersistence("failed to clear profile image", err)
		}
		return p, nil
	}

	raw, err := json.Marshal(img)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal image", err)
	}

	query := `
		INSERT INTO user_profiles (id, user_id, image)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET
			image = EXCLUDED.image,
			version = user_profiles.version + 1,
			updated_at = NOW()
		` + returningProfile

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, uuid.New(), userID, string(raw)))
	if err != nil {
		return nil, apperror.NewPersistence("failed to store profile image", err)
	}
	return p, nil
}

func containsItem(col, itemID string) sq.Sqlizer {
	return sq.Expr(col+" @> jsonb_build_array(jsonb_build_object('itemId', ?::text))", itemID)
}

func (r *postgresProfileRepo) execProfileUpdate(ctx context.Context, builder sq.UpdateBuilder) (*profile.Profile, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	return r.scanProfile(r.db.QueryRow(ctx, query, args...))
}

// classifyMiss explains why a guarded update matched no row.
func (r *postgresProfileRepo) classifyMiss(ctx context.Context, userID uuid.UUID, col, itemID string, expectedVersion int64) error {
	hasItem := sq.Expr("TRUE")
	if itemID != "" {
		hasItem = sq.Expr(col+" @> jsonb_build_array(jsonb_build_object('itemId', ?::text))", itemID)
	}

	query, args, err := psql.Select("version").
		Column(sq.Alias(hasItem, "has_item")).
		From(profileTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build profile query", err)
	}

	var version int64
	var found bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&version, &found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		return apperror.NewPersistence("failed to query profile", err)
	}

	if !found {
		return apperror.NewNotFound(apperror.ResourceItem, itemID)
	}
	if expectedVersion != 0 && version != expectedVersion {
		return apperror.NewVersionConflict(apperror.ResourceProfile, expectedVersion)
	}
	return apperror.NewPersistence("profile update matched no row", nil)
}

func (r *postgresProfileRepo) SetImageThumbnail(ctx context.Context, userID uuid.UUID, publicID, thumbnailURL string) (*profile.Profile, error) {
	builder := psql.Update(profileTable).
		Set("image", sq.Expr("jsonb_set(image, '{thumbnailUrl}', to_jsonb(?::text))", thumbnailURL)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("image->>'publicId' = ?", publicID)).
		Suffix(returningProfile)

	p, err := r.execProfileUpdate(ctx, builder)
	if errors.Is(err, pgx.ErrNoRows) {
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
