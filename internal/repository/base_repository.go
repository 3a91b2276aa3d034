package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// BaseRepository defines common CRUD operations.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id string, dest *T) error
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id string) error
}

type baseRepository[T any] struct {
	db     *gorm.DB
	entity string
}

// NewBaseRepository returns CRUD operations for T. entity names T in error messages.
func NewBaseRepository[T any](db *gorm.DB, entity string) BaseRepository[T] {
	return &baseRepository[T]{db: db, entity: entity}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return translate(err, "create "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id string, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.NotFound(r.entity)
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) Update(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Save(obj).Error; err != nil {
		return translate(err, "update "+r.entity+" failed")
	}
	return nil
}

// Delete removes the row. Deleting a missing row is not an error.
func (r *baseRepository[T]) Delete(ctx context.Context, id string) error {
	var t T
	if err := r.db.WithContext(ctx).Delete(&t, "id = ?", id).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete "+r.entity+" failed")
	}
	return nil
}

// updateAndReload applies cols to the row with the given id and reads it back.
func updateAndReload[T any](ctx context.Context, db *gorm.DB, entity, id string, cols map[string]any, dest *T) error {
	var zero T
	if len(cols) > 0 {
		res := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return translate(res.Error, "update "+entity+" failed")
		}
		if res.RowsAffected == 0 {
			return appErr.NotFound(entity)
		}
	}
	if err := db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.NotFound(entity)
		}
		return appErr.Wrap(err, appErr.CodeInternal, "reload "+entity+" failed")
	}
	return nil
}

// translate maps driver errors onto application codes; anything unrecognised is internal.
func translate(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return appErr.Wrap(err, appErr.CodeConflict, "record already exists").WithMeta("constraint", pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return appErr.Wrap(err, appErr.CodeNotFound, "referenced record not found").WithMeta("constraint", pgErr.ConstraintName)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appErr.Wrap(err, appErr.CodeConflict, "record already exists")
	}
	return appErr.Wrap(err, appErr.CodeInternal, message)
}
