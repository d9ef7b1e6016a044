package services

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"cargodesk/internal/errs"
	"cargodesk/internal/events"

	"gorm.io/gorm"
)

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id uint64, includes ...string) (*T, error)
	List(ctx context.Context, page Page, filters map[string]string, includes ...string) ([]T, Pagination, error)
	Update(ctx context.Context, id uint64, entity *T) error
	Delete(ctx context.Context, id uint64) error
}

// DeleteGuard vetoes a delete, typically because other rows still reference it.
type DeleteGuard func(ctx context.Context, tx *gorm.DB, id uint64) error

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db          *gorm.DB
	modelType   T
	name        string
	protected   []string
	filterable  []string
	unique      []string
	deleteGuard DeleteGuard
}

type Option[T any] func(*BaseServiceImpl[T])

// WithProtectedFields keeps columns untouched by Update.
func WithProtectedFields[T any](columns ...string) Option[T] {
	return func(s *BaseServiceImpl[T]) { s.protected = append(s.protected, columns...) }
}

// WithFilterable whitelists columns that List accepts as equality filters.
func WithFilterable[T any](columns ...string) Option[T] {
	return func(s *BaseServiceImpl[T]) { s.filterable = append(s.filterable, columns...) }
}

// WithUnique makes Create and Update report duplicates on columns as Conflict.
func WithUnique[T any](columns ...string) Option[T] {
	return func(s *BaseServiceImpl[T]) { s.unique = append(s.unique, columns...) }
}

func WithDeleteGuard[T any](guard DeleteGuard) Option[T] {
	return func(s *BaseServiceImpl[T]) { s.deleteGuard = guard }
}

func NewBaseService[T any](db *gorm.DB, model T, opts ...Option[T]) *BaseServiceImpl[T] {
	s := &BaseServiceImpl[T]{
		db:        db,
		modelType: model,
		name:      GormTableName(db, model),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

func (s *BaseServiceImpl[T]) applyIncludes(query *gorm.DB, includes ...string) *gorm.DB {
	for _, include := range includes {
		query = query.Preload(include)
	}
	return query
}

// checkUnique reports Conflict if another row already holds a unique value of entity.
func (s *BaseServiceImpl[T]) checkUnique(ctx context.Context, tx *gorm.DB, entity *T, excludeID uint64) error {
	if len(s.unique) == 0 {
		return nil
	}

	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(entity); err != nil {
		return errs.Internal("failed to parse model", err)
	}
	rv := reflect.ValueOf(entity).Elem()

	for _, column := range s.unique {
		field := stmt.Schema.LookUpField(column)
		if field == nil {
			continue
		}
		value, zero := field.ValueOf(ctx, rv)
		if zero {
			continue
		}

		var count int64
		query := tx.Model(new(T)).Where(fmt.Sprintf("%s = ?", column), value)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return errs.Internal("failed to check uniqueness", err)
		}
		if count > 0 {
			return errs.Conflict("%s with %s %v already exists", s.name, column, value)
		}
	}
	return nil
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUnique(ctx, tx, entity, 0); err != nil {
			return err
		}
		if err := tx.Create(entity).Error; err != nil {
			return errs.Internal(fmt.Sprintf("failed to create %s", s.name), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.created", s.name), entity)
	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id uint64, includes ...string) (*T, error) {
	var entity T
	query := s.applyIncludes(s.db.WithContext(ctx), includes...)
	if err := query.First(&entity, id).Error; err != nil {
		return nil, lookupErr(err, s.name)
	}
	return &entity, nil
}

func (s *BaseServiceImpl[T]) List(ctx context.Context, page Page, filters map[string]string, includes ...string) ([]T, Pagination, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(new(T))
	for key, value := range filters {
		if !slices.Contains(s.filterable, key) {
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal(fmt.Sprintf("failed to count %s", s.name), err)
	}

	query = s.applyIncludes(query, includes...)
	if err := query.Order("id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&entities).Error; err != nil {
		return nil, Pagination{}, errs.Internal(fmt.Sprintf("failed to list %s", s.name), err)
	}

	return entities, page.Result(total), nil
}

// Update replaces every column except id, created_at and protected ones.
func (s *BaseServiceImpl[T]) Update(ctx context.Context, id uint64, entity *T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.First(&existing, id).Error; err != nil {
			return lookupErr(err, s.name)
		}
		if err := s.checkUnique(ctx, tx, entity, id); err != nil {
			return err
		}

		omit := append([]string{"id", "created_at"}, s.protected...)
		result := tx.Model(&existing).Select("*").Omit(omit...).Updates(entity)
		if result.Error != nil {
			return errs.Internal(fmt.Sprintf("failed to update %s", s.name), result.Error)
		}
		return tx.First(entity, id).Error
	})
	if err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.updated", s.name), entity)
	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.First(&existing, id).Error; err != nil {
			return lookupErr(err, s.name)
		}
		if s.deleteGuard != nil {
			if err := s.deleteGuard(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return errs.Internal(fmt.Sprintf("failed to delete %s", s.name), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.deleted", s.name), id)
	return nil
}

// ReferencedBy builds a DeleteGuard that refuses deletes while column in
// the table of model still points at the row.
func ReferencedBy(model interface{}, column, message string) DeleteGuard {
	return func(ctx context.Context, tx *gorm.DB, id uint64) error {
		var count int64
		if err := tx.Model(model).Where(fmt.Sprintf("%s = ?", column), id).Count(&count).Error; err != nil {
			return errs.Internal("failed to check references", err)
		}
		if count > 0 {
			return errs.Conflict("%s", message)
		}
		return nil
	}
}
