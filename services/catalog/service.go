package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-backend/pkg/db/option"
	"workshop-backend/pkg/db/pagination"
	"workshop-backend/pkg/errutil"
	"workshop-backend/pkg/gen"
	"workshop-backend/pkg/repository"
)

// IDGenerator issues ids for new records.
type IDGenerator interface {
	NewID() string
}

// Resource is the CRUD service over one reference table.
type Resource[T any] struct {
	name     string
	key      string
	repo     repository.Repository[T]
	ids      IDGenerator
	writable map[string]bool
	assignID func(*T, string)
	validate func(*T) error
}

type Page[T any] struct {
	Items      []*T
	Pagination pagination.PageInfo
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) List(ctx context.Context, filter *T, page pagination.Pagination) (*Page[T], error) {
	page = page.Normalize()

	total, err := r.repo.Count(ctx, filter)
	if err != nil {
		return nil, r.persistence("list", err)
	}

	items := make([]*T, 0)
	if total > 0 {
		items, err = r.repo.Find(ctx, filter,
			option.WithSortBy(option.QuerySortBy{SortBy: r.key, OrderBy: "ASC", Allow: map[string]bool{r.key: true}}),
			option.ApplyPagination(page),
		)
		if err != nil {
			return nil, r.persistence("list", err)
		}
	}

	return &Page[T]{Items: items, Pagination: pagination.BuildPageInfo(page, total)}, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.NotFound(r.name+" not found", nil)
	}

	var query T
	r.assignID(&query, id)

	item, err := r.repo.FindOne(ctx, &query)
	if err != nil {
		return nil, r.persistence("get", err)
	}
	if item == nil {
		return nil, errutil.NotFound(r.name+" not found", nil)
	}
	return item, nil
}

// Create assigns a fresh id and stores the record.
func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	if r.ids == nil {
		return nil, errutil.New(errutil.StatusNotImplemented, r.name+" is read only")
	}
	if r.validate != nil {
		if err := r.validate(item); err != nil {
			return nil, err
		}
	}

	r.assignID(item, r.ids.NewID())
	if err := r.repo.Create(ctx, item); err != nil {
		return nil, r.persistence("create", err)
	}
	return item, nil
}

// Update applies only the provided fields. Unknown or read-only fields are rejected.
func (r *Resource[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if len(fields) == 0 {
		return nil, errutil.ValidationFailed("No fields to update", nil)
	}

	var details []errutil.Detail
	for field := range fields {
		if !r.writable[field] {
			details = append(details, errutil.Detail{Field: field, Message: "cannot be updated"})
		}
	}
	if len(details) > 0 {
		sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
		return nil, errutil.ValidationFailed("Invalid update fields", nil, errutil.WithDetails(details...))
	}

	if err := r.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound(r.name+" not found", nil)
		}
		return nil, r.persistence("update", err)
	}

	return r.Get(ctx, id)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errutil.NotFound(r.name+" not found", nil)
		}
		return r.persistence("delete", err)
	}
	return nil
}

func (r *Resource[T]) persistence(op string, err error) error {
	zap.L().Error("[Catalog] "+op+" failed", zap.String("resource", r.name), zap.Error(err))
	return errutil.Persistence(fmt.Sprintf("failed to %s %s", op, strings.ToLower(r.name)), err)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errutil.ValidationFailed(field+" is required", nil, errutil.WithDetails(errutil.Detail{Field: field, Message: "is required"}))
	}
	return nil
}

func columns(names ...string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

type Service struct {
	Brands    *Resource[VehicleBrand]
	Models    *Resource[VehicleModel]
	Types     *Resource[VehicleType]
	Customers *Resource[Customer]
	Dealers   *Resource[Dealer]
	Units     *Resource[VehicleUnit]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *gen.SnowflakeNode
}

func NewService(p ServiceParams) *Service {
	return newService(p.DB, p.Node)
}

func newService(db *gorm.DB, ids IDGenerator) *Service {
	return &Service{
		Brands: &Resource[VehicleBrand]{
			name:     "Vehicle brand",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[VehicleBrand](db, "Oid"),
			ids:      ids,
			writable: columns("BrandName"),
			assignID: func(b *VehicleBrand, id string) { b.Oid = id },
			validate: func(b *VehicleBrand) error { return required("BrandName", b.BrandName) },
		},
		Models: &Resource[VehicleModel]{
			name:     "Vehicle model",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[VehicleModel](db, "Oid"),
			ids:      ids,
			writable: columns("VehicleModelName", "Brand", "Category"),
			assignID: func(m *VehicleModel, id string) { m.Oid = id },
			validate: func(m *VehicleModel) error {
				if err := required("VehicleModelName", m.VehicleModelName); err != nil {
					return err
				}
				return required("Brand", m.Brand)
			},
		},
		Types: &Resource[VehicleType]{
			name:     "Vehicle type",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[VehicleType](db, "Oid"),
			ids:      ids,
			writable: columns("TypeName", "Description"),
			assignID: func(v *VehicleType, id string) { v.Oid = id },
			validate: func(v *VehicleType) error { return required("TypeName", v.TypeName) },
		},
		Customers: &Resource[Customer]{
			name:     "Customer",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[Customer](db, "Oid"),
			assignID: func(c *Customer, id string) { c.Oid = id },
		},
		Dealers: &Resource[Dealer]{
			name:     "Dealer",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[Dealer](db, "Oid"),
			assignID: func(d *Dealer, id string) { d.Oid = id },
		},
		Units: &Resource[VehicleUnit]{
			name:     "Vehicle unit",
			key:      "Oid",
			repo:     repository.ProvideStoreWithKey[VehicleUnit](db, "Oid"),
			assignID: func(u *VehicleUnit, id string) { u.Oid = id },
		},
	}
}
