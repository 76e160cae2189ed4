package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-backend/pkg/db/pagination"
	"workshop-backend/pkg/errutil"
	"workshop-backend/pkg/gen"
	"workshop-backend/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%03d", s.n)
}

func newTestCatalog(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, Models()...)
	return newService(db, &seqIDs{}), db
}

func TestNewServiceUsesSnowflakeIDs(t *testing.T) {
	db := testutil.NewTestDB(t, Models()...)
	node, err := gen.NewSnowflakeNodeWithID(3)
	require.NoError(t, err)

	svc := NewService(ServiceParams{DB: db, Node: node})

	brand, err := svc.Brands.Create(context.Background(), &VehicleBrand{BrandName: "Toyota"})
	require.NoError(t, err)
	require.NotEmpty(t, brand.Oid)

	got, err := svc.Brands.Get(context.Background(), brand.Oid)
	require.NoError(t, err)
	require.Equal(t, "Toyota", got.BrandName)
}

func TestBrandCRUD(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	created, err := svc.Brands.Create(ctx, &VehicleBrand{Oid: "ignored", BrandName: "Toyota"})
	require.NoError(t, err)
	require.Equal(t, "id-001", created.Oid)

	updated, err := svc.Brands.Update(ctx, created.Oid, map[string]any{"BrandName": "Lexus"})
	require.NoError(t, err)
	require.Equal(t, "Lexus", updated.BrandName)

	// unchanged values are not a miss
	_, err = svc.Brands.Update(ctx, created.Oid, map[string]any{"BrandName": "Lexus"})
	require.NoError(t, err)

	require.NoError(t, svc.Brands.Delete(ctx, created.Oid))

	_, err = svc.Brands.Get(ctx, created.Oid)
	require.True(t, errutil.IsCode(err, errutil.StatusNotFound))

	err = svc.Brands.Delete(ctx, created.Oid)
	require.True(t, errutil.IsCode(err, errutil.StatusNotFound))
}

func TestCreateValidation(t *testing.T) {
	svc, db := newTestCatalog(t)
	ctx := context.Background()

	_, err := svc.Brands.Create(ctx, &VehicleBrand{BrandName: "  "})
	require.True(t, errutil.IsCode(err, errutil.StatusValidationFailed))

	_, err = svc.Models.Create(ctx, &VehicleModel{VehicleModelName: "Avanza"})
	require.True(t, errutil.IsCode(err, errutil.StatusValidationFailed))

	var count int64
	require.NoError(t, db.Model(&VehicleModel{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateRejectsUnknownFields(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	created, err := svc.Types.Create(ctx, &VehicleType{TypeName: "MPV"})
	require.NoError(t, err)

	_, err = svc.Types.Update(ctx, created.Oid, map[string]any{})
	require.True(t, errutil.IsCode(err, errutil.StatusValidationFailed))

	_, err = svc.Types.Update(ctx, created.Oid, map[string]any{"Oid": "x", "Color": "red", "Description": "ok"})
	require.True(t, errutil.IsCode(err, errutil.StatusValidationFailed))

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Details, 2)
	require.Equal(t, "Color", be.Details[0].Field)
	require.Equal(t, "Oid", be.Details[1].Field)

	_, err = svc.Types.Update(ctx, "missing", map[string]any{"Description": "x"})
	require.True(t, errutil.IsCode(err, errutil.StatusNotFound))
}

func TestListPaginatesAndFilters(t *testing.T) {
	svc, db := newTestCatalog(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		brand := "b1"
		if i%2 == 0 {
			brand = "b2"
		}
		require.NoError(t, db.Create(&VehicleModel{
			Oid:              fmt.Sprintf("m%d", i),
			VehicleModelName: fmt.Sprintf("Model %d", i),
			Brand:            brand,
		}).Error)
	}

	page, err := svc.Models.List(ctx, nil, pagination.Pagination{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "m3", page.Items[0].Oid)
	require.Equal(t, int64(5), page.Pagination.Total)
	require.Equal(t, int64(3), page.Pagination.Pages)

	page, err = svc.Models.List(ctx, &VehicleModel{Brand: "b2"}, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "m2", page.Items[0].Oid)
	require.Equal(t, pagination.DefaultLimit, page.Pagination.Limit)

	page, err = svc.Models.List(ctx, &VehicleModel{Brand: "none"}, pagination.Pagination{})
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
	require.Zero(t, page.Pagination.Pages)
}

func TestReadOnlyResources(t *testing.T) {
	svc, db := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&Customer{Oid: "c1", FirstName: "Budi"}).Error)

	got, err := svc.Customers.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Budi", got.FirstName)

	_, err = svc.Customers.Create(ctx, &Customer{FirstName: "Ani"})
	require.True(t, errutil.IsCode(err, errutil.StatusNotImplemented))

	_, err = svc.Customers.Update(ctx, "c1", map[string]any{"FirstName": "Ani"})
	require.True(t, errutil.IsCode(err, errutil.StatusValidationFailed))

	_, err = svc.Dealers.Get(ctx, " ")
	require.True(t, errutil.IsCode(err, errutil.StatusNotFound))
}
