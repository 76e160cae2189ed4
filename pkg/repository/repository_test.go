package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"workshop-backend/pkg/db/option"
	"workshop-backend/pkg/db/pagination"
	"workshop-backend/services/testutil"
)

type widget struct {
	ID    string `gorm:"primaryKey"`
	Name  string
	Score int
}

type legacyRow struct {
	Oid  string `gorm:"column:Oid;primaryKey"`
	Name string `gorm:"column:Name"`
}

func TestStoreCRUD(t *testing.T) {
	db := testutil.NewTestDB(t, &widget{})
	repo := ProvideStore[widget](db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &widget{ID: "w1", Name: "one", Score: 1}))
	require.NoError(t, repo.BatchCreate(ctx, []*widget{
		{ID: "w2", Name: "two", Score: 2},
		{ID: "w3", Name: "three", Score: 3},
	}))
	require.NoError(t, repo.BatchCreate(ctx, nil))

	got, err := repo.FindOne(ctx, &widget{ID: "w2"})
	require.NoError(t, err)
	require.Equal(t, "two", got.Name)

	missing, err := repo.FindOne(ctx, &widget{ID: "nope"})
	require.NoError(t, err)
	require.Nil(t, missing)

	total, err := repo.Count(ctx, nil, option.ApplyOperator(option.Condition{Field: "score", Operator: option.GTE, Value: 2}))
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	require.NoError(t, repo.Update(ctx, "w1", map[string]any{"name": "uno"}))
	got, err = repo.FindOne(ctx, &widget{ID: "w1"})
	require.NoError(t, err)
	require.Equal(t, "uno", got.Name)

	err = repo.Update(ctx, "nope", map[string]any{"name": "x"})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.Delete(ctx, "w3"))
	err = repo.Delete(ctx, "w3")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestStoreFindOptions(t *testing.T) {
	db := testutil.NewTestDB(t, &widget{})
	repo := ProvideStore[widget](db)
	ctx := context.Background()

	for _, w := range []*widget{{ID: "a", Score: 3}, {ID: "b", Score: 1}, {ID: "c", Score: 2}} {
		require.NoError(t, repo.Create(ctx, w))
	}

	items, err := repo.Find(ctx, nil,
		option.WithSortBy(option.QuerySortBy{SortBy: "score", OrderBy: "asc", Allow: map[string]bool{"score": true}}),
		option.ApplyPagination(pagination.Pagination{Page: 1, Limit: 2}),
	)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "b", items[0].ID)
	require.Equal(t, "c", items[1].ID)

	items, err = repo.Find(ctx, nil, option.ApplyOperator(option.Condition{Field: "id", Operator: option.IN, Value: []string{"a", "c"}}))
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestStoreWithKeyAndTrx(t *testing.T) {
	db := testutil.NewTestDB(t, &legacyRow{})
	repo := ProvideStoreWithKey[legacyRow](db, "Oid")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &legacyRow{Oid: "x1", Name: "first"}))
	require.NoError(t, repo.Update(ctx, "x1", map[string]any{"Name": "first"}))

	err := db.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTrx(tx)
		if err := txRepo.Create(ctx, &legacyRow{Oid: "x2", Name: "second"}); err != nil {
			return err
		}
		return errors.New("rollback")
	})
	require.Error(t, err)

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	require.Same(t, repo, repo.WithTrx(nil))

	require.NoError(t, repo.BatchUpdate(ctx, []*legacyRow{{Oid: "x1", Name: "renamed"}}))
	got, err := repo.FindOne(ctx, &legacyRow{Oid: "x1"})
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
}
