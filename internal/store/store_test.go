package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pcforge-backend/pkg/db"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	client, err := db.NewSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(ctx, models.All()...))
	st := NewGorm(client)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func backends(t *testing.T) map[string]*Store {
	return map[string]*Store{
		"memory": NewMemory(),
		"sqlite": newSQLiteStore(t),
	}
}

func TestCollectionIDsAreSequentialAndNotReused(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := st.Categories.Create(ctx, models.Category{Name: "Processors", Slug: "processors"})
			require.NoError(t, err)
			second, err := st.Categories.Create(ctx, models.Category{Name: "Memory", Slug: "memory"})
			require.NoError(t, err)
			assert.Equal(t, int64(1), first.ID)
			assert.Equal(t, int64(2), second.ID)

			ok, err := st.Categories.Delete(ctx, second.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			third, err := st.Categories.Create(ctx, models.Category{Name: "Storage", Slug: "storage"})
			require.NoError(t, err)
			assert.Equal(t, int64(3), third.ID)
		})
	}
}

func TestCollectionCreateIgnoresCallerID(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			created, err := st.Categories.Create(context.Background(), models.Category{ID: 42, Name: "GPU", Slug: "gpu"})
			require.NoError(t, err)
			assert.Equal(t, int64(1), created.ID)
		})
	}
}

func TestCollectionGetUpdateDelete(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item, err := st.CartItems.Create(ctx, models.CartItem{ProductID: 1, Quantity: 2, SessionID: "s1"})
			require.NoError(t, err)

			got, err := st.CartItems.Get(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, got.Quantity)

			updated, err := st.CartItems.Update(ctx, item.ID, func(ci *models.CartItem) {
				ci.Quantity = 5
				ci.ID = 99
			})
			require.NoError(t, err)
			assert.Equal(t, item.ID, updated.ID)
			assert.Equal(t, 5, updated.Quantity)

			_, err = st.CartItems.Update(ctx, 1000, func(ci *models.CartItem) { ci.Quantity = 1 })
			assert.ErrorIs(t, err, ErrNotFound)

			all, err := st.CartItems.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1, "update of unknown id must not create")

			ok, err := st.CartItems.Delete(ctx, 1000)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = st.CartItems.Delete(ctx, item.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			_, err = st.CartItems.Get(ctx, item.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCollectionListFiltersInIDOrder(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, session := range []string{"a", "b", "a", "a"} {
				_, err := st.CartItems.Create(ctx, models.CartItem{ProductID: int64(i + 1), Quantity: 1, SessionID: session})
				require.NoError(t, err)
			}

			items, err := st.CartItems.List(ctx, Where("session_id", "a", func(ci *models.CartItem) bool { return ci.SessionID == "a" }))
			require.NoError(t, err)
			require.Len(t, items, 3)
			assert.Equal(t, []int64{1, 3, 4}, []int64{items[0].ID, items[1].ID, items[2].ID})

			none, err := st.CartItems.List(ctx, Where("session_id", "zzz", func(ci *models.CartItem) bool { return ci.SessionID == "zzz" }))
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestMemoryCollectionConcurrentCreates(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = st.CartItems.Create(ctx, models.CartItem{ProductID: int64(n), Quantity: 1, SessionID: "s"})
		}(i)
	}
	wg.Wait()

	items, err := st.CartItems.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 50)
	seen := map[int64]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
}

func TestCollectionReturnsIndependentCopies(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			specs := types.Specifications{"cores": "8"}
			product, err := st.Products.Create(ctx, models.Product{Name: "CPU", Specifications: specs})
			require.NoError(t, err)
			specs["cores"] = "caller"
			product.Specifications["cores"] = "returned"

			got, err := st.Products.Get(ctx, product.ID)
			require.NoError(t, err)
			got.Specifications["cores"] = "mutated"

			listed, err := st.Products.List(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, "8", listed[0].Specifications["cores"])

			productID := product.ID
			build, err := st.Builds.Create(ctx, models.PCBuild{
				Purpose: "gaming",
				Recommendations: types.BuildRecommendation{
					Components: []types.BuildComponent{{Name: "CPU", Price: "369.99", ProductID: &productID}},
				},
				TotalPrice: "369.99",
			})
			require.NoError(t, err)

			fetched, err := st.Builds.Get(ctx, build.ID)
			require.NoError(t, err)
			fetched.Recommendations.Components[0].Price = "0.00"
			*fetched.Recommendations.Components[0].ProductID = 999

			again, err := st.Builds.Get(ctx, build.ID)
			require.NoError(t, err)
			assert.Equal(t, "369.99", again.Recommendations.Components[0].Price)
			assert.Equal(t, productID, *again.Recommendations.Components[0].ProductID)
		})
	}
}

func TestMemoryUpdateKeepsNoReferenceToPatchedRecord(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	product, err := st.Products.Create(ctx, models.Product{Name: "CPU", Specifications: types.Specifications{"cores": "8"}})
	require.NoError(t, err)

	var held types.Specifications
	_, err = st.Products.Update(ctx, product.ID, func(p *models.Product) {
		p.Specifications["cores"] = "16"
		held = p.Specifications
	})
	require.NoError(t, err)
	held["cores"] = "mutated after update"

	got, err := st.Products.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "16", got.Specifications["cores"])
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	_, err := a.Categories.Create(context.Background(), models.Category{Name: "x", Slug: "x"})
	require.NoError(t, err)

	list, err := b.Categories.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStorePingAndClose(t *testing.T) {
	mem := NewMemory()
	assert.NoError(t, mem.Ping(context.Background()))
	assert.NoError(t, mem.Close())

	sql := newSQLiteStore(t)
	assert.NoError(t, sql.Ping(context.Background()))
}
