package repository

import (
	"context"
	"testing"

	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomers(t *testing.T, db *testDB) {
	ctx := context.Background()
	customers := []*CustomerEntity{
		{ID: 1, Name: "Budi", Phone: "081234567890", ODP: "ODP-01", IsActive: true},
		{ID: 2, Name: "Sari", Phone: "0", ODP: "ODP-01", IsActive: true},
		{ID: 3, Name: "Agus", Phone: "081234567891", ODP: "ODP-02", IsActive: true},
		{ID: 4, Name: "Dewi", Phone: "081234567892", ODP: "ODP-03", IsActive: false},
	}
	for _, c := range customers {
		require.NoError(t, db.Write(ctx).Create(c).Error)
	}
}

func TestCustomerRepository_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db.DB)
	ctx := context.Background()
	seedCustomers(t, db)

	t.Run("existing customer", func(t *testing.T) {
		c, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Budi", c.Name)
		assert.Equal(t, "081234567890", c.Phone)
		assert.Equal(t, "ODP-01", c.ODP)
	})

	t.Run("missing customer", func(t *testing.T) {
		c, err := repo.Get(ctx, 999)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
		assert.Nil(t, c)
	})
}

func TestCustomerRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db.DB)
	ctx := context.Background()
	seedCustomers(t, db)

	t.Run("no filter returns everyone", func(t *testing.T) {
		customers, err := repo.List(ctx, model.CustomerFilter{})
		require.NoError(t, err)
		assert.Len(t, customers, 4)
	})

	t.Run("active only", func(t *testing.T) {
		customers, err := repo.List(ctx, model.CustomerFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, customers, 3)
		for _, c := range customers {
			assert.True(t, c.IsActive)
		}
	})

	t.Run("by ids intersected with active", func(t *testing.T) {
		customers, err := repo.List(ctx, model.CustomerFilter{
			ActiveOnly: true,
			IDs:        []int64{1, 4},
		})
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, int64(1), customers[0].ID)
	})

	t.Run("by single odp", func(t *testing.T) {
		odp := "ODP-01"
		customers, err := repo.List(ctx, model.CustomerFilter{ActiveOnly: true, ODP: &odp})
		require.NoError(t, err)
		assert.Len(t, customers, 2)
	})

	t.Run("by odp membership", func(t *testing.T) {
		customers, err := repo.List(ctx, model.CustomerFilter{
			ActiveOnly: true,
			ODPIn:      []string{"ODP-01", "ODP-02"},
		})
		require.NoError(t, err)
		assert.Len(t, customers, 3)
	})

	t.Run("odp without members", func(t *testing.T) {
		odp := "ODP-99"
		customers, err := repo.List(ctx, model.CustomerFilter{ActiveOnly: true, ODP: &odp})
		require.NoError(t, err)
		assert.Empty(t, customers)
	})
}
