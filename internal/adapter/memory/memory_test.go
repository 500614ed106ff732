package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repliq/repliq/internal/polyval"
)

func TestStoreSaveAndLoadByDescriptor(t *testing.T) {
	store := NewStore()
	rec := polyval.NewMap()
	rec.Set("_id", polyval.String("1"))
	rec.Set("descriptor", polyval.Int32(42))
	require.NoError(t, store.Save(context.Background(), []polyval.Value{rec}))

	var found []polyval.Value
	err := store.LoadByDescriptor(context.Background(), "descriptor", []int32{42, 7}, func(v polyval.Value) {
		found = append(found, v)
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].Get("_id").AsString())
}

func TestStoreSaveUpsertsByID(t *testing.T) {
	store := NewStore()
	rec1 := polyval.NewMap()
	rec1.Set("_id", polyval.String("1"))
	rec1.Set("v", polyval.Int32(1))
	rec2 := polyval.NewMap()
	rec2.Set("_id", polyval.String("1"))
	rec2.Set("v", polyval.Int32(2))

	require.NoError(t, store.Save(context.Background(), []polyval.Value{rec1}))
	require.NoError(t, store.Save(context.Background(), []polyval.Value{rec2}))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, int32(2), store.All()[0].Get("v").AsInt32())
}
