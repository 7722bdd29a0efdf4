package selection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tableside/internal/domain"
	"tableside/internal/selection"
	"tableside/internal/storage"
)

var (
	bistro   = domain.Restaurant{ID: 1, Name: "Bistro"}
	izakaya  = domain.Restaurant{ID: 2, Name: "Izakaya"}
	taqueria = domain.Restaurant{ID: 3, Name: "Taqueria"}
)

func TestSetRestaurants_EmptyListClearsSelection(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())

	store.SetRestaurants(ctx, []domain.Restaurant{bistro})
	assert.NotNil(t, store.CurrentRestaurant())

	store.SetRestaurants(ctx, nil)
	assert.Nil(t, store.CurrentRestaurant())
}

func TestSetRestaurants_SingleEntryAutoSelects(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())

	store.SetRestaurants(ctx, []domain.Restaurant{bistro})

	current := store.CurrentRestaurant()
	assert.NotNil(t, current)
	assert.Equal(t, bistro.ID, current.ID)
}

func TestSetRestaurants_KeepsValidCurrentSelection(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())

	store.SetCurrentRestaurant(ctx, &bistro)
	store.SetRestaurants(ctx, []domain.Restaurant{bistro, izakaya})

	current := store.CurrentRestaurant()
	assert.NotNil(t, current)
	assert.Equal(t, bistro.ID, current.ID)
}

func TestSetRestaurants_DroppedCurrentFallsBackToPersisted(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()
	store := selection.NewStore(backing)

	// A previous session picked the izakaya.
	store.SetCurrentRestaurant(ctx, &izakaya)

	fresh := selection.NewStore(backing)
	fresh.SetRestaurants(ctx, []domain.Restaurant{bistro, izakaya, taqueria})

	current := fresh.CurrentRestaurant()
	assert.NotNil(t, current)
	assert.Equal(t, izakaya.ID, current.ID)
}

func TestSetRestaurants_NoMatchLeavesUnset(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())

	store.SetRestaurants(ctx, []domain.Restaurant{bistro, izakaya})

	assert.Nil(t, store.CurrentRestaurant())
	assert.Len(t, store.Restaurants(), 2)
}

func TestSetRestaurants_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())
	list := []domain.Restaurant{bistro, izakaya}

	store.SetCurrentRestaurant(ctx, &izakaya)
	store.SetRestaurants(ctx, list)
	first := store.CurrentRestaurant()

	store.SetRestaurants(ctx, list)
	store.SetRestaurants(ctx, list)
	second := store.CurrentRestaurant()

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}

func TestClearSelection_RemovesPersistedID(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()
	store := selection.NewStore(backing)

	store.SetCurrentRestaurant(ctx, &bistro)
	store.ClearSelection(ctx)

	assert.Nil(t, store.CurrentRestaurant())

	// Nothing left to restore for a later session.
	fresh := selection.NewStore(backing)
	fresh.SetRestaurants(ctx, []domain.Restaurant{bistro, izakaya})
	assert.Nil(t, fresh.CurrentRestaurant())
}

func TestOnChange_FiresOnSelectionChange(t *testing.T) {
	ctx := context.Background()
	store := selection.NewStore(storage.NewMemoryStore())

	changes := 0
	store.OnChange(func() { changes++ })

	store.SetCurrentRestaurant(ctx, &bistro)
	assert.Equal(t, 1, changes)
}
