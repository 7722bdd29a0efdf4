package selection

import (
	"context"
	"log"
	"strconv"
	"sync"

	"tableside/internal/domain"
	"tableside/internal/storage"
)

const storageKey = "current_restaurant_id"

// Store tracks which restaurant a multi-restaurant staff user is operating
// against. The current selection is persisted by id only and re-resolved
// against the authoritative list on every refetch, so it can never drift
// from what the server says exists.
type Store struct {
	mu          sync.Mutex
	storage     storage.Store
	current     *domain.Restaurant
	restaurants []domain.Restaurant
	listeners   []func()
}

func NewStore(store storage.Store) *Store {
	return &Store{storage: store}
}

func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) CurrentRestaurant() *domain.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) Restaurants() []domain.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	restaurants := make([]domain.Restaurant, len(s.restaurants))
	copy(restaurants, s.restaurants)
	return restaurants
}

// SetCurrentRestaurant sets the pointer and persists the id; nil clears both.
func (s *Store) SetCurrentRestaurant(ctx context.Context, restaurant *domain.Restaurant) {
	s.mu.Lock()
	s.current = restaurant
	s.mu.Unlock()

	var err error
	if restaurant == nil {
		err = s.storage.Delete(ctx, storageKey)
	} else {
		err = s.storage.Set(ctx, storageKey, strconv.Itoa(restaurant.ID))
	}
	if err != nil {
		log.Printf("[selection] failed to persist restaurant id: %v", err)
	}
	s.notify()
}

func (s *Store) ClearSelection(ctx context.Context) {
	s.SetCurrentRestaurant(ctx, nil)
}

// SetRestaurants installs the latest authoritative list and re-resolves the
// selection: keep a still-valid current, auto-pick a sole entry, otherwise
// try the persisted id, otherwise leave unset for the user to choose.
// Repeated calls with the same list are idempotent.
func (s *Store) SetRestaurants(ctx context.Context, list []domain.Restaurant) {
	// Storage reads stay outside the mutex, like every other path here.
	persisted, hasPersisted := s.persistedID(ctx)

	s.mu.Lock()
	s.restaurants = make([]domain.Restaurant, len(list))
	copy(s.restaurants, list)

	if len(list) == 0 {
		// The persisted id survives a transiently empty fetch on purpose.
		s.current = nil
		s.mu.Unlock()
		s.notify()
		return
	}

	if s.current != nil {
		if match := findByID(list, s.current.ID); match != nil {
			s.current = match
			s.mu.Unlock()
			s.notify()
			return
		}
	}

	if len(list) == 1 {
		only := list[0]
		s.current = &only
		s.mu.Unlock()
		if err := s.storage.Set(ctx, storageKey, strconv.Itoa(only.ID)); err != nil {
			log.Printf("[selection] failed to persist restaurant id: %v", err)
		}
		s.notify()
		return
	}

	if hasPersisted {
		if match := findByID(list, persisted); match != nil {
			s.current = match
			s.mu.Unlock()
			s.notify()
			return
		}
	}

	s.current = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) persistedID(ctx context.Context) (int, bool) {
	value, ok, err := s.storage.Get(ctx, storageKey)
	if err != nil {
		log.Printf("[selection] failed to read persisted restaurant id: %v", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return id, true
}

func findByID(list []domain.Restaurant, id int) *domain.Restaurant {
	for i := range list {
		if list[i].ID == id {
			match := list[i]
			return &match
		}
	}
	return nil
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
