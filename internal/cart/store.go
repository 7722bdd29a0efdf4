package cart

import (
	"context"
	"errors"
	"sync"

	"tableside/internal/api"
	"tableside/internal/domain"
)

var (
	ErrNoTableToken = errors.New("cart has no table token")
	ErrEmptyCart    = errors.New("cart is empty")
)

// OrdersAPI is the slice of the REST client the cart store depends on.
type OrdersAPI interface {
	CreateGuestOrder(ctx context.Context, restaurantID int, req api.GuestOrderRequest) (*domain.Order, error)
}

// Store holds the guest's working order between menu screens and submission.
// It is deliberately not persisted: a reload starts with an empty cart so a
// guest can never submit against a menu that changed under them.
type Store struct {
	mu           sync.Mutex
	orders       OrdersAPI
	items        []domain.CartItem
	tableToken   string
	restaurantID int
	listeners    []func()
}

func NewStore(orders OrdersAPI) *Store {
	return &Store{orders: orders}
}

func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SetTableToken binds the cart to a table-scoped ordering session. Must be
// set before a guest checkout; the token is how the unauthenticated order
// endpoint identifies the table/restaurant pair.
func (s *Store) SetTableToken(token string, restaurantID int) {
	s.mu.Lock()
	s.tableToken = token
	s.restaurantID = restaurantID
	s.mu.Unlock()
	s.notify()
}

func (s *Store) TableToken() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableToken, s.restaurantID
}

// AddItem merges into an existing line for the same menu item: quantities
// sum, and notes are overwritten only when the new notes are non-empty.
func (s *Store) AddItem(item domain.MenuItem, quantity int, notes string) {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].MenuItem.ID == item.ID {
			s.items[i].Quantity += quantity
			if notes != "" {
				s.items[i].Notes = notes
			}
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, domain.CartItem{MenuItem: item, Quantity: quantity, Notes: notes})
	}
	s.mu.Unlock()
	s.notify()
}

// RemoveItem drops the matching line. Absent ids are a no-op, not an error.
func (s *Store) RemoveItem(menuItemID int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].MenuItem.ID == menuItemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateQuantity replaces the line's quantity. Zero or negative removes the
// line outright; a cart never holds a zero-quantity entry.
func (s *Store) UpdateQuantity(menuItemID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(menuItemID)
		return
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].MenuItem.ID == menuItemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) UpdateNotes(menuItemID int, notes string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].MenuItem.ID == menuItemID {
			s.items[i].Notes = notes
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.items {
		total += item.MenuItem.Price * float64(item.Quantity)
	}
	return total
}

// Checkout submits the cart through the guest order endpoint and clears it
// on success only. A failed submit leaves the cart intact for another try.
func (s *Store) Checkout(ctx context.Context, orderType string) (*domain.Order, error) {
	s.mu.Lock()
	if s.tableToken == "" {
		s.mu.Unlock()
		return nil, ErrNoTableToken
	}
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}

	req := api.GuestOrderRequest{
		Token:     s.tableToken,
		OrderType: orderType,
		Items:     make([]api.GuestOrderItem, 0, len(s.items)),
	}
	for _, item := range s.items {
		req.Items = append(req.Items, api.GuestOrderItem{
			MenuItemID: item.MenuItem.ID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		})
	}
	restaurantID := s.restaurantID
	s.mu.Unlock()

	order, err := s.orders.CreateGuestOrder(ctx, restaurantID, req)
	if err != nil {
		return nil, err
	}

	s.Clear()
	return order, nil
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
