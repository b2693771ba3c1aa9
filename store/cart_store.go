package store

import (
	"sync"

	"github.com/yashrajoria/storefront/models"

	"github.com/shopspring/decimal"
)

// CartSnapshot is the cart state handed to listeners after a mutation.
type CartSnapshot struct {
	Items   []models.CartItem
	Count   int
	Total   decimal.Decimal
	Version uint64
}

// CartStore holds the cart line items in insertion order, unique by product id.
// Quantities never drop below 1; an item leaves the cart only through Remove
// or Clear.
type CartStore struct {
	mu        sync.RWMutex
	items     []models.CartItem
	count     int
	version   uint64
	listeners map[int]func(CartSnapshot)
	nextID    int
}

func NewCartStore() *CartStore {
	return &CartStore{listeners: make(map[int]func(CartSnapshot))}
}

// Add increments the quantity of product if present, otherwise appends it
// with quantity 1. It returns the resulting quantity.
func (s *CartStore) Add(product models.Product) int {
	s.mu.Lock()
	qty := 1
	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity++
		qty = s.items[i].Quantity
	} else {
		s.items = append(s.items, models.CartItem{Product: product, Quantity: 1})
	}
	s.count++
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
	return qty
}

func (s *CartStore) Increase(productID int64) bool {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i].Quantity++
	s.count++
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Decrease lowers the quantity by one. An item at quantity 1 is left as is
// and Decrease reports false.
func (s *CartStore) Decrease(productID int64) bool {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 || s.items[i].Quantity <= 1 {
		s.mu.Unlock()
		return false
	}
	s.items[i].Quantity--
	s.count--
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

func (s *CartStore) Remove(productID int64) bool {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.count -= s.items[i].Quantity
	s.items = append(s.items[:i], s.items[i+1:]...)
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

func (s *CartStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.count = 0
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
}

// Deduct subtracts the quantities of ordered from the cart and drops lines
// that reach zero. Lines and units added after ordered was taken stay.
func (s *CartStore) Deduct(ordered []models.CartItem) {
	s.mu.Lock()
	for _, item := range ordered {
		i := s.indexOf(item.ID)
		if i < 0 {
			continue
		}
		n := min(item.Quantity, s.items[i].Quantity)
		s.items[i].Quantity -= n
		s.count -= n
		if s.items[i].Quantity < 1 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
	}
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
}

// Restore replaces the cart contents, merging duplicate ids and dropping
// items with a quantity below 1.
func (s *CartStore) Restore(items []models.CartItem) {
	s.mu.Lock()
	s.items = nil
	s.count = 0
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i := s.indexOf(item.ID); i >= 0 {
			s.items[i].Quantity += item.Quantity
		} else {
			s.items = append(s.items, item)
		}
		s.count += item.Quantity
	}
	snap, listeners := s.commit()
	s.mu.Unlock()

	notify(listeners, snap)
}

// Items returns a copy of the line items in insertion order.
func (s *CartStore) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItems()
}

// Count is the sum of all quantities (badge count).
func (s *CartStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *CartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *CartStore) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CartTotal(s.items)
}

func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe registers fn to run after every mutation. Listeners run outside
// the store lock, in the mutating goroutine.
func (s *CartStore) Subscribe(fn func(CartSnapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *CartStore) indexOf(productID int64) int {
	for i := range s.items {
		if s.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (s *CartStore) copyItems() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartStore) snapshot() CartSnapshot {
	return CartSnapshot{
		Items:   s.copyItems(),
		Count:   s.count,
		Total:   models.CartTotal(s.items),
		Version: s.version,
	}
}

// commit bumps the version; callers hold the write lock.
func (s *CartStore) commit() (CartSnapshot, []func(CartSnapshot)) {
	s.version++
	if len(s.listeners) == 0 {
		return CartSnapshot{}, nil
	}
	listeners := make([]func(CartSnapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return s.snapshot(), listeners
}

func notify(listeners []func(CartSnapshot), snap CartSnapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
