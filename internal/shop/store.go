// Package shop is a small in-memory shop served through a compiled registry:
// users browse products and purchase them.
package shop

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("shop: not found")
	ErrInsufficientStock = errors.New("shop: insufficient stock")
	ErrInvalidQuantity   = errors.New("shop: quantity must be positive")
)

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

func (*User) TypeTag() string { return "User" }

type Product struct {
	ID    string
	Title string
	// Price is in cents.
	Price int
	Stock int
}

func (*Product) TypeTag() string { return "Product" }

type Purchase struct {
	ID          string
	UserID      string
	ProductID   string
	Quantity    int
	UnitPrice   int
	PurchasedAt time.Time
}

// Total is the amount paid in cents.
func (p *Purchase) Total() int { return p.Quantity * p.UnitPrice }

// Store keeps users, products and purchases in memory. It is safe for
// concurrent use; returned values are copies.
type Store struct {
	mu        sync.RWMutex
	users     map[string]User
	products  map[string]Product
	purchases []Purchase
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]User),
		products: make(map[string]Product),
		now:      time.Now,
	}
}

// StableID derives a deterministic id for seeded records.
func StableID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("typegraph:"+kind+":"+name)).String()
}

// Demo returns a store with a few users and products.
func Demo() *Store {
	s := NewStore()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, u := range []User{
		{Email: "ada@example.com", Name: "Ada"},
		{Email: "grace@example.com", Name: "Grace"},
	} {
		u.ID = StableID("user", u.Email)
		u.CreatedAt = created
		s.AddUser(u)
	}
	for _, p := range []Product{
		{Title: "Desk lamp", Price: 2990, Stock: 12},
		{Title: "Standing desk", Price: 34900, Stock: 3},
		{Title: "Notebook", Price: 450, Stock: 100},
	} {
		p.ID = StableID("product", p.Title)
		s.AddProduct(p)
	}
	return s
}

func (s *Store) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) User(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return &u, nil
}

func (s *Store) Product(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return &p, nil
}

// Products lists up to first products ordered by title.
func (s *Store) Products(first int) []*Product {
	s.mu.RLock()
	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, &p)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Product) int { return cmp.Compare(a.Title, b.Title) })
	if first >= 0 && first < len(out) {
		out = out[:first]
	}
	return out
}

// Search matches users by name and products by title, case-insensitively.
// Users come first.
func (s *Store) Search(text string) []any {
	text = strings.ToLower(text)
	s.mu.RLock()
	var users []*User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Name), text) {
			users = append(users, &u)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(users, func(a, b *User) int { return cmp.Compare(a.Name, b.Name) })

	var out []any
	for _, u := range users {
		out = append(out, u)
	}
	for _, p := range s.Products(-1) {
		if strings.Contains(strings.ToLower(p.Title), text) {
			out = append(out, p)
		}
	}
	return out
}

// Purchase takes quantity items of a product from stock for a user.
func (s *Store) Purchase(userID, productID string, quantity int) (*Purchase, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	if p.Stock < quantity {
		return nil, fmt.Errorf("%w: %d of %q left", ErrInsufficientStock, p.Stock, p.Title)
	}
	p.Stock -= quantity
	s.products[productID] = p
	purchase := Purchase{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		PurchasedAt: s.now(),
	}
	s.purchases = append(s.purchases, purchase)
	return &purchase, nil
}

// Purchases lists the purchases of a user, oldest first.
func (s *Store) Purchases(userID string) []*Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Purchase
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, &p)
		}
	}
	return out
}
