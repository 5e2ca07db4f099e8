package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrEntityNotFound = errors.New("entity not found")

// Meta tells a Collection how to reach the identity and timestamps of T.
type Meta[T any] struct {
	ID     func(entity *T) *uuid.UUID
	Stamps func(entity *T) (createdAt, updatedAt *time.Time)
	// Clone deep-copies an entity. Entities without reference fields may leave it nil.
	Clone func(entity T) T
}

// Collection is a keyed, concurrency-safe entity store. It hands out copies
// only, so callers can never mutate stored state in place.
type Collection[T any] struct {
	mu    sync.RWMutex
	meta  Meta[T]
	now   func() time.Time
	items map[uuid.UUID]T
	order []uuid.UUID
}

func NewCollection[T any](meta Meta[T]) *Collection[T] {
	return &Collection[T]{
		meta:  meta,
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[uuid.UUID]T),
	}
}

// Create stores entity, assigning an id when it is nil and timestamps when
// they are zero. The stored copy is written back to entity.
func (c *Collection[T]) Create(entity *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.meta.ID(entity)
	if *id == uuid.Nil {
		newID, err := uuid.NewRandom()
		if err != nil {
			return err
		}
		*id = newID
	}
	if _, exists := c.items[*id]; exists {
		return errors.New("entity already exists")
	}

	createdAt, updatedAt := c.meta.Stamps(entity)
	if createdAt.IsZero() {
		*createdAt = c.now()
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}

	c.items[*id] = c.clone(*entity)
	c.order = append(c.order, *id)
	return nil
}

func (c *Collection[T]) GetByID(id uuid.UUID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entity, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrEntityNotFound
	}
	return c.clone(entity), nil
}

// UpdateByID applies mutate to a copy of the stored entity and stores the
// result. The updated timestamp is refreshed unless mutate already changed it.
// If mutate fails nothing is written.
func (c *Collection[T]) UpdateByID(id uuid.UUID, mutate func(entity *T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	stored, ok := c.items[id]
	if !ok {
		return zero, ErrEntityNotFound
	}

	entity := c.clone(stored)
	_, before := c.meta.Stamps(&stored)
	if err := mutate(&entity); err != nil {
		return zero, err
	}
	*c.meta.ID(&entity) = id

	_, updatedAt := c.meta.Stamps(&entity)
	if updatedAt.Equal(*before) {
		*updatedAt = c.now()
	}

	c.items[id] = c.clone(entity)
	return entity, nil
}

func (c *Collection[T]) DeleteByID(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// FindBy returns every entity matching predicate in insertion order.
func (c *Collection[T]) FindBy(predicate func(entity T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]T, 0)
	for _, id := range c.order {
		entity := c.items[id]
		if predicate(entity) {
			result = append(result, c.clone(entity))
		}
	}
	return result
}

// FindOne returns the first entity matching predicate.
func (c *Collection[T]) FindOne(predicate func(entity T) bool) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if entity := c.items[id]; predicate(entity) {
			return c.clone(entity), nil
		}
	}
	var zero T
	return zero, ErrEntityNotFound
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) clone(entity T) T {
	if c.meta.Clone == nil {
		return entity
	}
	return c.meta.Clone(entity)
}

func All[T any](T) bool { return true }
