package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/model"
)

// ReservationLine asks for quantity units of one product.
type ReservationLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type InventoryLedger interface {
	Reserve(productID uuid.UUID, quantity int) error
	Restore(productID uuid.UUID, quantity int) error
	// ReserveAll reserves every line or none of them. It returns the product
	// snapshots read under lock, before the decrement was applied.
	ReserveAll(lines []ReservationLine) (map[uuid.UUID]model.Product, error)
	// RestoreAll returns every line to stock. Products that no longer exist are skipped.
	RestoreAll(lines []ReservationLine) error
}

func NewInventoryLedger(repo model.ProductRepository, productLocks *KeyedMutex, dispatcher EventDispatcher) InventoryLedger {
	return &inventoryLedger{repo: repo, locks: productLocks, dispatcher: dispatcher}
}

type inventoryLedger struct {
	repo       model.ProductRepository
	locks      *KeyedMutex
	dispatcher EventDispatcher
}

func (l *inventoryLedger) Reserve(productID uuid.UUID, quantity int) error {
	_, err := l.ReserveAll([]ReservationLine{{ProductID: productID, Quantity: quantity}})
	return err
}

func (l *inventoryLedger) Restore(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", model.ErrInvalidInput, quantity)
	}

	unlock := l.locks.Lock(productID)
	defer unlock()

	product, err := l.repo.Find(productID)
	if err != nil {
		return err
	}
	return l.changeStock(product, quantity)
}

func (l *inventoryLedger) ReserveAll(lines []ReservationLine) (map[uuid.UUID]model.Product, error) {
	ids, requested, err := aggregate(lines)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.LockAll(ids)
	defer unlock()

	products := make(map[uuid.UUID]*model.Product, len(ids))
	for _, id := range ids {
		product, err := l.repo.Find(id)
		if err != nil {
			return nil, errors.Wrapf(err, "product %s", id)
		}
		if product.Stock < requested[id] {
			return nil, &model.InsufficientStockError{
				ProductID:   id,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   requested[id],
			}
		}
		products[id] = product
	}

	snapshots := make(map[uuid.UUID]model.Product, len(products))
	for id, product := range products {
		snapshots[id] = *product
	}

	deltas := make(map[uuid.UUID]int, len(ids))
	for id, quantity := range requested {
		deltas[id] = -quantity
	}
	if err := l.applyAll(ids, products, deltas); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (l *inventoryLedger) RestoreAll(lines []ReservationLine) error {
	ids, requested, err := aggregate(lines)
	if err != nil {
		return err
	}

	unlock := l.locks.LockAll(ids)
	defer unlock()

	present := make([]uuid.UUID, 0, len(ids))
	products := make(map[uuid.UUID]*model.Product, len(ids))
	for _, id := range ids {
		product, err := l.repo.Find(id)
		if errors.Is(err, model.ErrProductNotFound) {
			log.WithFields(log.Fields{"product_id": id, "quantity": requested[id]}).
				Warn("product no longer exists, skipping stock restore")
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "product %s", id)
		}
		products[id] = product
		present = append(present, id)
	}

	return l.applyAll(present, products, requested)
}

// applyAll writes every delta in ids order. Callers must hold the product
// locks. If a write fails the deltas already written are reverted.
func (l *inventoryLedger) applyAll(ids []uuid.UUID, products map[uuid.UUID]*model.Product, deltas map[uuid.UUID]int) error {
	applied := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := l.changeStock(products[id], deltas[id]); err != nil {
			for _, done := range applied {
				if undoErr := l.changeStock(products[done], -deltas[done]); undoErr != nil {
					log.WithError(undoErr).WithFields(log.Fields{
						"product_id": done,
						"delta":      -deltas[done],
					}).Error("failed to compensate stock change")
				}
			}
			return errors.Wrapf(err, "failed to change stock of product %s", id)
		}
		applied = append(applied, id)
	}
	return nil
}

func (l *inventoryLedger) changeStock(product *model.Product, delta int) error {
	if product.Stock+delta < 0 {
		return &model.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   -delta,
		}
	}

	product.Stock += delta
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	if err := l.repo.Update(product); err != nil {
		product.Stock -= delta
		product.Version--
		return err
	}

	_ = l.dispatcher.Dispatch(model.ProductStockChanged{
		ProductID:    product.ID,
		ChangeAmount: delta,
		NewQuantity:  product.Stock,
	})
	return nil
}

// aggregate validates lines and sums quantities per product, keeping the
// order in which products first appear.
func aggregate(lines []ReservationLine) ([]uuid.UUID, map[uuid.UUID]int, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: no items given", model.ErrInvalidInput)
	}

	ids := make([]uuid.UUID, 0, len(lines))
	quantities := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: item %d: quantity must be positive, got %d", model.ErrInvalidInput, i, line.Quantity)
		}
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	return ids, quantities, nil
}
