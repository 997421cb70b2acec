package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReplenishment is returned when a negative quantity is added
	// to the inventory level or position.
	ErrInvalidReplenishment = errors.New("invalid replenishment")
	// ErrInvalidPolicyState is returned when a reorder quantity is requested
	// while the policy's reorder predicate does not hold.
	ErrInvalidPolicyState = errors.New("invalid policy state")
)

// ReorderPolicy is the per-material inventory state machine: stock counters
// plus the rule that decides when and how much to reorder.
//
// Invariant: InventoryPosition() >= 0. InventoryLevel() may go negative
// (backorders).
type ReorderPolicy interface {
	// ShouldReorder reports whether the position is at or below the reorder point.
	ShouldReorder() bool
	// Reorder returns the quantity to order now.
	Reorder() (int, error)
	// Consume removes amount from stock and returns the new level.
	Consume(amount int) int
	ReplenishLevel(amount int) (int, error)
	ReplenishPosition(amount int) (int, error)
	IsShort() bool
	AmountShort() int

	InventoryLevel() int
	InventoryPosition() int
	ReorderPoint() int
	MaxStock() int

	// Clone returns an independent copy including the current stock counters.
	Clone() ReorderPolicy
}

// stock holds the counters shared by both policy variants.
type stock struct {
	reorderPoint int
	maxStock     int
	level        int
	position     int
}

func (s *stock) ShouldReorder() bool { return s.position <= s.reorderPoint }

func (s *stock) Consume(amount int) int {
	s.level -= amount
	s.position = max(s.position-amount, 0)
	return s.level
}

func (s *stock) ReplenishLevel(amount int) (int, error) {
	if amount < 0 {
		return s.level, fmt.Errorf("%w: level += %d", ErrInvalidReplenishment, amount)
	}
	s.level += amount
	return s.level, nil
}

func (s *stock) ReplenishPosition(amount int) (int, error) {
	if amount < 0 {
		return s.position, fmt.Errorf("%w: position += %d", ErrInvalidReplenishment, amount)
	}
	s.position += amount
	return s.position, nil
}

func (s *stock) IsShort() bool          { return s.level < 0 }
func (s *stock) AmountShort() int       { return max(-s.level, 0) }
func (s *stock) InventoryLevel() int    { return s.level }
func (s *stock) InventoryPosition() int { return s.position }
func (s *stock) ReorderPoint() int      { return s.reorderPoint }
func (s *stock) MaxStock() int          { return s.maxStock }

// SSPolicy is the (s,S) order-up-to policy: whenever the position drops to
// or below s, order enough to bring it back to S.
type SSPolicy struct {
	stock
}

// NewSSPolicy starts with level and position at maxStock.
func NewSSPolicy(reorderPoint, maxStock int) *SSPolicy {
	return NewSSPolicyWithStock(maxStock, reorderPoint, maxStock)
}

// NewSSPolicyWithStock starts with level and position at currentStock.
func NewSSPolicyWithStock(currentStock, reorderPoint, maxStock int) *SSPolicy {
	return &SSPolicy{stock{
		reorderPoint: reorderPoint,
		maxStock:     maxStock,
		level:        currentStock,
		position:     currentStock,
	}}
}

// Reorder returns maxStock - position.
func (p *SSPolicy) Reorder() (int, error) {
	if !p.ShouldReorder() {
		return 0, fmt.Errorf("%w: position %d above reorder point %d", ErrInvalidPolicyState, p.position, p.reorderPoint)
	}
	return p.maxStock - p.position, nil
}

func (p *SSPolicy) Clone() ReorderPolicy {
	c := *p
	return &c
}

func (p *SSPolicy) String() string {
	return fmt.Sprintf("(s,S)=(%d,%d)", p.reorderPoint, p.maxStock)
}

// RQPolicy is the (R,Q) fixed-quantity policy: whenever the position drops
// to or below R, order Q.
type RQPolicy struct {
	stock
	quantity int
}

// NewRQPolicy starts with level and position at R+Q.
func NewRQPolicy(reorderPoint, quantity int) *RQPolicy {
	return &RQPolicy{
		stock: stock{
			reorderPoint: reorderPoint,
			maxStock:     reorderPoint + quantity,
			level:        reorderPoint + quantity,
			position:     reorderPoint + quantity,
		},
		quantity: quantity,
	}
}

// Reorder always returns Q.
func (p *RQPolicy) Reorder() (int, error) {
	return p.quantity, nil
}

// Quantity is the fixed order quantity Q.
func (p *RQPolicy) Quantity() int { return p.quantity }

func (p *RQPolicy) Clone() ReorderPolicy {
	c := *p
	return &c
}

func (p *RQPolicy) String() string {
	return fmt.Sprintf("(R,Q)=(%d,%d)", p.reorderPoint, p.quantity)
}
