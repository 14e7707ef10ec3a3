package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CheckoutKind int

const (
	CheckoutOK CheckoutKind = iota
	CheckoutNotAuthenticated
	CheckoutEmptyCart
	CheckoutAddressRequired
	CheckoutAddressNotFound
	CheckoutFailed
)

func (k CheckoutKind) String() string {
	switch k {
	case CheckoutOK:
		return "ok"
	case CheckoutNotAuthenticated:
		return "not_authenticated"
	case CheckoutEmptyCart:
		return "empty_cart"
	case CheckoutAddressRequired:
		return "address_required"
	case CheckoutAddressNotFound:
		return "address_not_found"
	case CheckoutFailed:
		return "failed"
	}
	return "unknown"
}

type CheckoutInput struct {
	CustomerID uint
	// AddressID is optional. Zero picks the customer's first stored address.
	AddressID uint
}

type CheckoutResult struct {
	Kind  CheckoutKind
	Order *models.Order
	Err   error
}

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Checkout turns the cart into an order. The cart is cleared only when the
// order and all its items have been committed. Any other outcome leaves it as it was.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput, c *cart.Cart) CheckoutResult {
	l := logging.FromContext(ctx).With("svc", "checkout", "customer_id", in.CustomerID)

	if in.CustomerID == 0 {
		return CheckoutResult{Kind: CheckoutNotAuthenticated}
	}
	if c.IsEmpty() {
		return CheckoutResult{Kind: CheckoutEmptyCart}
	}

	addr, kind, err := s.chooseAddress(ctx, in)
	if err != nil {
		l.Error("checkout_error", "reason", "cannot load address", "error", err)
		return CheckoutResult{Kind: CheckoutFailed, Err: err}
	}
	if kind != CheckoutOK {
		return CheckoutResult{Kind: kind}
	}

	var order *models.Order
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		lines := c.Lines()
		products, err := tx.ProductsByID(ctx, cartProductIDs(lines))
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			id, ok := parseProductID(line.ProductID)
			if !ok {
				continue
			}
			p, ok := products[id]
			if !ok {
				continue
			}
			item := models.OrderItem{ProductID: p.ID, Quantity: line.Quantity, UnitPrice: p.Price}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order = &models.Order{
			CustomerID: in.CustomerID,
			AddressID:  addr.ID,
			Status:     models.OrderStatusProcessing,
			Total:      total,
		}
		if err := tx.CreateOrder(ctx, order, items); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		l.Error("checkout_error", "reason", "order transaction rolled back", "error", err)
		return CheckoutResult{Kind: CheckoutFailed, Err: err}
	}

	c.Clear()

	publish(ctx, s.Events, events.TopicOrder, strconv.FormatUint(uint64(in.CustomerID), 10), map[string]any{
		"type":        events.TypeOrderPlaced,
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"address_id":  order.AddressID,
		"total":       order.Total.StringFixed(2),
		"items":       len(order.Items),
	})

	l.Info("checkout_success", "order_id", order.ID, "total", order.Total.StringFixed(2))
	return CheckoutResult{Kind: CheckoutOK, Order: order}
}

func (s *CheckoutService) chooseAddress(ctx context.Context, in CheckoutInput) (*models.Address, CheckoutKind, error) {
	addrs, err := s.Repo.ListAddresses(ctx, in.CustomerID)
	if err != nil {
		return nil, CheckoutFailed, err
	}
	if len(addrs) == 0 {
		return nil, CheckoutAddressRequired, nil
	}
	if in.AddressID == 0 {
		return &addrs[0], CheckoutOK, nil
	}

	addr, err := s.Repo.GetCustomerAddress(ctx, in.CustomerID, in.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CheckoutAddressNotFound, nil
		}
		return nil, CheckoutFailed, err
	}
	return addr, CheckoutOK, nil
}
