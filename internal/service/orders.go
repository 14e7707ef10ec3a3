package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo *repo.GormRepo
}

// ListOrders returns the customer's orders, newest first, with their items.
func (s *OrderService) ListOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}
