package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

// ListAddresses returns the customer's addresses, oldest first.
func (r *GormRepo) ListAddresses(ctx context.Context, customerID uint) ([]models.Address, error) {
	var out []models.Address
	if err := r.DB.WithContext(ctx).Where("customer_id = ?", customerID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetCustomerAddress finds an address only if it belongs to the customer.
func (r *GormRepo) GetCustomerAddress(ctx context.Context, customerID, addressID uint) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
