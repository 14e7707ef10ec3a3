package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

// ProductSearcher is satisfied by *search.Client.
type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Search ProductSearcher
}

type ProductPage struct {
	Items []models.Product `json:"data"`
	Meta  util.Meta        `json:"meta"`
}

type CartLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) ListProductsPage(ctx context.Context, page, size int) (*ProductPage, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &ProductPage{Items: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// ViewCart prices the cart at current product prices. Entries whose product is
// gone, or whose id is not a number, are left out.
func (s *CatalogService) ViewCart(ctx context.Context, c *cart.Cart) (*CartView, error) {
	view := &CartView{Lines: []CartLine{}, Total: decimal.Zero}
	if c.IsEmpty() {
		return view, nil
	}

	lines := c.Lines()
	products, err := s.Repo.ProductsByID(ctx, cartProductIDs(lines))
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		id, ok := parseProductID(line.ProductID)
		if !ok {
			continue
		}
		p, ok := products[id]
		if !ok {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: line.Quantity, Subtotal: sub})
		view.Total = view.Total.Add(sub)
	}
	return view, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*ProductPage, error) {
	if s.Search == nil {
		return nil, ErrSearchUnavailable
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	offset, limit := util.Calculate(page, size)
	total, items, err := s.Search.Search(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &ProductPage{Items: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
}

func parseProductID(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func cartProductIDs(lines []cart.Line) []uint {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if id, ok := parseProductID(line.ProductID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
