// Package seed loads the product catalog from a YAML file into the database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type Catalog struct {
	Products []Product `yaml:"products"`
}

type Product struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing YAML seed: %w", err)
	}
	return &c, nil
}

// Models validates every entry and converts it. The first bad entry aborts the whole catalog.
func (c *Catalog) Models() ([]models.Product, error) {
	out := make([]models.Product, 0, len(c.Products))
	for i, p := range c.Products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("product #%d: name is required", i+1)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid price %q: %w", name, p.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("product %q: price cannot be negative", name)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %q: stock cannot be negative", name)
		}

		m := models.Product{
			Name:        name,
			Description: p.Description,
			Price:       price.Round(2),
			Stock:       p.Stock,
			Category:    p.Category,
		}
		if img := strings.TrimSpace(p.Image); img != "" {
			m.Image = &img
		}
		out = append(out, m)
	}
	return out, nil
}

// Apply inserts the products that are not in the table yet, matching by name.
// Running it twice is harmless.
func Apply(ctx context.Context, r *repo.GormRepo, c *Catalog) (int, error) {
	products, err := c.Models()
	if err != nil {
		return 0, err
	}

	created := 0
	err = r.InTx(ctx, func(tx *repo.GormRepo) error {
		for i := range products {
			ok, err := tx.UpsertProductByName(ctx, &products[i])
			if err != nil {
				return fmt.Errorf("insert %q: %w", products[i].Name, err)
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
