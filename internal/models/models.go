package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusAwaitingPayment = "Awaiting Payment"
	OrderStatusProcessing      = "Processing"
)

type Customer struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string  `gorm:"size:100;not null"               json:"name"`
	Email        string  `gorm:"size:100;uniqueIndex;not null"   json:"email"`
	PasswordHash string  `gorm:"size:255;not null"               json:"-"`
	NationalID   string  `gorm:"size:11;uniqueIndex;not null"    json:"national_id"`
	Phone        *string `gorm:"size:15"                         json:"phone,omitempty"`

	Addresses []Address `gorm:"foreignKey:CustomerID" json:"-"`
	Orders    []Order   `gorm:"foreignKey:CustomerID" json:"-"`
}

type Address struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID uint    `gorm:"index;not null"           json:"customer_id"`
	Street     string  `gorm:"size:255;not null"        json:"street"`
	Number     string  `gorm:"size:20;not null"         json:"number"`
	Complement *string `gorm:"size:100"                 json:"complement,omitempty"`
	District   string  `gorm:"size:100;not null"        json:"district"`
	City       string  `gorm:"size:100;not null"        json:"city"`
	State      string  `gorm:"size:2;not null"          json:"state"`
	PostalCode string  `gorm:"size:8;not null"          json:"postal_code"`

	Orders []Order `gorm:"foreignKey:AddressID" json:"-"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name        string          `gorm:"size:150;not null"                  json:"name"`
	Description string          `gorm:"type:text"                          json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;check:price >= 0" json:"price"`
	Stock       int             `gorm:"not null;default:0"                 json:"stock"`
	Category    string          `gorm:"size:50"                            json:"category"`
	Image       *string         `gorm:"size:100"                           json:"image,omitempty"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

type Order struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"                   json:"id"`
	CustomerID uint            `gorm:"index;not null"                             json:"customer_id"`
	AddressID  uint            `gorm:"index;not null"                             json:"address_id"`
	CreatedAt  time.Time       `gorm:"not null"                                   json:"created_at"`
	Status     string          `gorm:"size:50;not null;default:'Awaiting Payment'" json:"status"`
	Total      decimal.Decimal `gorm:"type:numeric(10,2);not null"                json:"total"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	OrderID   uint            `gorm:"index;not null"                json:"order_id"`
	ProductID uint            `gorm:"index;not null"                json:"product_id"`
	Quantity  int             `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"unit_price"`
}

// Subtotal is the line value at the snapshotted unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{&Customer{}, &Address{}, &Product{}, &Order{}, &OrderItem{}}
}
