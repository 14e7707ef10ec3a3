package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type AccountService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type RegisterInput struct {
	Name       string
	Email      string
	NationalID string
	Password   string
	Phone      string
}

type AddressInput struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Customer, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	nationalID := util.DigitsOnly(in.NationalID)
	phone := util.DigitsOnly(in.Phone)

	if name == "" || email == "" || nationalID == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, national id and password are required", ErrValidation)
	}
	if len(nationalID) > 11 {
		return nil, fmt.Errorf("%w: national id has more than 11 digits", ErrValidation)
	}
	if len(in.Password) > 72 {
		return nil, fmt.Errorf("%w: password longer than 72 bytes", ErrValidation)
	}
	if len(phone) > 15 {
		return nil, fmt.Errorf("%w: phone has more than 15 digits", ErrValidation)
	}

	taken, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.Repo.NationalIDExists(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNationalIDTaken
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	customer := &models.Customer{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		NationalID:   nationalID,
	}
	if phone != "" {
		customer.Phone = &phone
	}

	if err := s.Repo.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create customer: %w", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCustomer, strconv.FormatUint(uint64(customer.ID), 10), map[string]any{
		"type":        events.TypeCustomerRegistered,
		"customer_id": customer.ID,
		"email":       customer.Email,
	})

	l.Info("register_success", "customer_id", customer.ID)
	return customer, nil
}

func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	customer, err := s.Repo.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(customer.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}

// AddAddress always inserts a new row. Existing addresses are never updated.
func (s *AccountService) AddAddress(ctx context.Context, customerID uint, in AddressInput) (*models.Address, error) {
	addr := &models.Address{
		CustomerID: customerID,
		Street:     strings.TrimSpace(in.Street),
		Number:     strings.TrimSpace(in.Number),
		District:   strings.TrimSpace(in.District),
		City:       strings.TrimSpace(in.City),
		State:      strings.ToUpper(strings.TrimSpace(in.State)),
		PostalCode: util.DigitsOnly(in.PostalCode),
	}
	if c := strings.TrimSpace(in.Complement); c != "" {
		addr.Complement = &c
	}

	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.CreateAddress(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *AccountService) Addresses(ctx context.Context, customerID uint) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, customerID)
}

func validateAddress(a *models.Address) error {
	switch {
	case a.Street == "", a.Number == "", a.District == "", a.City == "":
		return fmt.Errorf("%w: street, number, district and city are required", ErrValidation)
	case len(a.State) != 2 || !isLetters(a.State):
		return fmt.Errorf("%w: state must be two letters", ErrValidation)
	case len(a.PostalCode) != 8:
		return fmt.Errorf("%w: postal code must have 8 digits", ErrValidation)
	}
	return nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
