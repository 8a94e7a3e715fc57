package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*types.Customer, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*types.Customer, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*types.Customer, error)
	ListCustomers(ctx context.Context) ([]*types.Customer, error)
}

type customerService struct {
	db           *gorm.DB
	log          *logger.Logger
	customerRepo repos.CustomerRepo
}

func NewCustomerService(db *gorm.DB, log *logger.Logger, customerRepo repos.CustomerRepo) CustomerService {
	return &customerService{
		db:           db,
		log:          log.With("service", "CustomerService"),
		customerRepo: customerRepo,
	}
}

func validateCustomerInput(input *CustomerInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("customer name required")
	}
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return fmt.Errorf("invalid email address")
		}
	}
	return nil
}

func (cs *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if err := validateCustomerInput(&input); err != nil {
		return nil, err
	}
	customer := &types.Customer{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		Name:       input.Name,
		Phone:      input.Phone,
		Email:      input.Email,
	}
	if _, err := cs.customerRepo.Create(ctx, nil, []*types.Customer{customer}); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (cs *customerService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, input CustomerInput) (*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if err := validateCustomerInput(&input); err != nil {
		return nil, err
	}
	customer, err := cs.ownedCustomer(ctx, rd.MerchantID, customerID)
	if err != nil {
		return nil, err
	}
	if uErr := cs.customerRepo.UpdateFields(ctx, nil, customer.ID, map[string]interface{}{
		"name":       input.Name,
		"phone":      input.Phone,
		"email":      input.Email,
		"updated_at": time.Now().UTC(),
	}); uErr != nil {
		return nil, fmt.Errorf("failed to update customer: %w", uErr)
	}
	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Email = input.Email
	return customer, nil
}

func (cs *customerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return cs.ownedCustomer(ctx, rd.MerchantID, customerID)
}

func (cs *customerService) ListCustomers(ctx context.Context) ([]*types.Customer, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return cs.customerRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (cs *customerService) ownedCustomer(ctx context.Context, merchantID, customerID uuid.UUID) (*types.Customer, error) {
	found, err := cs.customerRepo.GetByIDs(ctx, nil, []uuid.UUID{customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != merchantID {
		return nil, fmt.Errorf("customer not found")
	}
	return found[0], nil
}
