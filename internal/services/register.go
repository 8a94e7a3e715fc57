package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type RegisterService interface {
	CreateRegister(ctx context.Context, label string) (*types.Register, error)
	ListRegisters(ctx context.Context) ([]*types.Register, error)
}

type registerService struct {
	db           *gorm.DB
	log          *logger.Logger
	registerRepo repos.RegisterRepo
}

func NewRegisterService(db *gorm.DB, log *logger.Logger, registerRepo repos.RegisterRepo) RegisterService {
	return &registerService{
		db:           db,
		log:          log.With("service", "RegisterService"),
		registerRepo: registerRepo,
	}
}

func (rs *registerService) CreateRegister(ctx context.Context, label string) (*types.Register, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("register label required")
	}
	register := &types.Register{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		Label:      label,
	}
	if _, err := rs.registerRepo.Create(ctx, nil, []*types.Register{register}); err != nil {
		return nil, fmt.Errorf("failed to create register: %w", err)
	}
	return register, nil
}

func (rs *registerService) ListRegisters(ctx context.Context) ([]*types.Register, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return rs.registerRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}
