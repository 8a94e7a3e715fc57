package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type ApplySchoolInput struct {
	Name            string         `json:"name"`
	ContactEmail    string         `json:"contact_email"`
	PaymentSettings datatypes.JSON `json:"payment_settings"`
}

type SchoolService interface {
	// Apply files a pending onboarding application.
	Apply(ctx context.Context, input ApplySchoolInput) (*types.School, error)
	// Approve flips a pending application to approved and provisions its
	// wallet in the same transaction.
	Approve(ctx context.Context, schoolID uuid.UUID) (*types.School, error)
	Reject(ctx context.Context, schoolID uuid.UUID, reason string) (*types.School, error)
	// Activate turns an approved school live for payment collection.
	Activate(ctx context.Context, schoolID uuid.UUID) (*types.School, error)
	ListSchools(ctx context.Context) ([]*types.School, error)
	ListPending(ctx context.Context, limit int) ([]*types.School, error)
}

type schoolService struct {
	db         *gorm.DB
	log        *logger.Logger
	schoolRepo repos.SchoolRepo
	wallets    WalletService
}

func NewSchoolService(db *gorm.DB, log *logger.Logger, schoolRepo repos.SchoolRepo, wallets WalletService) SchoolService {
	return &schoolService{
		db:         db,
		log:        log.With("service", "SchoolService"),
		schoolRepo: schoolRepo,
		wallets:    wallets,
	}
}

func (ss *schoolService) Apply(ctx context.Context, input ApplySchoolInput) (*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("school name required")
	}
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid contact email")
		}
	}
	school := &types.School{
		ID:              uuid.New(),
		MerchantID:      rd.MerchantID,
		Name:            input.Name,
		ContactEmail:    email,
		Status:          types.SchoolStatusPending,
		PaymentSettings: input.PaymentSettings,
	}
	if _, err := ss.schoolRepo.Create(ctx, nil, []*types.School{school}); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return school, nil
}

func (ss *schoolService) Approve(ctx context.Context, schoolID uuid.UUID) (*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if rd.Role != types.RoleOwner && rd.Role != types.RoleManager {
		return nil, fmt.Errorf("approval requires a manager")
	}

	var out *types.School
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		school, sErr := ss.lockOwnedSchool(ctx, tx, rd.MerchantID, schoolID)
		if sErr != nil {
			return sErr
		}
		if school.Status == types.SchoolStatusApproved || school.Status == types.SchoolStatusActive {
			out = school
			return nil
		}
		if school.Status != types.SchoolStatusPending {
			return fmt.Errorf("school is %s and cannot be approved", school.Status)
		}
		wallet, wErr := ss.wallets.EnsureWallet(ctx, tx, types.WalletOwnerSchool, school.ID, "")
		if wErr != nil {
			return wErr
		}
		walletID := wallet.ID
		if uErr := ss.schoolRepo.UpdateFields(ctx, tx, school.ID, map[string]interface{}{
			"status":     types.SchoolStatusApproved,
			"wallet_id":  walletID,
			"updated_at": time.Now().UTC(),
		}); uErr != nil {
			return fmt.Errorf("failed to approve school: %w", uErr)
		}
		school.Status = types.SchoolStatusApproved
		school.WalletID = &walletID
		out = school
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *schoolService) Reject(ctx context.Context, schoolID uuid.UUID, reason string) (*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if rd.Role != types.RoleOwner && rd.Role != types.RoleManager {
		return nil, fmt.Errorf("rejection requires a manager")
	}

	var out *types.School
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		school, sErr := ss.lockOwnedSchool(ctx, tx, rd.MerchantID, schoolID)
		if sErr != nil {
			return sErr
		}
		if school.Status == types.SchoolStatusRejected {
			out = school
			return nil
		}
		if school.Status != types.SchoolStatusPending {
			return fmt.Errorf("school is %s and cannot be rejected", school.Status)
		}
		if uErr := ss.schoolRepo.UpdateFields(ctx, tx, school.ID, map[string]interface{}{
			"status":     types.SchoolStatusRejected,
			"updated_at": time.Now().UTC(),
		}); uErr != nil {
			return fmt.Errorf("failed to reject school: %w", uErr)
		}
		ss.log.Info("School application rejected", "school_id", school.ID, "reason", reason)
		school.Status = types.SchoolStatusRejected
		out = school
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *schoolService) Activate(ctx context.Context, schoolID uuid.UUID) (*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var out *types.School
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		school, sErr := ss.lockOwnedSchool(ctx, tx, rd.MerchantID, schoolID)
		if sErr != nil {
			return sErr
		}
		if school.Status == types.SchoolStatusActive {
			out = school
			return nil
		}
		if school.Status != types.SchoolStatusApproved {
			return fmt.Errorf("school is %s and cannot be activated", school.Status)
		}
		if uErr := ss.schoolRepo.UpdateFields(ctx, tx, school.ID, map[string]interface{}{
			"status":     types.SchoolStatusActive,
			"updated_at": time.Now().UTC(),
		}); uErr != nil {
			return fmt.Errorf("failed to activate school: %w", uErr)
		}
		school.Status = types.SchoolStatusActive
		out = school
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *schoolService) ListSchools(ctx context.Context) ([]*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ss.schoolRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ss *schoolService) ListPending(ctx context.Context, limit int) ([]*types.School, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	schools, err := ss.schoolRepo.ListByStatus(ctx, nil, types.SchoolStatusPending, limit)
	if err != nil {
		return nil, err
	}
	// Merchants only review their own applications.
	mine := make([]*types.School, 0, len(schools))
	for _, s := range schools {
		if s.MerchantID == rd.MerchantID {
			mine = append(mine, s)
		}
	}
	return mine, nil
}

func (ss *schoolService) lockOwnedSchool(ctx context.Context, tx *gorm.DB, merchantID, schoolID uuid.UUID) (*types.School, error) {
	school, err := ss.schoolRepo.LockByID(ctx, tx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock school: %w", err)
	}
	if school == nil || school.MerchantID != merchantID {
		return nil, fmt.Errorf("school not found")
	}
	return school, nil
}
