package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type InviteStaffInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type StaffService interface {
	// Invite creates a staff account under the caller's merchant. Only
	// owners can grant the manager role.
	Invite(ctx context.Context, input InviteStaffInput) (*types.StaffUser, error)
	ListStaff(ctx context.Context) ([]*types.StaffUser, error)
	SetRole(ctx context.Context, staffID uuid.UUID, role string) (*types.StaffUser, error)
	Deactivate(ctx context.Context, staffID uuid.UUID) error
	Reactivate(ctx context.Context, staffID uuid.UUID) error
}

type staffService struct {
	db        *gorm.DB
	log       *logger.Logger
	staffRepo repos.StaffRepo
	avatars   AvatarService
}

func NewStaffService(db *gorm.DB, log *logger.Logger, staffRepo repos.StaffRepo, avatars AvatarService) StaffService {
	return &staffService{
		db:        db,
		log:       log.With("service", "StaffService"),
		staffRepo: staffRepo,
		avatars:   avatars,
	}
}

func validStaffRole(role string) bool {
	return role == types.RoleManager || role == types.RoleCashier
}

func (ss *staffService) Invite(ctx context.Context, input InviteStaffInput) (*types.StaffUser, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if rd.Role != types.RoleOwner && rd.Role != types.RoleManager {
		return nil, fmt.Errorf("inviting staff requires a manager")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("first and last name required")
	}
	if input.Role == "" {
		input.Role = types.RoleCashier
	}
	if !validStaffRole(input.Role) {
		return nil, fmt.Errorf("role must be %s or %s", types.RoleManager, types.RoleCashier)
	}
	if input.Role == types.RoleManager && rd.Role != types.RoleOwner {
		return nil, fmt.Errorf("only the owner can grant the manager role")
	}

	exists, err := ss.staffRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email is already in use")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.StaffUser{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		Email:      email,
		Password:   string(hashed),
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Role:       input.Role,
		Active:     true,
	}
	if aErr := ss.avatars.CreateStaffAvatar(user); aErr != nil {
		// Avatar generation is cosmetic; the invite still stands.
		ss.log.Warn("Failed to generate staff avatar", "staff_id", user.ID, "error", aErr)
	}
	if _, cErr := ss.staffRepo.Create(ctx, nil, []*types.StaffUser{user}); cErr != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", cErr)
	}
	return user, nil
}

func (ss *staffService) ListStaff(ctx context.Context) ([]*types.StaffUser, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ss.staffRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ss *staffService) SetRole(ctx context.Context, staffID uuid.UUID, role string) (*types.StaffUser, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if rd.Role != types.RoleOwner {
		return nil, fmt.Errorf("only the owner can change roles")
	}
	if !validStaffRole(role) {
		return nil, fmt.Errorf("role must be %s or %s", types.RoleManager, types.RoleCashier)
	}
	user, err := ss.ownedStaff(ctx, rd.MerchantID, staffID)
	if err != nil {
		return nil, err
	}
	if user.Role == types.RoleOwner {
		return nil, fmt.Errorf("the owner role cannot be changed")
	}
	if uErr := ss.staffRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}); uErr != nil {
		return nil, fmt.Errorf("failed to update role: %w", uErr)
	}
	user.Role = role
	return user, nil
}

func (ss *staffService) Deactivate(ctx context.Context, staffID uuid.UUID) error {
	return ss.setActive(ctx, staffID, false)
}

func (ss *staffService) Reactivate(ctx context.Context, staffID uuid.UUID) error {
	return ss.setActive(ctx, staffID, true)
}

func (ss *staffService) setActive(ctx context.Context, staffID uuid.UUID, active bool) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	if rd.Role != types.RoleOwner && rd.Role != types.RoleManager {
		return fmt.Errorf("changing staff status requires a manager")
	}
	user, err := ss.ownedStaff(ctx, rd.MerchantID, staffID)
	if err != nil {
		return err
	}
	if user.Role == types.RoleOwner {
		return fmt.Errorf("the owner account cannot be deactivated")
	}
	if user.ID == rd.UserID {
		return fmt.Errorf("cannot change your own status")
	}
	return ss.staffRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{
		"active":     active,
		"updated_at": time.Now().UTC(),
	})
}

func (ss *staffService) ownedStaff(ctx context.Context, merchantID, staffID uuid.UUID) (*types.StaffUser, error) {
	found, err := ss.staffRepo.GetByIDs(ctx, nil, []uuid.UUID{staffID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff user: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != merchantID {
		return nil, fmt.Errorf("staff user not found")
	}
	return found[0], nil
}
