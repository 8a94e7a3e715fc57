package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	MerchantID string `json:"merchant_id"`
	Role       string `json:"role"`
}

type RegisterMerchantInput struct {
	MerchantName string
	Currency     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
}

type AuthService interface {
	// RegisterMerchant provisions the tenant: merchant row, owner staff
	// account, merchant wallet and avatar commit together.
	RegisterMerchant(ctx context.Context, input RegisterMerchantInput) (*types.Merchant, *types.StaffUser, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	merchantRepo  repos.MerchantRepo
	staffRepo     repos.StaffRepo
	userTokenRepo repos.UserTokenRepo
	walletRepo    repos.WalletRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	merchantRepo repos.MerchantRepo,
	staffRepo repos.StaffRepo,
	userTokenRepo repos.UserTokenRepo,
	walletRepo repos.WalletRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		merchantRepo:  merchantRepo,
		staffRepo:     staffRepo,
		userTokenRepo: userTokenRepo,
		walletRepo:    walletRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterMerchant(ctx context.Context, input RegisterMerchantInput) (*types.Merchant, *types.StaffUser, error) {
	input.MerchantName = strings.TrimSpace(input.MerchantName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.MerchantName == "" {
		return nil, nil, fmt.Errorf("merchant name required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, nil, fmt.Errorf("invalid email")
	}
	if len(input.Password) < 8 {
		return nil, nil, fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := as.staffRepo.EmailExists(ctx, nil, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, nil, fmt.Errorf("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "SLE"
	}

	merchant := &types.Merchant{ID: uuid.New(), Name: input.MerchantName, Currency: currency}
	owner := &types.StaffUser{
		ID:         uuid.New(),
		MerchantID: merchant.ID,
		Email:      input.Email,
		Password:   string(hashed),
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Role:       types.RoleOwner,
		Active:     true,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, mErr := as.merchantRepo.Create(ctx, tx, []*types.Merchant{merchant}); mErr != nil {
			return fmt.Errorf("failed to create merchant: %w", mErr)
		}
		if aErr := as.avatarService.CreateStaffAvatar(owner); aErr != nil {
			return fmt.Errorf("failed to create owner avatar: %w", aErr)
		}
		if _, sErr := as.staffRepo.Create(ctx, tx, []*types.StaffUser{owner}); sErr != nil {
			return fmt.Errorf("failed to create owner account: %w", sErr)
		}
		wallet := &types.Wallet{
			ID:        uuid.New(),
			OwnerType: types.WalletOwnerMerchant,
			OwnerID:   merchant.ID,
			Currency:  currency,
		}
		if _, wErr := as.walletRepo.Create(ctx, tx, []*types.Wallet{wallet}); wErr != nil {
			return fmt.Errorf("failed to create merchant wallet: %w", wErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return merchant, owner, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password required")
	}

	users, err := as.staffRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return "", "", fmt.Errorf("invalid credentials")
	}
	user := users[0]
	if !user.Active {
		return "", "", fmt.Errorf("account disabled")
	}
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", fmt.Errorf("invalid credentials")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token error: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
			as.log.Warn("create user token error", "error", ctErr)
			return fmt.Errorf("create user token error: %w", ctErr)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", "", fmt.Errorf("refresh token required")
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, ftErr := as.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if ftErr != nil {
			return fmt.Errorf("error fetching refresh token: %w", ftErr)
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token")
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{existing.UserID}); dErr != nil {
				return fmt.Errorf("refresh token expired, error deleting: %w", dErr)
			}
			return fmt.Errorf("refresh token expired")
		}
		users, uErr := as.staffRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 || users[0] == nil {
			return fmt.Errorf("no user found for the given refresh token")
		}
		user := users[0]
		if !user.Active {
			return fmt.Errorf("account disabled")
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("failed to generate new access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		if dErr := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{existing.UserID}); dErr != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", dErr)
		}
		newToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newToken}); cErr != nil {
			return fmt.Errorf("failed to create new user token: %w", cErr)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("refresh transaction failed", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("no request data found in context")
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) generateAccessToken(user *types.StaffUser) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		MerchantID: user.MerchantID.String(),
		Role:       user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	merchantID, err := uuid.Parse(claims.MerchantID)
	if err != nil {
		return ctx, fmt.Errorf("invalid merchant id in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		MerchantID:  merchantID,
		Role:        claims.Role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
