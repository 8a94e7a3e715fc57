package services

import (
	"context"
	"fmt"
	"regexp"
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

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

type UpdateStorefrontInput struct {
	DisplayName  string         `json:"display_name"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description"`
	Currency     string         `json:"currency"`
	Published    bool           `json:"published"`
	OpeningHours datatypes.JSON `json:"opening_hours"`
}

// StorefrontCatalog is the public view of a published storefront.
type StorefrontCatalog struct {
	Storefront *types.Storefront   `json:"storefront"`
	Products   []*ProductWithStock `json:"products"`
	Events     []*types.Event      `json:"events"`
}

type StorefrontService interface {
	GetMine(ctx context.Context) (*types.Storefront, error)
	Update(ctx context.Context, input UpdateStorefrontInput) (*types.Storefront, error)
	// PublicCatalog resolves a published storefront by slug with its
	// active products and published events. No auth required.
	PublicCatalog(ctx context.Context, slug string) (*StorefrontCatalog, error)
}

type storefrontService struct {
	db             *gorm.DB
	log            *logger.Logger
	storefrontRepo repos.StorefrontRepo
	productRepo    repos.ProductRepo
	stockRepo      repos.StockMovementRepo
	eventRepo      repos.EventRepo
}

func NewStorefrontService(db *gorm.DB, log *logger.Logger, storefrontRepo repos.StorefrontRepo, productRepo repos.ProductRepo, stockRepo repos.StockMovementRepo, eventRepo repos.EventRepo) StorefrontService {
	return &storefrontService{
		db:             db,
		log:            log.With("service", "StorefrontService"),
		storefrontRepo: storefrontRepo,
		productRepo:    productRepo,
		stockRepo:      stockRepo,
		eventRepo:      eventRepo,
	}
}

func (ss *storefrontService) GetMine(ctx context.Context) (*types.Storefront, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	storefront, err := ss.storefrontRepo.GetByMerchant(ctx, nil, rd.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch storefront: %w", err)
	}
	if storefront == nil {
		return &types.Storefront{MerchantID: rd.MerchantID}, nil
	}
	return storefront, nil
}

func (ss *storefrontService) Update(ctx context.Context, input UpdateStorefrontInput) (*types.Storefront, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return nil, fmt.Errorf("display name required")
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("slug must be lowercase letters, digits and hyphens")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency != "" && !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("currency must be a three-letter code")
	}

	var out *types.Storefront
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := ss.storefrontRepo.GetByMerchant(ctx, tx, rd.MerchantID)
		if gErr != nil {
			return fmt.Errorf("failed to fetch storefront: %w", gErr)
		}
		if existing == nil || existing.Slug != slug {
			taken, sErr := ss.storefrontRepo.SlugExists(ctx, tx, slug)
			if sErr != nil {
				return fmt.Errorf("failed to check slug: %w", sErr)
			}
			if taken {
				return fmt.Errorf("slug %q is already taken", slug)
			}
		}
		storefront := &types.Storefront{
			ID:           uuid.New(),
			MerchantID:   rd.MerchantID,
			DisplayName:  input.DisplayName,
			Slug:         slug,
			Description:  strings.TrimSpace(input.Description),
			Currency:     currency,
			Published:    input.Published,
			OpeningHours: input.OpeningHours,
			UpdatedAt:    time.Now().UTC(),
		}
		if existing != nil {
			storefront.ID = existing.ID
			if storefront.Currency == "" {
				storefront.Currency = existing.Currency
			}
		}
		if storefront.Currency == "" {
			storefront.Currency = "SLE"
		}
		if _, uErr := ss.storefrontRepo.Upsert(ctx, tx, storefront); uErr != nil {
			return fmt.Errorf("failed to save storefront: %w", uErr)
		}
		out = storefront
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *storefrontService) PublicCatalog(ctx context.Context, slug string) (*StorefrontCatalog, error) {
	storefront, err := ss.storefrontRepo.GetBySlug(ctx, nil, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch storefront: %w", err)
	}
	if storefront == nil || !storefront.Published {
		return nil, fmt.Errorf("storefront not found")
	}

	products, err := ss.productRepo.ListByMerchant(ctx, nil, storefront.MerchantID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	onHand, err := ss.stockRepo.OnHandBulk(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock levels: %w", err)
	}
	withStock := make([]*ProductWithStock, 0, len(products))
	for _, p := range products {
		withStock = append(withStock, &ProductWithStock{Product: p, OnHand: onHand[p.ID]})
	}

	events, err := ss.eventRepo.ListByMerchant(ctx, nil, storefront.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	published := make([]*types.Event, 0, len(events))
	for _, ev := range events {
		if ev.Status == types.EventStatusPublished {
			published = append(published, ev)
		}
	}

	return &StorefrontCatalog{Storefront: storefront, Products: withStock, Events: published}, nil
}
