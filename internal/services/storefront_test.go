package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

func TestSlugPattern_AcceptsLowercaseWithHyphens(t *testing.T) {
	for _, slug := range []string{"corner-shop", "shop", "a1-b2-c3", "7eleven"} {
		if !slugPattern.MatchString(slug) {
			t.Fatalf("expected %q to be a valid slug", slug)
		}
	}
}

func TestSlugPattern_RejectsBadShapes(t *testing.T) {
	for _, slug := range []string{"", "Corner-Shop", "shop_", "-shop", "shop-", "two--hyphens", "has space", "café"} {
		if slugPattern.MatchString(slug) {
			t.Fatalf("expected %q to be rejected", slug)
		}
	}
}

type fakeStorefrontRepo struct {
	byMerchant map[uuid.UUID]*types.Storefront
}

func newFakeStorefrontRepo() *fakeStorefrontRepo {
	return &fakeStorefrontRepo{byMerchant: map[uuid.UUID]*types.Storefront{}}
}

func (f *fakeStorefrontRepo) GetByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.Storefront, error) {
	return f.byMerchant[merchantID], nil
}

func (f *fakeStorefrontRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Storefront, error) {
	for _, s := range f.byMerchant {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStorefrontRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	s, _ := f.GetBySlug(ctx, tx, slug)
	return s != nil, nil
}

func (f *fakeStorefrontRepo) Upsert(ctx context.Context, tx *gorm.DB, storefront *types.Storefront) (*types.Storefront, error) {
	f.byMerchant[storefront.MerchantID] = storefront
	return storefront, nil
}

func newStorefrontService(t *testing.T, repo *fakeStorefrontRepo) StorefrontService {
	t.Helper()
	return NewStorefrontService(newTestDB(t), newTestLogger(t), repo, newFakeProductRepo(), &fakeStockRepo{}, newFakeEventRepo())
}

func TestUpdateStorefront_NormalizesAndKeepsCurrency(t *testing.T) {
	repo := newFakeStorefrontRepo()
	svc := newStorefrontService(t, repo)
	merchantID := uuid.New()
	ctx := authedCtx(merchantID)

	first, err := svc.Update(ctx, UpdateStorefrontInput{
		DisplayName: "Corner Shop",
		Slug:        "corner-shop",
		Currency:    " usd ",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if first.Currency != "USD" {
		t.Fatalf("currency = %q, want USD", first.Currency)
	}

	// An update that leaves currency blank keeps the stored one.
	second, err := svc.Update(ctx, UpdateStorefrontInput{
		DisplayName: "Corner Shop",
		Slug:        "corner-shop",
	})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if second.Currency != "USD" {
		t.Fatalf("currency after blank update = %q, want USD", second.Currency)
	}
}

func TestUpdateStorefront_DefaultsCurrency(t *testing.T) {
	repo := newFakeStorefrontRepo()
	svc := newStorefrontService(t, repo)
	ctx := authedCtx(uuid.New())

	storefront, err := svc.Update(ctx, UpdateStorefrontInput{DisplayName: "Kiosk", Slug: "kiosk"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if storefront.Currency != "SLE" {
		t.Fatalf("currency = %q, want the SLE default", storefront.Currency)
	}
}

func TestUpdateStorefront_RejectsBadCurrency(t *testing.T) {
	repo := newFakeStorefrontRepo()
	svc := newStorefrontService(t, repo)
	ctx := authedCtx(uuid.New())

	for _, currency := range []string{"SL", "LEONES", "12X"} {
		_, err := svc.Update(ctx, UpdateStorefrontInput{
			DisplayName: "Kiosk",
			Slug:        "kiosk",
			Currency:    currency,
		})
		if err == nil || !strings.Contains(err.Error(), "three-letter code") {
			t.Fatalf("expected %q to be rejected, got %v", currency, err)
		}
	}
}
