package services

import (
	"errors"
	"strings"
	"testing"

	"qr-review-system/models"
)

// memoryCodeStore mirrors the GormStore lookup contract: active codes only,
// matched case-insensitively.
type memoryCodeStore struct {
	codes []*models.AffiliateCode
	err   error
}

func (s *memoryCodeStore) FindActive(code string) (*models.AffiliateCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.codes {
		if c.IsActive && strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return nil, ErrCodeNotFound
}

func TestResolveEmptyCodeMeansNoDiscount(t *testing.T) {
	svc := NewDiscountService(&memoryCodeStore{})
	for _, code := range []string{"", "   "} {
		resolved, err := svc.Resolve(code)
		if err != nil {
			t.Fatalf("empty code should not error, got %v", err)
		}
		if resolved != nil {
			t.Fatalf("empty code should resolve to no discount, got %+v", resolved)
		}
	}
}

func TestResolvePromoCodeCaseInsensitive(t *testing.T) {
	svc := NewDiscountService(&memoryCodeStore{})
	for _, code := range []string{"rabat40", "RABAT40", "Rabat40"} {
		resolved, err := svc.Resolve(code)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", code, err)
		}
		if resolved == nil || resolved.Percent != 40 {
			t.Fatalf("Resolve(%q) = %+v, want 40%% promo", code, resolved)
		}
		if resolved.Source != DiscountSourcePromo || resolved.AffiliateCodeID != "" {
			t.Fatalf("promo code should have no affiliate attribution, got %+v", resolved)
		}
	}
}

func TestResolveAffiliateCode(t *testing.T) {
	svc := NewDiscountService(&memoryCodeStore{codes: []*models.AffiliateCode{
		{ID: "aff_5", Code: "Partner20", Discount: 20, Commission: 10, IsActive: true},
	}})

	resolved, err := svc.Resolve("partner20")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved.Percent != 20 || resolved.AffiliateCodeID != "aff_5" || resolved.Source != DiscountSourceAffiliate {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
}

func TestResolveUnknownCodeIsInvalid(t *testing.T) {
	svc := NewDiscountService(&memoryCodeStore{})
	_, err := svc.Resolve("XYZ123")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("unknown code should be ErrInvalidCode, got %v", err)
	}
}

func TestResolveInactiveCodeNeverValid(t *testing.T) {
	svc := NewDiscountService(&memoryCodeStore{codes: []*models.AffiliateCode{
		{ID: "aff_1", Code: "OLDCODE", Discount: 30, IsActive: false},
	}})

	_, err := svc.Resolve("OLDCODE")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("inactive code must resolve as invalid even on exact match, got %v", err)
	}
}

func TestResolveTransientFailureIsNotInvalidCode(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewDiscountService(&memoryCodeStore{err: storeErr})

	_, err := svc.Resolve("partner20")
	if errors.Is(err, ErrInvalidCode) {
		t.Fatal("a store failure must not be reported as an invalid code")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("store failure should surface to the caller, got %v", err)
	}
}
