package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator resolves discount codes and evaluates the bound promotion against
// a cart. Validate is a dry run; Redeem additionally consumes usage and is
// meant to be called on the order-placement path only.
type Validator interface {
	Validate(ctx context.Context, code, customerID string, lines []CartLine, orderTotal decimal.Decimal) (*Result, error)
	Redeem(ctx context.Context, code, customerID string, lines []CartLine, orderTotal decimal.Decimal) (*Result, error)
}

// RepoValidator implements Validator on top of a Repository. The clock is
// injectable so schedule gating is testable.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate resolves the code, applies the usage-limit precheck, and evaluates
// the promotion. Business rejections come back as Valid=false results; only
// lookup and infrastructure problems are errors.
func (v *RepoValidator) Validate(ctx context.Context, code, customerID string, lines []CartLine, orderTotal decimal.Decimal) (*Result, error) {
	p, err := v.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	res := Evaluate(p, lines, orderTotal, v.now())
	return &res, nil
}

// Redeem is Validate plus usage consumption: on a valid evaluation it
// increments the global and per-customer counters through the repository's
// conditional updates, so concurrent checkouts cannot oversell the limits.
func (v *RepoValidator) Redeem(ctx context.Context, code, customerID string, lines []CartLine, orderTotal decimal.Decimal) (*Result, error) {
	p, err := v.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	res := Evaluate(p, lines, orderTotal, v.now())
	if !res.Valid {
		return &res, nil
	}

	if err := v.repo.ConsumeUsage(ctx, p, customerID); err != nil {
		if errors.Is(err, ErrUsageLimitReached) || errors.Is(err, ErrCustomerLimitReached) {
			return nil, err
		}
		return nil, errors.Wrap(err, "consume promotion usage")
	}

	return &res, nil
}

// lookup resolves the code and screens out promotions whose stored usage
// count already exhausts the limit. The count is a precheck only; the
// authoritative guard is the conditional update in ConsumeUsage.
func (v *RepoValidator) lookup(ctx context.Context, code string) (*Promotion, error) {
	p, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, errors.Wrap(err, "lookup discount code")
	}

	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	return p, nil
}
