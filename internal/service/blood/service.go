package blood

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
)

const (
	ruleCacheTTL     = 10 * time.Minute
	ruleCacheCleanup = 30 * time.Minute
)

// Service serves blood reference data and evaluates donor compatibility.
// Compatibility rules are immutable reference data, so rule snapshots
// are cached per (recipient, component) pair.
type Service struct {
	repo  repository.BloodRepository
	rules *cache.Cache
}

func NewService(repo repository.BloodRepository) *Service {
	return &Service{
		repo:  repo,
		rules: cache.New(ruleCacheTTL, ruleCacheCleanup),
	}
}

func (s *Service) ListBloodTypes(ctx context.Context) ([]*model.BloodType, error) {
	types, err := s.repo.ListBloodTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood types: %w", err)
	}
	return types, nil
}

func (s *Service) GetBloodType(ctx context.Context, id int) (*model.BloodType, error) {
	return s.repo.GetBloodType(ctx, id)
}

func (s *Service) ListComponents(ctx context.Context) ([]*model.BloodComponent, error) {
	components, err := s.repo.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return components, nil
}

func (s *Service) ListCompatibilityRules(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error) {
	return s.rulesFor(ctx, recipientBloodTypeID, componentID)
}

// CompatibleDonorTypes returns the deduplicated set of donor blood type
// ids that may supply the given component to the given recipient type.
// The result is sorted for determinism; only rules with is_compatible
// set contribute. Priority level is carried on the rules but does not
// affect the set.
func (s *Service) CompatibleDonorTypes(ctx context.Context, recipientBloodTypeID, componentID int) ([]int, error) {
	rules, err := s.rulesFor(ctx, recipientBloodTypeID, componentID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(rules))
	var types []int
	for _, rule := range rules {
		if !rule.IsCompatible {
			continue
		}
		if _, ok := seen[rule.DonorBloodTypeID]; ok {
			continue
		}
		seen[rule.DonorBloodTypeID] = struct{}{}
		types = append(types, rule.DonorBloodTypeID)
	}

	sort.Ints(types)
	return types, nil
}

func (s *Service) rulesFor(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error) {
	key := fmt.Sprintf("%d:%d", recipientBloodTypeID, componentID)
	if cached, ok := s.rules.Get(key); ok {
		return cached.([]*model.CompatibilityRule), nil
	}

	rules, err := s.repo.ListCompatibilityRules(ctx, recipientBloodTypeID, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load compatibility rules: %w", err)
	}

	s.rules.Set(key, rules, cache.DefaultExpiration)
	return rules, nil
}
