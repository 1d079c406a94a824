package matching

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
)

// UnknownDistanceKm is the sentinel assigned when the distance oracle
// cannot answer for a candidate. Large enough to sort after any real
// distance, finite so the candidate is kept rather than dropped.
const UnknownDistanceKm = 999999.0

// resolveDistances fans out one oracle call per candidate. Each call
// carries its own timeout inside the oracle; a failed lookup degrades
// that single candidate to the sentinel distance and never aborts the
// batch.
func (s *Service) resolveDistances(ctx context.Context, origin model.Location, donors []*model.CandidateDonor) []model.Candidate {
	candidates := make([]model.Candidate, len(donors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentLookups)

	for i, donor := range donors {
		i, donor := i, donor
		g.Go(func() error {
			dest := model.Location{Lat: *donor.Lat, Lng: *donor.Lng}

			km, err := s.oracle.DistanceKm(gctx, origin, dest)
			if err != nil {
				km = UnknownDistanceKm
				if s.metrics != nil {
					s.metrics.DistanceLookups.WithLabelValues("failed").Inc()
				}
			} else if s.metrics != nil {
				s.metrics.DistanceLookups.WithLabelValues("ok").Inc()
			}

			candidates[i] = model.Candidate{
				DonorID:    donor.ID,
				FullName:   donor.FullName,
				BloodGroup: donor.BloodGroup,
				DistanceKm: km,
				Lat:        donor.Lat,
				Lng:        donor.Lng,
				IsReady:    donor.IsReady,
			}
			return nil
		})
	}

	// Goroutines never return an error; Wait only joins them.
	_ = g.Wait()

	return candidates
}

// sortCandidates orders ascending by distance, ties broken by donor id
// for a deterministic ranking.
func sortCandidates(candidates []model.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].DonorID.String() < candidates[j].DonorID.String()
	})
}
