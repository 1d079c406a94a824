package geo

import (
	"context"
	"errors"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
)

// ErrUnavailable is returned when the distance service cannot produce a
// distance. Callers treat it as a normal outcome and fall back to the
// sentinel distance.
var ErrUnavailable = errors.New("distance service unavailable")

// Oracle resolves the road distance in kilometers between two points.
type Oracle interface {
	DistanceKm(ctx context.Context, origin, dest model.Location) (float64, error)
}
