// README: Pure geospatial candidate filter (haversine, sort, tie-break).
package fleet

import (
	"math"
	"sort"

	"gocab/internal/types"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Nearby is a dispatch-eligible captain together with its distance from the
// pickup point.
type Nearby struct {
	Snapshot
	DistanceKm float64
}

// SelectNearby returns the dispatch-eligible candidates within radiusKm of
// center, sorted by ascending distance with captain id as the tie-breaker so
// the ordering is total and reproducible. Invalid geometry degrades to an
// empty result rather than an error: dispatch prefers "no candidates" over
// failing a ride that was already acknowledged.
func SelectNearby(candidates []Snapshot, center types.Point, radiusKm float64) []Nearby {
	if !center.Valid() || radiusKm <= 0 {
		return nil
	}

	var out []Nearby
	for _, c := range candidates {
		if !c.DispatchEligible() || !c.Location.Valid() {
			continue
		}
		d := haversineKm(center, *c.Location)
		if d <= radiusKm {
			out = append(out, Nearby{Snapshot: c, DistanceKm: d})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out
}
