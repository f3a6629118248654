package geodata

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"etlcli/internal/dataprocessing"
	"etlcli/pkg/contracts/domain"
)

// AreaIndex maps a cleaned neighborhood name to its city area.
type AreaIndex map[string]domain.Area

// CleanListings normalizes the text columns and derives neighborhood and
// city from the location column. The location splits on the first "-" into
// neighborhood and city, and the "حي" prefix is stripped from the
// neighborhood.
func CleanListings(listings []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(listings))
	for i, l := range listings {
		l.Location = dataprocessing.NormalizeText(l.Location)
		l.ListTitle = dataprocessing.NormalizeText(l.ListTitle)

		neighborhood, city, found := strings.Cut(l.Location, "-")
		l.Neighborhood = CleanNeighborhoodName(neighborhood)
		if found {
			l.City = strings.TrimSpace(city)
		}
		out[i] = l
	}
	return out
}

// BuildAreaIndex fetches the city's neighborhoods and classifies each one
// that has coordinates. Provider names are cleaned so they line up with the
// listings data.
func BuildAreaIndex(ctx context.Context, client *Client) (AreaIndex, error) {
	neighborhoods, err := client.AllNeighborhoods(ctx)
	if err != nil {
		return nil, err
	}

	index := make(AreaIndex, len(neighborhoods))
	for _, n := range neighborhoods {
		if !n.HasCoordinates() {
			continue
		}
		index[CleanNeighborhoodName(n.Name)] = ClassifyArea(n.Lat, n.Lon)
	}
	return index, nil
}

// ResolveMissing looks up neighborhoods absent from the index through the
// fallback Overpass endpoint, then Nominatim. Lookups for distinct names run
// concurrently up to the given limit. A failed lookup logs and moves on; the
// neighborhood simply stays unresolved.
func ResolveMissing(ctx context.Context, client *Client, index AreaIndex, listings []domain.Listing, maxConcurrent int) {
	names := lo.Uniq(lo.Map(listings, func(l domain.Listing, _ int) string {
		return l.Neighborhood
	}))
	missing := lo.Filter(names, func(name string, _ int) bool {
		_, ok := index[name]
		return !ok && name != ""
	})
	if len(missing) == 0 {
		return
	}

	slog.Info("Resolving neighborhoods through fallback providers",
		slog.Int("count", len(missing)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, name := range missing {
		g.Go(func() error {
			area, ok := resolveOne(gctx, client, name)
			if !ok {
				return nil
			}
			mu.Lock()
			index[name] = area
			mu.Unlock()
			return nil
		})
	}

	// Lookup failures are logged, never returned.
	_ = g.Wait()

	unresolved := lo.Filter(missing, func(name string, _ int) bool {
		_, ok := index[name]
		return !ok
	})
	if len(unresolved) > 0 {
		slog.Warn("Neighborhoods not found by any provider",
			slog.Int("count", len(unresolved)),
			slog.Any("neighborhoods", unresolved))
	}
}

func resolveOne(ctx context.Context, client *Client, name string) (domain.Area, bool) {
	n, err := client.LookupNeighborhood(ctx, name)
	if err != nil {
		slog.Warn("Fallback Overpass lookup failed",
			slog.String("neighborhood", name),
			slog.String("error", err.Error()))
	}
	if n != nil && n.HasCoordinates() {
		slog.Info("Resolved neighborhood through fallback Overpass endpoint",
			slog.String("neighborhood", name))
		return ClassifyArea(n.Lat, n.Lon), true
	}

	n, err = client.SearchNominatim(ctx, name)
	if err != nil {
		slog.Warn("Nominatim lookup failed",
			slog.String("neighborhood", name),
			slog.String("error", err.Error()))
		return domain.AreaUnknown, false
	}
	if n != nil && n.HasCoordinates() {
		slog.Info("Resolved neighborhood through Nominatim",
			slog.String("neighborhood", name))
		return ClassifyArea(n.Lat, n.Lon), true
	}

	slog.Error("No coordinates found for neighborhood",
		slog.String("neighborhood", name))
	return domain.AreaUnknown, false
}

// AssignAreas fills the area column from the index. Neighborhoods without an
// index entry get area unknown.
func AssignAreas(listings []domain.Listing, index AreaIndex) []domain.Listing {
	out := make([]domain.Listing, len(listings))
	for i, l := range listings {
		area, ok := index[l.Neighborhood]
		if !ok {
			area = domain.AreaUnknown
		}
		l.Area = area
		out[i] = l
	}
	return out
}

// FlagPriceOutliers marks listings whose price falls outside the IQR fences.
func FlagPriceOutliers(listings []domain.Listing, k float64) []domain.Listing {
	prices := lo.Map(listings, func(l domain.Listing, _ int) domain.Float {
		return l.Price
	})
	lower, upper := dataprocessing.IQRBounds(prices, k)

	out := make([]domain.Listing, len(listings))
	for i, l := range listings {
		l.PriceOutlier = dataprocessing.IsOutlier(l.Price, lower, upper)
		out[i] = l
	}
	return out
}

// WinsorizePrices clips prices to the quantile bounds into the
// price_winsorized column.
func WinsorizePrices(listings []domain.Listing, low, high float64) []domain.Listing {
	prices := lo.Map(listings, func(l domain.Listing, _ int) domain.Float {
		return l.Price
	})
	clipped := dataprocessing.Winsorize(prices, low, high)

	out := make([]domain.Listing, len(listings))
	for i, l := range listings {
		l.PriceWinsorized = clipped[i]
		out[i] = l
	}
	return out
}

// AreaPrice is the average winsorized price for one area.
type AreaPrice struct {
	Area     domain.Area
	AvgPrice float64
}

// AvgPriceByArea averages the winsorized price per area, sorted by area name.
// Null prices are skipped.
func AvgPriceByArea(listings []domain.Listing) []AreaPrice {
	groups := lo.GroupBy(listings, func(l domain.Listing) domain.Area {
		return l.Area
	})

	out := make([]AreaPrice, 0, len(groups))
	for area, group := range groups {
		prices := lo.Map(group, func(l domain.Listing, _ int) domain.Float {
			return l.PriceWinsorized
		})
		out = append(out, AreaPrice{Area: area, AvgPrice: dataprocessing.Mean(prices)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out
}
