package geodata

import (
	"strings"

	"etlcli/pkg/contracts/domain"
)

// Riyadh area boundaries in decimal degrees.
const (
	NorthBoundary = 24.77728
	SouthBoundary = 24.59848
	WestBoundary  = 46.69277
	EastBoundary  = 46.77850
)

// ClassifyArea maps a coordinate to one of the five city areas. Latitude is
// checked before longitude, so the north and south bands win over east/west.
func ClassifyArea(lat, lon float64) domain.Area {
	switch {
	case lat > NorthBoundary:
		return domain.AreaNorth
	case lat < SouthBoundary:
		return domain.AreaSouth
	case lon < WestBoundary:
		return domain.AreaWest
	case lon > EastBoundary:
		return domain.AreaEast
	default:
		return domain.AreaCentral
	}
}

// CleanNeighborhoodName strips the Arabic "حي" (district) prefix and
// surrounding whitespace so provider names line up with the listings data.
func CleanNeighborhoodName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "حي", ""))
}
