package domain

// ListingColumns are the columns the listings CSV must provide.
var ListingColumns = []string{"location", "listTitle", "price"}

// Area is the coarse city region a listing falls into.
type Area string

const (
	AreaCentral Area = "central"
	AreaNorth   Area = "north"
	AreaSouth   Area = "south"
	AreaEast    Area = "east"
	AreaWest    Area = "west"
	AreaUnknown Area = "unknown"
)

// Listing represents one property listing row, with the derived location and
// pricing columns produced by the listings pipeline.
type Listing struct {
	Location  string `json:"location" csv:"location"`
	ListTitle string `json:"listTitle" csv:"listTitle"`
	Price     Float  `json:"price" csv:"price"`

	Neighborhood string `json:"neighborhood" csv:"neighborhood"`
	City         string `json:"city" csv:"city"`
	Area         Area   `json:"area" csv:"area"`

	PriceOutlier    bool  `json:"price__is_outlier" csv:"price__is_outlier"`
	PriceWinsorized Float `json:"price_winsorized" csv:"price_winsorized"`
}

// Neighborhood is a named place with coordinates from the geodata provider.
type Neighborhood struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	OSMID   int64   `json:"osm_id,omitempty"`
	OSMType string  `json:"osm_type,omitempty"`
}

// HasCoordinates reports whether the provider returned usable coordinates.
func (n Neighborhood) HasCoordinates() bool {
	return n.Lat != 0 || n.Lon != 0
}
