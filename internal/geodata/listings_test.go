package geodata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlcli/pkg/contracts/domain"
)

func TestCleanListings(t *testing.T) {
	listings := []domain.Listing{
		{Location: "  حي النرجس - الرياض ", ListTitle: "  شقة   فاخرة "},
		{Location: "العليا-الرياض"},
		{Location: "بدون مدينة"},
	}

	got := CleanListings(listings)
	require.Len(t, got, 3)

	assert.Equal(t, "النرجس", got[0].Neighborhood)
	assert.Equal(t, "الرياض", got[0].City)
	assert.Equal(t, "شقة فاخرة", got[0].ListTitle)

	assert.Equal(t, "العليا", got[1].Neighborhood)
	assert.Equal(t, "الرياض", got[1].City)

	assert.Equal(t, "بدون مدينة", got[2].Neighborhood)
	assert.Empty(t, got[2].City)
}

func TestBuildAreaIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": [
			{"type": "node", "id": 1, "lat": 24.83, "lon": 46.65, "tags": {"name": "حي النرجس"}},
			{"type": "node", "id": 2, "lat": 24.55, "lon": 46.70, "tags": {"name": "الشفا"}},
			{"type": "relation", "id": 3, "tags": {"name": "بلا إحداثيات"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL, srv.URL, srv.URL), t.TempDir())

	index, err := BuildAreaIndex(context.Background(), client)
	require.NoError(t, err)

	// Provider names are cleaned before indexing.
	assert.Equal(t, domain.AreaNorth, index["النرجس"])
	assert.Equal(t, domain.AreaSouth, index["الشفا"])
	_, ok := index["بلا إحداثيات"]
	assert.False(t, ok)
}

func TestResolveMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "search") {
			// Nominatim resolves the second neighborhood.
			if r.URL.Query().Get("q") == "غرب" {
				w.Write([]byte(`[{"lat": "24.70", "lon": "46.60"}]`))
				return
			}
			w.Write([]byte(`[]`))
			return
		}
		// Fallback Overpass resolves only the first neighborhood.
		if strings.Contains(r.URL.Query().Get("data"), `"name"="شرق"`) {
			w.Write([]byte(`{"elements": [
				{"type": "node", "id": 1, "lat": 24.70, "lon": 46.80, "tags": {"name": "شرق"}}
			]}`))
			return
		}
		w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL, srv.URL, srv.URL+"/search"), t.TempDir())

	index := AreaIndex{"معروف": domain.AreaCentral}
	listings := []domain.Listing{
		{Neighborhood: "معروف"},
		{Neighborhood: "شرق"},
		{Neighborhood: "غرب"},
		{Neighborhood: "مفقود"},
	}

	ResolveMissing(context.Background(), client, index, listings, 2)

	assert.Equal(t, domain.AreaEast, index["شرق"])
	assert.Equal(t, domain.AreaWest, index["غرب"])
	_, ok := index["مفقود"]
	assert.False(t, ok)
}

func TestAssignAreas(t *testing.T) {
	index := AreaIndex{"النرجس": domain.AreaNorth}
	listings := []domain.Listing{
		{Neighborhood: "النرجس"},
		{Neighborhood: "مجهول"},
	}

	got := AssignAreas(listings, index)
	assert.Equal(t, domain.AreaNorth, got[0].Area)
	assert.Equal(t, domain.AreaUnknown, got[1].Area)
}

func TestFlagPriceOutliers(t *testing.T) {
	listings := make([]domain.Listing, 0, 9)
	for _, p := range []float64{1, 2, 3, 4, 5, 6, 7, 8} {
		listings = append(listings, domain.Listing{Price: domain.NewFloat(p)})
	}
	listings = append(listings, domain.Listing{Price: domain.NewFloat(100)})

	got := FlagPriceOutliers(listings, 1.5)
	require.Len(t, got, 9)
	assert.False(t, got[0].PriceOutlier)
	assert.True(t, got[8].PriceOutlier)
}

func TestWinsorizePrices(t *testing.T) {
	listings := make([]domain.Listing, 0, 102)
	for i := 0; i <= 100; i++ {
		listings = append(listings, domain.Listing{Price: domain.NewFloat(float64(i))})
	}
	listings = append(listings, domain.Listing{}) // null price stays null

	got := WinsorizePrices(listings, 0.01, 0.99)
	assert.Equal(t, 1.0, got[0].PriceWinsorized.Value)
	assert.Equal(t, 99.0, got[100].PriceWinsorized.Value)
	assert.Equal(t, 50.0, got[50].PriceWinsorized.Value)
	assert.False(t, got[101].PriceWinsorized.Valid)
}

func TestAvgPriceByArea(t *testing.T) {
	listings := []domain.Listing{
		{Area: domain.AreaNorth, PriceWinsorized: domain.NewFloat(100)},
		{Area: domain.AreaNorth, PriceWinsorized: domain.NewFloat(200)},
		{Area: domain.AreaCentral, PriceWinsorized: domain.NewFloat(500)},
		{Area: domain.AreaUnknown, PriceWinsorized: domain.Float{}},
		{Area: domain.AreaUnknown, PriceWinsorized: domain.NewFloat(50)},
	}

	got := AvgPriceByArea(listings)
	require.Len(t, got, 3)

	// Sorted by area name.
	assert.Equal(t, domain.AreaCentral, got[0].Area)
	assert.Equal(t, 500.0, got[0].AvgPrice)
	assert.Equal(t, domain.AreaNorth, got[1].Area)
	assert.Equal(t, 150.0, got[1].AvgPrice)
	assert.Equal(t, domain.AreaUnknown, got[2].Area)
	assert.Equal(t, 50.0, got[2].AvgPrice)
}
