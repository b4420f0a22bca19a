package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/commit-swipe/internal/models"
)

// IPProvider performs an IP geolocation lookup against an ip-api compatible endpoint.
type IPProvider struct {
	Endpoint string
	Client   *http.Client
}

func NewIPProvider(endpoint string) *IPProvider {
	return &IPProvider{Endpoint: endpoint, Client: &http.Client{Timeout: 3 * time.Second}}
}

// Locate queries the endpoint and expects {"status":"success","lat":..,"lon":..}.
func (p *IPProvider) Locate(ctx context.Context) (models.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, http.NoBody)
	if err != nil {
		return models.Coordinate{}, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return models.Coordinate{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Coordinate{}, fmt.Errorf("ip lookup status %d", resp.StatusCode)
	}
	var out struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Coordinate{}, err
	}
	if out.Status != "success" {
		return models.Coordinate{}, fmt.Errorf("ip lookup failed: %s", out.Message)
	}
	return models.Coordinate{Lat: out.Lat, Lng: out.Lon}, nil
}
