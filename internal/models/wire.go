package models

// APIProfile is the flat profile shape served by /api/profiles.
type APIProfile struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Bio         string   `json:"bio"`
	Stack       []string `json:"stack"`
	Image       string   `json:"image"`
	LocationLat *float64 `json:"location_lat"`
	LocationLng *float64 `json:"location_lng"`
	MatchScore  int      `json:"match_score"`
	Distance    *int     `json:"distance,omitempty"`
}

// Normalize folds the flat lat/lng pair into a nested Location.
// A profile with neither field has no location.
func (p APIProfile) Normalize() Profile {
	out := Profile{
		ID:         p.ID,
		Name:       p.Name,
		Role:       p.Role,
		Bio:        p.Bio,
		Stack:      p.Stack,
		Image:      p.Image,
		MatchScore: p.MatchScore,
		Distance:   p.Distance,
	}
	if out.Stack == nil {
		out.Stack = []string{}
	}
	if p.LocationLat != nil || p.LocationLng != nil {
		var c Coordinate
		if p.LocationLat != nil {
			c.Lat = *p.LocationLat
		}
		if p.LocationLng != nil {
			c.Lng = *p.LocationLng
		}
		out.Location = &c
	}
	return out
}

// NormalizeAll maps a profile list, never returning nil.
func NormalizeAll(in []APIProfile) []Profile {
	out := make([]Profile, 0, len(in))
	for _, p := range in {
		out = append(out, p.Normalize())
	}
	return out
}
