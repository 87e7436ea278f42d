// Package topology builds an in-memory drainage topology from HUC12
// watershed boundary units and answers upstream contributing-area queries
// against it.
package topology

// DrainageUnit represents one HUC12 sub-basin with a defined outflow target.
type DrainageUnit struct {
	ID       string  `json:"huc12"`
	AreaSqKm float64 `json:"area_sqkm"`
	ToHUC    string  `json:"tohuc"`
}

// IsSink reports whether the unit has no downstream neighbor: its ToHUC is
// empty or points back at itself.
func (u DrainageUnit) IsSink() bool {
	return u.ToHUC == "" || u.ToHUC == u.ID
}

// Contribution holds the upstream contributing area entering one internal
// destination unit from outside a queried boundary.
type Contribution struct {
	Destination string   `json:"destination"`
	AreaSqKm    float64  `json:"area_sqkm"`
	Units       []string `json:"units"`
}
