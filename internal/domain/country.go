package domain

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Country represents the country data shown in the list.
type Country struct {
	Name          string       `json:"name"`
	Capitals      []string     `json:"capitals"`
	CapitalCoords *Coordinates `json:"capital_coords,omitempty"`
}

// Capital returns the first capital name, or "" when the country has none.
func (c Country) Capital() string {
	if len(c.Capitals) == 0 {
		return ""
	}
	return c.Capitals[0]
}

// HasCapitalCoords reports whether weather can be looked up for the country.
func (c Country) HasCapitalCoords() bool {
	return c.CapitalCoords != nil
}
