package models

// Address is the subset of a reverse geocoding response we care about.
type Address struct {
	State   string `json:"state"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Location is the region label used to steer song suggestions.
type Location struct {
	Region       string `json:"location"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	IsSouthIndia bool   `json:"is_south_india"`
}

// LanguageOption is one selectable song language for a region.
type LanguageOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
