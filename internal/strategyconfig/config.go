package strategyconfig

// Config is the editable parameter set for every strategy the bot runs
type Config struct {
	Version    string     `yaml:"version" json:"version"`
	Strategies []Strategy `yaml:"strategies" json:"strategies"`
}

// Strategy holds one strategy's identity and tunable parameters
type Strategy struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Platform string `yaml:"platform" json:"platform"`

	// Capital allocated to the strategy; used as the starting balance
	// when metrics are computed for this strategy alone
	Allocation float64 `yaml:"allocation" json:"allocation"`

	Params map[string]Param `yaml:"params" json:"params"`
}

// Param is a numeric parameter with optional bounds.
// Min == Max == 0 means unbounded.
type Param struct {
	Value float64 `yaml:"value" json:"value"`
	Min   float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Bounded reports whether the parameter has a range
func (p Param) Bounded() bool {
	return p.Min != 0 || p.Max != 0
}

// Find returns the strategy with the given id
func (c *Config) Find(id string) (*Strategy, bool) {
	for i := range c.Strategies {
		if c.Strategies[i].ID == id {
			return &c.Strategies[i], true
		}
	}
	return nil, false
}

// Enabled returns the ids of enabled strategies
func (c *Config) Enabled() []string {
	ids := make([]string, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		if s.Enabled {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
