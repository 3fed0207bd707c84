package leveling

type Config struct {
	// XP required to go from level 1 to level 2; each later step grows by
	// Growth.
	BaseXPPerLevel int64
	Growth         float64
	MaxLevel       int
}

func NewDefaultConfig() *Config {
	return &Config{
		BaseXPPerLevel: 100,
		Growth:         1.5,
		MaxLevel:       50,
	}
}
