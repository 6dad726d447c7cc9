package server

// WorldConfig captures the per-room tunables. It rides along with join
// responses and keyframes so clients can derive interpolation timing and
// wrap behaviour without hardcoding server values.
type WorldConfig struct {
	Width            float64 `json:"width" yaml:"width"`
	Height           float64 `json:"height" yaml:"height"`
	TickRate         int     `json:"tickRate" yaml:"tick_rate"`
	TargetFoodCount  int     `json:"targetFoodCount" yaml:"target_food_count"`
	MaxClients       int     `json:"maxClients" yaml:"max_clients"`
	KeyframeInterval int     `json:"keyframeInterval" yaml:"keyframe_interval"`
}

// normalized returns a config with defaults applied to every zero field.
func (cfg WorldConfig) normalized() WorldConfig {
	normalized := cfg
	if normalized.Width <= 0 {
		normalized.Width = defaultWorldWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = defaultWorldHeight
	}
	if normalized.TickRate <= 0 {
		normalized.TickRate = tickRate
	}
	if normalized.TargetFoodCount <= 0 {
		normalized.TargetFoodCount = defaultTargetFoodCount
	}
	if normalized.MaxClients <= 0 {
		normalized.MaxClients = defaultMaxClients
	}
	if normalized.KeyframeInterval <= 0 {
		normalized.KeyframeInterval = defaultKeyframeInterval
	}
	return normalized
}

// DefaultWorldConfig returns the stock room tunables.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{}.normalized()
}
