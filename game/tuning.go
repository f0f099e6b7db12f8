package game

// Tuning 模拟参数；随欢迎快照下发，保证本地与远端使用同一组常量
type Tuning struct {
	TicksPerSecond float64 `json:"ticks_per_second" yaml:"ticks_per_second"`
	Seed           int64   `json:"seed" yaml:"seed"`

	PlayerRadius       float64 `json:"player_radius" yaml:"player_radius"`
	PlayerSpeed        float64 `json:"player_speed" yaml:"player_speed"`
	PlayerAcceleration float64 `json:"player_acceleration" yaml:"player_acceleration"`
	InputDeadzone      float64 `json:"input_deadzone" yaml:"input_deadzone"`

	BossRadius       float64 `json:"boss_radius" yaml:"boss_radius"`
	BossWalkSpeed    float64 `json:"boss_walk_speed" yaml:"boss_walk_speed"`
	BossRunSpeed     float64 `json:"boss_run_speed" yaml:"boss_run_speed"`
	FireTimer        float64 `json:"fire_timer" yaml:"fire_timer"`
	MaxEmployees     int     `json:"max_employees" yaml:"max_employees"`
	PlayersPerWorker int     `json:"players_per_worker" yaml:"players_per_worker"`

	NavStep   float64 `json:"nav_step" yaml:"nav_step"`
	NavMargin float64 `json:"nav_margin" yaml:"nav_margin"`
	NavLink   float64 `json:"nav_link" yaml:"nav_link"` // 邻接距离 = NavStep * NavLink
}

// DefaultTuning 20 TPS 及原版手感参数
func DefaultTuning() Tuning {
	return Tuning{
		TicksPerSecond: 20,
		Seed:           1155,

		PlayerRadius:       0.5,
		PlayerSpeed:        4,
		PlayerAcceleration: 30,
		InputDeadzone:      0.1,

		BossRadius:       0.8,
		BossWalkSpeed:    1.5,
		BossRunSpeed:     4,
		FireTimer:        30,
		MaxEmployees:     4,
		PlayersPerWorker: 3,

		NavStep:   0.5,
		NavMargin: 0.3,
		NavLink:   1.5,
	}
}

// TickDuration 固定步长（秒）
func (t Tuning) TickDuration() float64 {
	if t.TicksPerSecond <= 0 {
		return 1.0 / 20
	}
	return 1 / t.TicksPerSecond
}
