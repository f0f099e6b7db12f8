package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

// Config 服务端完整配置：yaml 文件为底，.env / 环境变量覆盖，命令行参数最后覆盖
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	Game    game.Tuning   `yaml:"game"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	Room       string `yaml:"room"`        // 默认房间
	Codec      string `yaml:"codec"`       // 连接未指定 ?codec= 时使用
	SendBuffer int    `yaml:"send_buffer"` // 每个连接的发送队列长度
}

type LogConfig struct {
	File    string `yaml:"file"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// JournalConfig 事件流水；Dir 为空表示不写文件，SQLite 为空表示不建索引
type JournalConfig struct {
	Dir    string `yaml:"dir"`
	SQLite string `yaml:"sqlite"`
}

// Defaults 默认配置
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":8080",
			Room:       "room-1",
			Codec:      "json",
			SendBuffer: 64,
		},
		Log: LogConfig{
			File:  "app.log",
			Level: "debug",
		},
		Game: game.DefaultTuning(),
	}
}

// Load 读取 yaml 配置；文件中缺失的字段保留默认值。path 为空直接返回默认值
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// LoadEnv 加载 .env 文件（不存在不算错误）并应用 PIZZA_* 覆盖
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return err
	}
	return cfg.Validate()
}

// ApplyEnv 按 PIZZA_* 变量覆盖配置
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PIZZA_ADDR", &cfg.Server.Addr)
	str("PIZZA_ROOM", &cfg.Server.Room)
	str("PIZZA_CODEC", &cfg.Server.Codec)
	str("PIZZA_LOG_FILE", &cfg.Log.File)
	str("PIZZA_LOG_LEVEL", &cfg.Log.Level)
	str("PIZZA_JOURNAL_DIR", &cfg.Journal.Dir)
	str("PIZZA_JOURNAL_SQLITE", &cfg.Journal.SQLite)

	if v, ok := lookup("PIZZA_LOG_CONSOLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PIZZA_LOG_CONSOLE: %w", err)
		}
		cfg.Log.Console = b
	}
	if v, ok := lookup("PIZZA_SEED"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PIZZA_SEED: %w", err)
		}
		cfg.Game.Seed = n
	}
	if v, ok := lookup("PIZZA_TPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PIZZA_TPS: %w", err)
		}
		cfg.Game.TicksPerSecond = f
	}
	return nil
}

// Validate 检查会让模拟或服务无法运行的取值
func (c Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	if c.Server.Room == "" {
		problems = append(problems, "server.room is empty")
	}
	if _, err := protocol.CodecByName(c.Server.Codec); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Server.SendBuffer <= 0 {
		problems = append(problems, "server.send_buffer must be positive")
	}
	g := c.Game
	if g.TicksPerSecond <= 0 {
		problems = append(problems, "game.ticks_per_second must be positive")
	}
	if g.PlayerSpeed <= 0 || g.PlayerAcceleration <= 0 {
		problems = append(problems, "game.player_speed and game.player_acceleration must be positive")
	}
	if g.BossWalkSpeed <= 0 || g.BossRunSpeed <= 0 {
		problems = append(problems, "game boss speeds must be positive")
	}
	if g.NavStep <= 0 {
		problems = append(problems, "game.nav_step must be positive")
	}
	if g.MaxEmployees <= 0 || g.PlayersPerWorker <= 0 {
		problems = append(problems, "game.max_employees and game.players_per_worker must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
