package main

import (
	"context"
	"flag"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzaroyal/client"
	"pizzaroyal/config"
	"pizzaroyal/game"
	"pizzaroyal/journal"
	"pizzaroyal/protocol"
	"pizzaroyal/server"
)

// PizzaRoyal 入口：默认启动 HTTP + WebSocket 服务；
// -local 在进程内跑单机世界，-connect 以机器人身份连接远端服务
func main() {
	var (
		cfgPath string
		envFile string
		addr    string
		local   time.Duration
		connect string
		name    string
	)
	flag.StringVar(&cfgPath, "config", "", "yaml config file (optional)")
	flag.StringVar(&envFile, "env", ".env", "dotenv file with PIZZA_* overrides")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.DurationVar(&local, "local", 0, "run a local single-player world for this long and exit")
	flag.StringVar(&connect, "connect", "", "run a bot against ws://host/ws instead of serving")
	flag.StringVar(&name, "name", "bot", "player name for -local / -connect")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	if err := config.LoadEnv(&cfg, envFile); err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.Log.File, cfg.Log.Level, cfg.Log.Console); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case local > 0:
		runLocal(ctx, cfg, name, local)
	case connect != "":
		if err := runBot(ctx, cfg, connect, name); err != nil {
			server.Log.Errorf("bot: %v", err)
			os.Exit(1)
		}
	default:
		runServer(ctx, cfg)
	}
}

func openJournal(cfg config.Config) journal.Recorder {
	var recs []journal.Recorder
	if cfg.Journal.Dir != "" {
		if err := os.MkdirAll(cfg.Journal.Dir, 0o755); err != nil {
			server.Log.Fatalf("journal dir: %v", err)
		}
		recs = append(recs, journal.NewFileWriter(cfg.Journal.Dir, "events"))
	}
	if cfg.Journal.SQLite != "" {
		idx, err := journal.OpenSQLite(cfg.Journal.SQLite, server.Log.Named("journal"))
		if err != nil {
			server.Log.Fatalf("journal sqlite: %v", err)
		}
		recs = append(recs, idx)
	}
	return journal.Multi(recs...)
}

func runServer(ctx context.Context, cfg config.Config) {
	rec := openJournal(cfg)
	defer func() {
		if err := rec.Close(); err != nil {
			server.Log.Warnf("journal close: %v", err)
		}
	}()

	rm := server.Configure(server.Options{
		DefaultRoom: cfg.Server.Room,
		Codec:       cfg.Server.Codec,
		SendBuffer:  cfg.Server.SendBuffer,
		Tuning:      cfg.Game,
		Journal:     rec,
	})
	// 先预创建一个默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(cfg.Server.Room)

	mux := http.NewServeMux()
	rm.Routes(mux)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("PizzaRoyal listening on %s (codec=%s, room=%s)", cfg.Server.Addr, cfg.Server.Codec, cfg.Server.Room)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	rm.Shutdown()
}

// wander 机器人输入：绕餐厅中心画圈
func wander(t float64) game.Vec2 {
	return game.V(math.Cos(t*0.7), math.Sin(t*0.7))
}

func runLocal(ctx context.Context, cfg config.Config, name string, d time.Duration) {
	s := client.NewLocalSession(game.New(cfg.Game), name, server.Log.Named("local"))
	defer s.Close()
	frame := time.Second / 60
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	deadline := time.After(d)
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			p := s.Player()
			local := s.Connection().(*client.Local)
			server.Log.Infof("local run done: ticks=%d score=%d employed=%v", local.Ticks(), p.Score, p.Employed())
			return
		case <-ticker.C:
			if err := s.Update(frame.Seconds(), wander(s.Time())); err != nil {
				server.Log.Errorf("local update: %v", err)
				return
			}
		}
	}
}

func runBot(ctx context.Context, cfg config.Config, target, name string) error {
	codec, err := protocol.CodecByName(cfg.Server.Codec)
	if err != nil {
		return err
	}
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	w, tr, err := client.Dial(dialCtx, u.String(), codec, server.Log.Named("bot"))
	cancel()
	if err != nil {
		return err
	}
	s, err := client.NewRemoteSession(w, tr, server.Log.Named("bot"))
	if err != nil {
		_ = tr.Close()
		return err
	}
	defer s.Close()

	frame := time.Second / 60
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Update(frame.Seconds(), wander(s.Time())); err != nil {
				return err
			}
		}
	}
}
