package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxelnet/internal/app"
	"github.com/annel0/voxelnet/internal/config"
	"github.com/annel0/voxelnet/internal/logging"
	"github.com/annel0/voxelnet/internal/network"
	"github.com/annel0/voxelnet/internal/vec"
	"github.com/annel0/voxelnet/internal/world/block"
)

// Безголовый клиент: загружает область вокруг центра и сообщает о прогрессе.
func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (VOXEL_CONFIG if empty)")
		centerX    = flag.Int("x", 0, "view center chunk X")
		centerZ    = flag.Int("z", 0, "view center chunk Z")
		stay       = flag.Bool("stay", false, "keep running after the view area is loaded")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Observability.LogDir)
	if err := logging.InitDefaultLogger("client"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Observability.LogLevel))
	logging.Manager().Configure(cfg.Observability.LogLevels)
	defer logging.Manager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	block.Init()

	conn, err := network.Dial(ctx, cfg.ClientOptions())
	if err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}

	game := app.NewClientGame(conn, cfg.Client.ViewRadius)
	game.Storage().SetRetryAfter(cfg.Client.RequestRetry)
	game.SetCenter(vec.ChunkPos{X: int32(*centerX), Z: int32(*centerZ)})

	tickRate := cfg.Client.TickRate
	if tickRate <= 0 {
		tickRate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	started := time.Now()
	loaded := false
	for !loaded || *stay {
		select {
		case <-ctx.Done():
			logging.Info("Прервано, загружено чанков: %d", game.Storage().Len())
			conn.Close()
			return
		case <-ticker.C:
		}

		if !game.Tick(ctx) {
			logging.Warn("Соединение с сервером закрыто")
			os.Exit(1)
		}
		if !loaded && game.Complete() {
			loaded = true
			logging.Info("✅ Загружено %d чанков за %s", game.Storage().Len(), time.Since(started).Round(time.Millisecond))
		}
	}

	// Отправляем остаток очереди и закрываем соединение
	close(conn.Outbound())
	conn.Wait()
	logging.Info("👋 Клиент завершён")
}
