package main

import (
	"context"
	"errors"
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
	"github.com/annel0/voxelnet/internal/observability"
	"github.com/annel0/voxelnet/internal/storage"
	"github.com/annel0/voxelnet/internal/world"
	"github.com/annel0/voxelnet/internal/world/block"
	"github.com/annel0/voxelnet/internal/world/gen"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config (VOXEL_CONFIG if empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Observability.LogDir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Observability.LogLevel))
	logging.Manager().Configure(cfg.Observability.LogLevels)
	defer logging.Manager().CloseAll()

	logging.Info("🎮 Запуск сервера вокселей...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === НАБЛЮДАЕМОСТЬ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, observability.TelemetryOptions{
		ServiceName: cfg.Observability.ServiceName,
		Enabled:     cfg.Observability.OTLP,
		SampleRatio: cfg.Observability.SampleRatio,
	})
	if err != nil {
		logging.Error("❌ Ошибка инициализации трассировки: %v", err)
		os.Exit(1)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(tctx); err != nil {
			logging.Warn("Ошибка остановки трассировки: %v", err)
		}
	}()

	if addr := cfg.GetMetricsAddr(); addr != "" {
		metrics, err := observability.StartMetricsServer(addr)
		if err != nil {
			logging.Error("❌ Ошибка запуска сервера метрик: %v", err)
			os.Exit(1)
		}
		defer func() {
			mctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metrics.Shutdown(mctx)
		}()
		logging.Info("📈 Метрики: http://%s/metrics", metrics.Addr())
	}

	if every := cfg.Observability.ProcessStats; every > 0 {
		if err := observability.StartProcessMonitor(ctx, every, logging.GetGameLogger()); err != nil {
			logging.Warn("Мониторинг процесса недоступен: %v", err)
		}
	}

	// === МИР ===
	block.Init()

	var store *storage.ChunkStore
	if cfg.Storage.InMemory {
		store, err = storage.NewInMemoryChunkStore()
	} else {
		store, err = storage.NewChunkStore(cfg.Storage.DataDir)
	}
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища чанков: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Ошибка закрытия хранилища: %v", err)
		}
	}()

	generator := gen.NewPerlinGenerator(cfg.GeneratorOptions())
	chunks := world.NewServerChunkStorage(store, generator)
	logging.Info("🌍 Мир: seed=%d, данные=%s", cfg.GetSeed(), cfg.Storage.DataDir)

	// === СЕТЬ ===
	srv, err := network.Listen(cfg.ServerOptions())
	if err != nil {
		logging.Error("❌ Ошибка запуска сервера: %v", err)
		os.Exit(1)
	}
	logging.Info("📡 Сервер слушает %s (%s)", srv.Addr(), cfg.Server.Transport)

	game := app.NewServerGame(srv, chunks, store, cfg.Server.TickRate, cfg.Server.FlushEvery)
	if err := game.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Игровой цикл завершился с ошибкой: %v", err)
	}
	logging.Info("📡 Получен сигнал завершения, остановка...")

	// Цикл остановлен, отправителей в исходящую очередь больше нет
	close(srv.Outbound())
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logging.Warn("Сервер остановлен принудительно: %v", err)
	}

	game.Flush()
	logging.Info("👋 Сервер успешно остановлен")
}
