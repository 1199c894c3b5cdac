package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxelnet/internal/network"
	"github.com/annel0/voxelnet/internal/world/gen"
)

// Config корневая структура конфигурации сервера и клиента.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Client        ClientConfig        `yaml:"client"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`
	Transport    string        `yaml:"transport"`
	QueueSize    int           `yaml:"queue_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	TickRate     int           `yaml:"tick_rate"`
	FlushEvery   time.Duration `yaml:"flush_every"`
}

type ClientConfig struct {
	Address      string        `yaml:"address"`
	Transport    string        `yaml:"transport"`
	QueueSize    int           `yaml:"queue_size"`
	ViewRadius   int           `yaml:"view_radius"`
	DialRetries  uint64        `yaml:"dial_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	TickRate     int           `yaml:"tick_rate"`
	RequestRetry time.Duration `yaml:"request_retry"`
}

type StorageConfig struct {
	DataDir  string `yaml:"data_dir"`
	InMemory bool   `yaml:"in_memory"`
	Seed     int64  `yaml:"seed"`
	SeaLevel int32  `yaml:"sea_level"`
	SnowLine int32  `yaml:"snow_line"`
}

type ObservabilityConfig struct {
	MetricsAddr string  `yaml:"metrics_addr"`
	OTLP        bool    `yaml:"otlp"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
	LogDir      string  `yaml:"log_dir"`
	LogLevel    string  `yaml:"log_level"`
	// LogLevels переопределяет уровень консоли по компонентам: network, storage, world, game
	LogLevels    map[string]string `yaml:"log_levels"`
	ProcessStats time.Duration     `yaml:"process_stats_every"`
}

// Default возвращает эталонную конфигурацию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      network.DefaultAddress,
			Transport:    string(network.TransportTCP),
			QueueSize:    256,
			PollInterval: 50 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			TickRate:     20,
			FlushEvery:   30 * time.Second,
		},
		Client: ClientConfig{
			Address:      network.DefaultAddress,
			Transport:    string(network.TransportTCP),
			QueueSize:    256,
			ViewRadius:   4,
			DialRetries:  5,
			DialTimeout:  5 * time.Second,
			PollInterval: 50 * time.Millisecond,
			TickRate:     20,
			RequestRetry: 5 * time.Second,
		},
		Storage: StorageConfig{
			DataDir:  "data",
			Seed:     1,
			SeaLevel: 62,
			SnowLine: 100,
		},
		Observability: ObservabilityConfig{
			MetricsAddr:  ":2112",
			ServiceName:  "voxelnet",
			LogDir:       "logs",
			LogLevel:     "info",
			ProcessStats: time.Minute,
		},
	}
}

// GetServerAddress возвращает адрес с приоритетом: config -> env -> default
func (c *Config) GetServerAddress() string {
	return stringWithEnvFallback(c.Server.Address, "VOXEL_ADDR", network.DefaultAddress)
}

// GetClientAddress возвращает адрес сервера для клиента
func (c *Config) GetClientAddress() string {
	return stringWithEnvFallback(c.Client.Address, "VOXEL_ADDR", network.DefaultAddress)
}

// GetMetricsAddr возвращает адрес эндпоинта /metrics; пустая строка отключает его
func (c *Config) GetMetricsAddr() string {
	return stringWithEnvFallback(c.Observability.MetricsAddr, "VOXEL_METRICS_ADDR", "")
}

// GetSeed возвращает сид мира с поддержкой VOXEL_SEED
func (c *Config) GetSeed() int64 {
	if c.Storage.Seed != 0 {
		return c.Storage.Seed
	}
	if v := os.Getenv("VOXEL_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return seed
		}
	}
	return 1
}

func stringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envVar); env != "" {
		return env
	}
	return def
}

// ServerOptions собирает настройки сетевого сервера
func (c *Config) ServerOptions() network.Options {
	return network.Options{
		Address:      c.GetServerAddress(),
		Transport:    network.Transport(c.Server.Transport),
		QueueSize:    c.Server.QueueSize,
		PollInterval: c.Server.PollInterval,
		WriteTimeout: c.Server.WriteTimeout,
	}
}

// ClientOptions собирает настройки сетевого клиента
func (c *Config) ClientOptions() network.Options {
	return network.Options{
		Address:      c.GetClientAddress(),
		Transport:    network.Transport(c.Client.Transport),
		QueueSize:    c.Client.QueueSize,
		PollInterval: c.Client.PollInterval,
		DialTimeout:  c.Client.DialTimeout,
		DialRetries:  c.Client.DialRetries,
	}
}

// GeneratorOptions собирает параметры генератора ландшафта
func (c *Config) GeneratorOptions() gen.Options {
	opts := gen.DefaultOptions(c.GetSeed())
	if c.Storage.SeaLevel > 0 {
		opts.SeaLevel = c.Storage.SeaLevel
	}
	if c.Storage.SnowLine > 0 {
		opts.SnowLine = c.Storage.SnowLine
	}
	return opts
}

// Validate проверяет значения, которые нельзя исправить подстановкой по умолчанию
func (c *Config) Validate() error {
	for _, t := range []string{c.Server.Transport, c.Client.Transport} {
		switch network.Transport(t) {
		case "", network.TransportTCP, network.TransportKCP, network.TransportWS:
		default:
			return fmt.Errorf("unsupported transport %q", t)
		}
	}
	if c.Client.ViewRadius < 0 {
		return fmt.Errorf("view_radius must not be negative")
	}
	return nil
}

// Load читает YAML файл поверх Default().
// Если path == "", используется ENV VOXEL_CONFIG; без него возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация %s: %w", path, err)
	}
	return cfg, nil
}
