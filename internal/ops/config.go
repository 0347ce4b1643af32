package ops

import (
	"encoding/json"
	"os"

	"github.com/yanun0323/errors"
)

// FileConfig mirrors the JSON tuning file layout. Every field is optional;
// zero values fall back to the built-in defaults.
type FileConfig struct {
	Queues   QueuesConfig   `json:"queues"`
	Postgres PostgresConfig `json:"postgres"`
	Debug    DebugConfig    `json:"debug"`
}

// QueuesConfig tunes the pipeline queue capacities.
type QueuesConfig struct {
	InputCapacity     int `json:"inputCapacity"`
	BookInboxCapacity int `json:"bookInboxCapacity"`
	OutputCapacity    int `json:"outputCapacity"`
}

// PostgresConfig enables the optional record archive sink.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// DebugConfig captures optional diagnostics.
type DebugConfig struct {
	DumpBooks *bool `json:"dumpBooks"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	InputQueueCapacity  int
	BookInboxCapacity   int
	OutputQueueCapacity int
	PostgresDSN         string
	DumpBooks           bool
}

const (
	defaultInputQueueCapacity  = 100_000
	defaultBookInboxCapacity   = 1024
	defaultOutputQueueCapacity = 100_000
)

// Default returns the built-in tuning values.
func Default() Loaded {
	return Loaded{
		InputQueueCapacity:  defaultInputQueueCapacity,
		BookInboxCapacity:   defaultBookInboxCapacity,
		OutputQueueCapacity: defaultOutputQueueCapacity,
	}
}

// Load reads a JSON config file and resolves it against the defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	loaded := Default()

	if cfg.Queues.InputCapacity < 0 || cfg.Queues.BookInboxCapacity < 0 || cfg.Queues.OutputCapacity < 0 {
		return Loaded{}, errors.New("queue capacities must be >= 0")
	}
	if cfg.Queues.InputCapacity > 0 {
		loaded.InputQueueCapacity = cfg.Queues.InputCapacity
	}
	if cfg.Queues.BookInboxCapacity > 0 {
		loaded.BookInboxCapacity = cfg.Queues.BookInboxCapacity
	}
	if cfg.Queues.OutputCapacity > 0 {
		loaded.OutputQueueCapacity = cfg.Queues.OutputCapacity
	}

	loaded.PostgresDSN = cfg.Postgres.DSN
	if cfg.Debug.DumpBooks != nil {
		loaded.DumpBooks = *cfg.Debug.DumpBooks
	}
	return loaded, nil
}
