package config

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/subosito/gotenv"
	"github/chapool/go-remotesigner/internal/util"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// Service is the environment-based configuration of the CLI and the lite
// signer. Secrets are redacted when the config is printed.
type Service struct {
	Custodian Custodian
	Echo      EchoServer
	Keystore  Keystore
	Logger    Logger
}

// Custodian configures the API client.
type Custodian struct {
	BaseURL string
	APIKey  string `json:"-"`
	Timeout time.Duration
}

// EchoServer configures the lite signer HTTP server.
type EchoServer struct {
	ListenAddress      string
	APIKey             string `json:"-"`
	EnableMetrics      bool
	GracefulShutdownMs int
	// CORSAllowedOrigins enables CORS for the listed origins when non-empty.
	CORSAllowedOrigins []string
}

// Keystore configures the lite signer's encrypted key file.
type Keystore struct {
	Path       string
	Passphrase string `json:"-"`
	LightKDF   bool
}

// Logger configures zerolog output.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// New builds a logger from the config. An unparsable level falls back to
// info.
func (l Logger) New() zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if l.PrettyPrintConsole {
		logger = logger.Output(zerolog.NewConsoleWriter())
	}

	return logger
}

var loadDotEnv sync.Once

// DefaultServiceConfigFromEnv returns the service config filled from the
// environment, loading a local .env file once if present.
func DefaultServiceConfigFromEnv() Service {
	loadDotEnv.Do(func() {
		_ = gotenv.Load()
	})

	return Service{
		Custodian: Custodian{
			BaseURL: util.GetEnv("CUSTODIAN_BASE_URL", custodian.DefaultBaseURL),
			APIKey:  util.GetEnv("CUSTODIAN_API_KEY", ""),
			Timeout: time.Duration(util.GetEnvAsInt("CUSTODIAN_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		Echo: EchoServer{
			ListenAddress:      util.GetEnv("LITESIGNER_LISTEN_ADDRESS", ":9080"),
			APIKey:             util.GetEnv("LITESIGNER_API_KEY", ""),
			EnableMetrics:      util.GetEnvAsBool("LITESIGNER_ENABLE_METRICS", true),
			GracefulShutdownMs: util.GetEnvAsInt("LITESIGNER_GRACEFUL_SHUTDOWN_MS", 5000),
			CORSAllowedOrigins: util.GetEnvAsStringArr("LITESIGNER_CORS_ALLOWED_ORIGINS", nil),
		},
		Keystore: Keystore{
			Path:       util.GetEnv("LITESIGNER_KEYSTORE_PATH", "keystore.json"),
			Passphrase: util.GetEnv("LITESIGNER_KEYSTORE_PASSPHRASE", ""),
			LightKDF:   util.GetEnvAsBool("LITESIGNER_KEYSTORE_LIGHT_KDF", false),
		},
		Logger: Logger{
			Level:              util.GetEnv("LOG_LEVEL", "info"),
			PrettyPrintConsole: util.GetEnvAsBool("LOG_PRETTY_PRINT_CONSOLE", false),
		},
	}
}
