package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Shopify ShopifyConfig
	Sync    SyncConfig
	Redis   RedisConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	// MaxConcurrentWrites limita las mutaciones simultáneas; debe quedar por debajo de MaxConns
	// para dejar conexiones libres a las lecturas.
	MaxConcurrentWrites int
	ApplySchema         bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT (tokens emitidos por el colaborador de autenticación).
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
	// SwaggerFile es el swagger.json generado con swag init; si no existe no se monta /docs.
	SwaggerFile string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShopifyConfig parámetros del cliente GraphQL de la plataforma externa.
type ShopifyConfig struct {
	APIVersion        string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	// EndpointOverride reemplaza https://<shop>/admin/api/<version>/graphql.json (tests, proxies).
	EndpointOverride string
}

// SyncConfig parámetros del motor de sincronización y métricas.
type SyncConfig struct {
	Interval         time.Duration
	MetricsBatchSize int
	LockTTL          time.Duration
	ResumeOnStart    bool
}

// RedisConfig conexión para el lock por tienda. Addr vacío = sin lock distribuido.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SHOPIFY_API_VERSION, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-sync"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:         getString(v, "DATABASE_URL", ""),
			Host:                getString(v, "DB_HOST", "localhost"),
			Port:                getInt(v, "DB_PORT", 5432),
			User:                getString(v, "DB_USER", "postgres"),
			Password:            getString(v, "DB_PASSWORD", ""),
			DBName:              getString(v, "DB_NAME", "inventario_sync"),
			SSLMode:             getString(v, "DB_SSLMODE", "disable"),
			MaxConns:            getInt(v, "DB_MAX_CONNS", 10),
			MaxConcurrentWrites: getInt(v, "DB_MAX_CONCURRENT_WRITES", 8),
			ApplySchema:         getBool(v, "DB_APPLY_SCHEMA", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-sync"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),

			SwaggerFile: getString(v, "HTTP_SWAGGER_FILE", "./docs/swagger.json"),
		},
		Shopify: ShopifyConfig{
			APIVersion:        getString(v, "SHOPIFY_API_VERSION", "2024-10"),
			RequestsPerSecond: getFloat(v, "SHOPIFY_REQUESTS_PER_SECOND", 2),
			Burst:             getInt(v, "SHOPIFY_BURST", 4),
			Timeout:           getDuration(v, "SHOPIFY_TIMEOUT", 30*time.Second),
			EndpointOverride:  getString(v, "SHOPIFY_ENDPOINT_OVERRIDE", ""),
		},
		Sync: SyncConfig{
			Interval:         getDuration(v, "SYNC_INTERVAL", time.Hour),
			MetricsBatchSize: getInt(v, "METRICS_BATCH_SIZE", 100),
			LockTTL:          getDuration(v, "SYNC_LOCK_TTL", 30*time.Minute),
			ResumeOnStart:    getBool(v, "SYNC_RESUME", true),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
	}

	if cfg.DB.MaxConcurrentWrites <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONCURRENT_WRITES debe ser mayor que 0")
	}
	if cfg.DB.MaxConcurrentWrites >= cfg.DB.MaxConns {
		return nil, fmt.Errorf("DB_MAX_CONCURRENT_WRITES (%d) debe ser menor que DB_MAX_CONNS (%d)",
			cfg.DB.MaxConcurrentWrites, cfg.DB.MaxConns)
	}
	if cfg.Sync.MetricsBatchSize <= 0 {
		cfg.Sync.MetricsBatchSize = 100
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = time.Hour
	}
	if cfg.Sync.LockTTL <= 0 {
		cfg.Sync.LockTTL = 30 * time.Minute
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// getDuration acepta "90s", "15m" o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
