package models

// Config holds the process settings read from config.json and the environment.
type Config struct {
	DBDriver   string `json:"db_driver"` // "postgres" or "sqlite"
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`
	SQLitePath string `json:"sqlite_path"`

	RedisAddr     string `json:"redis_addr"` // empty disables the redis relay
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	ListenAddr   string   `json:"listen_addr"`
	AllowOrigins []string `json:"allow_origins"`
	JWTSecret    string   `json:"jwt_secret"`

	DefaultRounds  int     `json:"default_rounds"`
	MaxRounds      int     `json:"max_rounds"`
	IdleHours      int     `json:"idle_hours"`
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`
}
