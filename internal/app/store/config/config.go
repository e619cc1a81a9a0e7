package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Policy    PolicyConfig
	Bootstrap BootstrapConfig
	Throttle  ThrottleConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

type RedisConfig struct {
	Addr     string // Адрес Redis (host:port)
	Password string // Пароль Redis
	DB       int    // Номер базы Redis
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий товаров и заказов
}

type JWTConfig struct {
	Secret   string        // Секретный ключ для подписи токенов
	Duration time.Duration // Время жизни токена
}

// PolicyConfig управляет жесткостью ролевой модели каталога
type PolicyConfig struct {
	AdminProductWrites bool // true - создание и обновление товаров только для admin
}

// BootstrapConfig задает учетную запись администратора первого запуска
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

// ThrottleConfig ограничивает частоту неудачных попыток входа
type ThrottleConfig struct {
	MaxAttempts int           // Попыток до блокировки
	Window      time.Duration // Окно блокировки
}

// ExportConfig управляет периодическими снапшотами данных
type ExportConfig struct {
	Dir          string // Каталог для файлов снапшотов
	CronSchedule string // Расписание в формате cron
}

func Load() (*Config, error) {
	jwtDuration, err := time.ParseDuration(getEnv("JWT_DURATION", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_DURATION: %w", err)
	}

	throttleWindow, err := time.ParseDuration(getEnv("LOGIN_THROTTLE_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_THROTTLE_WINDOW: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "orderdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "store_events"),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			Duration: jwtDuration,
		},
		Policy: PolicyConfig{
			AdminProductWrites: getEnvBool("POLICY_ADMIN_PRODUCT_WRITES", false),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", "admin123"),
		},
		Throttle: ThrottleConfig{
			MaxAttempts: getEnvInt("LOGIN_THROTTLE_MAX_ATTEMPTS", 5),
			Window:      throttleWindow,
		},
		Export: ExportConfig{
			Dir:          getEnv("EXPORT_DIR", "./exports"),
			CronSchedule: getEnv("EXPORT_CRON_SCHEDULE", "0 * * * *"),
		},
	}, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
