// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	Sheets                  `yaml:"sheets"`
	SMTP                    `yaml:"smtp"`
	Payments                `yaml:"payments"`
	Letters                 `yaml:"letters"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// Sheets структура с адресами веб-приложений справочника.
// ScriptURL — таблица подписок и журнала, StudentScriptURL — клиентская
// таблица со списком студентов.
type Sheets struct {
	ScriptURL        string        `yaml:"script_url" env:"SHEETS_SCRIPT_URL"`
	StudentScriptURL string        `yaml:"student_script_url" env:"SHEETS_STUDENT_SCRIPT_URL"`
	Timeout          time.Duration `yaml:"timeout" env-default:"15s"`
}

// SMTPAccount учётная запись для отправки писем
type SMTPAccount struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// SMTP две учётные записи отправителя: офферы уходят от имени HR,
// остальные письма — от служебного адреса
type SMTP struct {
	Default SMTPAccount `yaml:"default"`
	HR      SMTPAccount `yaml:"hr"`
}

// Payments настройки платёжного провайдера
type Payments struct {
	KeyID         string `yaml:"key_id" env:"PAYMENTS_KEY_ID"`
	KeySecret     string `yaml:"key_secret" env:"PAYMENTS_KEY_SECRET"`
	APIURL        string `yaml:"api_url" env-default:"https://api.razorpay.com/v1"`
	WebhookSecret string `yaml:"webhook_secret" env:"PAYMENTS_WEBHOOK_SECRET"`
	AmountMinor   int    `yaml:"amount_minor" env-default:"99900"`
	Currency      string `yaml:"currency" env-default:"INR"`
}

// Letters пути к шаблонам писем и каталогу для сгенерированных файлов
type Letters struct {
	TemplatesDir string `yaml:"templates_dir" env-default:"templates"`
	OutputDir    string `yaml:"output_dir" env-default:"out"`
	StampBin     string `yaml:"stamp_bin" env-default:"pdfstamp"`
	PreviewBin   string `yaml:"preview_bin" env-default:"pdfpreview"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
