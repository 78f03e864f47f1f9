package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// File 非空时同时写文件并按大小切割
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Auth 会话后端：memory（默认，单进程）/ redis（多进程共享）/ jwt（无状态，登出非即时）
type Auth struct {
	Sessions           string
	SessionTTLDays     int
	JWTSecret          string
	JWTIssuer          string
	CleanupIntervalMin int // <=0 关闭定时清理
}

// Store 记录存储：memory（易失 mock）/ mysql / postgres
type Store struct {
	Driver             string
	DSN                string // 连接串自带账号密码
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	CacheEnable bool   `mapstructure:"cache_enable"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

type Seed struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type Config struct {
	App   App
	Log   Log
	Auth  Auth
	Store Store
	Redis Redis `mapstructure:"redis"`
	Seed  Seed
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ttech-shop")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)
	v.SetDefault("auth.sessions", "memory")
	v.SetDefault("auth.sessionttldays", 7) // 与历史行为一致：7 天
	v.SetDefault("auth.jwtissuer", "ttech-shop")
	v.SetDefault("auth.cleanupintervalmin", 60)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("seed.adminname", "Admin User")
	v.SetDefault("seed.adminemail", "admin@ttech.com")
	v.SetDefault("seed.adminpassword", "admin123")
}
