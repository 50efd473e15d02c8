package config

import (
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid           string `yaml:"appid" json:"appid"`
	Location        string `yaml:"location" json:"location"`
	Workdir         string `yaml:"workdir" json:"workdir"`
	RefreshInterval int    `yaml:"refresh_interval" json:"refresh_interval"` // seconds, 0 disables the job
	Debug           bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host        string `yaml:"host" json:"host"`
	Port        int    `yaml:"port" json:"port"`
	Secret      string `yaml:"secret" json:"secret"`
	SessionName string `yaml:"session_name" json:"session_name"`
	SessionTTL  int    `yaml:"session_ttl" json:"session_ttl"` // minutes
}

type BackendConfig struct {
	URL     string `yaml:"url" json:"url"`
	Timeout int    `yaml:"timeout" json:"timeout"` // seconds, 0 means no timeout
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Logger  LoggerConfig  `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:           "mindestoque",
		Location:        "America/Sao_Paulo",
		Workdir:         "/var/mindestoque",
		RefreshInterval: 300,
		Debug:           false,
	},
	Web: WebConfig{
		Host:        "0.0.0.0",
		Port:        1820,
		Secret:      "9b6de5cc-estoque-1820-8888-secret",
		SessionName: "mind_session",
		SessionTTL:  480,
	},
	Backend: BackendConfig{
		URL:     "http://localhost:3000",
		Timeout: 30,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/mindestoque/mindestoque.log",
	},
}

func setEnvString(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

func setEnvBool(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = strings.EqualFold(v, "true") || v == "1"
	}
}

// LoadConfig reads the YAML config file over the defaults and then applies
// MINDESTOQUE_* environment overrides. A missing file is not an error; the
// defaults stand.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig

	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvString("MINDESTOQUE_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvString("MINDESTOQUE_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvInt("MINDESTOQUE_SYSTEM_REFRESH_INTERVAL", &cfg.System.RefreshInterval)
	setEnvBool("MINDESTOQUE_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvString("MINDESTOQUE_WEB_HOST", &cfg.Web.Host)
	setEnvInt("MINDESTOQUE_WEB_PORT", &cfg.Web.Port)
	setEnvString("MINDESTOQUE_WEB_SECRET", &cfg.Web.Secret)
	setEnvString("MINDESTOQUE_WEB_SESSION_NAME", &cfg.Web.SessionName)
	setEnvInt("MINDESTOQUE_WEB_SESSION_TTL", &cfg.Web.SessionTTL)
	setEnvString("MINDESTOQUE_BACKEND_URL", &cfg.Backend.URL)
	setEnvInt("MINDESTOQUE_BACKEND_TIMEOUT", &cfg.Backend.Timeout)
	setEnvString("MINDESTOQUE_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBool("MINDESTOQUE_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvString("MINDESTOQUE_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
