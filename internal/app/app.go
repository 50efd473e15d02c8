package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/FischerJoao/mindestoque/config"
	"github.com/FischerJoao/mindestoque/internal/backend"
	"github.com/FischerJoao/mindestoque/internal/inventory"
	"github.com/FischerJoao/mindestoque/internal/session"
)

type Application struct {
	appConfig *config.AppConfig
	node      *snowflake.Node
	bus       EventBus.Bus
	sched     *cron.Cron
	backend   *backend.Client
	sessions  *session.Manager
	registry  *inventory.Registry
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ BackendProvider   = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ InventoryProvider = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig      { return a.appConfig }
func (a *Application) Backend() *backend.Client       { return a.backend }
func (a *Application) Sessions() *session.Manager     { return a.sessions }
func (a *Application) Inventory() *inventory.Registry { return a.registry }
func (a *Application) Bus() EventBus.Bus              { return a.bus }

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	a.node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	a.bus = EventBus.New()
	a.backend = backend.NewClient(cfg.Backend.URL,
		time.Duration(cfg.Backend.Timeout)*time.Second, a.node)
	a.sessions = session.NewManager(cfg.Web.Secret,
		time.Duration(cfg.Web.SessionTTL)*time.Minute, a.backend, a.node)
	a.registry = inventory.NewRegistry(a.backend, a.bus)

	zap.S().Infof("backend client ready, url: %s", cfg.Backend.URL)

	a.initJob()
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}
