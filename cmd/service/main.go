package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/logger"
	"gitlab.com/dirk.krummacker/pcrm/internal/service"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// Usage example on the command line:
// > PORT=8080 PCRM_DB_DRIVER=mysql DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	configPath := flag.String("config", "", "the config file, environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("could not load the configuration", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Println("could not create the logger", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	s, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("could not open the database", zap.Error(err))
	}
	defer s.Close()

	opts := []crm.Option{crm.WithSuggestionDays(cfg.Suggestions.Days)}
	scheduler, err := calendar.New(ctx, cfg.Calendar, log)
	switch {
	case err == nil:
		opts = append(opts, crm.WithCalendar(scheduler))
	case !errors.Is(err, calendar.ErrDisabled):
		log.Warn("calendar sync unavailable", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	router := service.New(crm.New(s, log, opts...), log).SetupHttpRouter(cfg.Server.Logging)
	log.Info("starting the web service", zap.Int("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
	if err := router.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatal("web service stopped", zap.Error(err))
	}
}
