package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/logger"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// Usage example on the command line:
// > PCRM_DB_DRIVER=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	configPtr := flag.String("config", "", "the config file, environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
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

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatal("could not open the sql file", zap.String("file", *filePtr), zap.Error(err))
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			if err := s.Exec(ctx, builder.String()); err != nil {
				log.Fatal("could not execute statement", zap.Int("statement", executed+1), zap.Error(err))
			}
			executed++
			builder = strings.Builder{}
		}
	}
	if err := fileScanner.Err(); err != nil {
		log.Fatal("could not read the sql file", zap.Error(err))
	}
	log.Info("migration finished", zap.String("file", *filePtr), zap.Int("statements", executed))
}
