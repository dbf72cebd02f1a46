package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	redisclient "github.com/0unveiled/backend/internal/clients/redis"
	"github.com/0unveiled/backend/internal/db"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
	"github.com/0unveiled/backend/internal/services"
)

func main() {
	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "print the scored standings without touching redis")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New(envutil.Str("MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("connect postgres: %v\n", err)
		os.Exit(1)
	}
	board := repos.NewLeaderboardRepo(postgresService.DB(), log)

	ctx := context.Background()

	if dryRun {
		svc := services.NewLeaderboardService(log, nil, board, nil)
		entries, err := svc.Standings(ctx)
		if err != nil {
			fmt.Printf("compute standings: %v\n", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			fmt.Printf("[dry-run] rank=%d username=%s score=%d\n", entry.Rank, entry.Username, entry.Score)
		}
		fmt.Printf("done; scored=%d\n", len(entries))
		return
	}

	rdb, err := redisclient.New(log)
	if err != nil {
		fmt.Printf("connect redis: %v\n", err)
		os.Exit(1)
	}
	svc := services.NewLeaderboardService(log, rdb, board, nil)

	written, err := svc.Rebuild(ctx)
	if err != nil {
		fmt.Printf("rebuild leaderboard: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done; scored=%d\n", written)
}
