package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lifepillar-backend/internal/app"
	"github.com/yungbote/lifepillar-backend/internal/db"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

// Backfills the canonical assessment store from legacy events, one user
// at a time, through the same idempotent writer live traffic uses.
// Wired by hand so the AI client and HTTP stack stay out of the way.
func main() {
	var users idList
	var dryRun bool
	flag.Var(&users, "user", "user id to migrate (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "report what would migrate without writing")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init postgres: %v\n", err)
		os.Exit(1)
	}
	theDB := pg.DB()

	assessmentRepo := repos.NewAssessmentRepo(theDB, log)
	legacyRepo := repos.NewLegacyEntryRepo(theDB, log)
	writer := services.NewAssessmentWriter(log, assessmentRepo, legacyRepo, nil, cfg.DedupWindow)
	reader := services.NewAssessmentReader(log, assessmentRepo, legacyRepo, cfg.AnalysisQualityFloor)
	migrator := services.NewLegacyMigrator(log, legacyRepo, assessmentRepo, writer)

	ctx := context.Background()
	ids := make([]uuid.UUID, 0, len(users))
	for _, raw := range users {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || id == uuid.Nil {
			fmt.Printf("skipping invalid user id %q\n", raw)
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		fmt.Println("no valid -user ids provided")
		return
	}

	for _, userID := range ids {
		if dryRun {
			view, err := reader.GetAssessments(ctx, userID)
			if err != nil {
				fmt.Printf("user %s: read failed: %v\n", userID, err)
				continue
			}
			legacyOnly := 0
			for _, entry := range view {
				if entry.Source == services.ViewSourceLegacy {
					legacyOnly++
				}
			}
			fmt.Printf("user %s: %d legacy-only pillars would migrate\n", userID, legacyOnly)
			continue
		}

		result, err := migrator.MigrateLegacyData(ctx, userID)
		if err != nil {
			fmt.Printf("user %s: migration failed: %v\n", userID, err)
			continue
		}
		fmt.Printf("user %s: migrated=%d skipped=%d errors=%d\n",
			userID, result.MigratedCount, result.SkippedCount, len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
}
