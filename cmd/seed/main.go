package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pouch/internal/config"
	"pouch/internal/domain"
	"pouch/internal/logging"
	"pouch/internal/repository"
)

// Fixed ids so the seeder is re-runnable and environments agree on the
// treasury counterparty.
var (
	systemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	goldAssetID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	gemsAssetID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	demoUserAlice = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	demoUserBob   = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
)

var treasuryFloat = decimal.NewFromInt(1_000_000_000)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("pouch-seed", cfg.LogLevel, cfg.AppEnv)

	treasuryID, err := uuid.Parse(cfg.TreasuryAccountID)
	if err != nil {
		slog.Error("invalid treasury account id", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetimeS: 300, ConnMaxIdleTimeS: 60,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seed(ctx, db, treasuryID); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete", "treasury_account", treasuryID)
}

func seed(ctx context.Context, db *sql.DB, treasuryID uuid.UUID) error {
	assetRepo := repository.NewAssetRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	now := time.Now().UTC()

	assets := []*domain.Asset{
		{ID: goldAssetID, Slug: "gold", Name: "Gold Coins", CreatedAt: now},
		{ID: gemsAssetID, Slug: "gems", Name: "Gems", CreatedAt: now},
	}
	for _, a := range assets {
		if err := assetRepo.Create(ctx, a); err != nil {
			return err
		}
	}

	accounts := []*domain.Account{
		{ID: treasuryID, UserID: systemUserID, AssetID: goldAssetID, AccountType: domain.AccountTypeTreasury, Balance: treasuryFloat},
		{ID: uuid.New(), UserID: demoUserAlice, AssetID: goldAssetID, AccountType: domain.AccountTypeUser, Balance: decimal.Zero},
		{ID: uuid.New(), UserID: demoUserAlice, AssetID: gemsAssetID, AccountType: domain.AccountTypeUser, Balance: decimal.Zero},
		{ID: uuid.New(), UserID: demoUserBob, AssetID: goldAssetID, AccountType: domain.AccountTypeUser, Balance: decimal.Zero},
	}
	for _, a := range accounts {
		a.CreatedAt, a.UpdatedAt = now, now
		if err := accountRepo.Create(ctx, a); err != nil {
			return err
		}
	}

	return nil
}
