package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/auth"
	"github.com/frahmantamala/smartsupply/internal/user"
	userPostgres "github.com/frahmantamala/smartsupply/internal/user/postgres"
	"github.com/frahmantamala/smartsupply/internal/warehouse"
	warehousePostgres "github.com/frahmantamala/smartsupply/internal/warehouse/postgres"
	"github.com/frahmantamala/smartsupply/pkg/logger"
)

const seedPasswordEnv = "SEED_PASSWORD"

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo users and warehouses",
	Long:  `Create one demo user per role and a few warehouses. Existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		password := seedPassword
		if password == "" {
			password = os.Getenv(seedPasswordEnv)
		}
		if len(password) < auth.MinPasswordLength {
			return fmt.Errorf("seed password must be at least %d characters (use --password or %s)", auth.MinPasswordLength, seedPasswordEnv)
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Setup(logger.Options{Env: cfg.Env, Level: cfg.Observability.Logging.Level, Format: cfg.Observability.Logging.Format})
		lg := logger.LoggerWrapper()

		db, err := initDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
		if err != nil {
			return fmt.Errorf("failed to initialize gorm: %w", err)
		}

		seeder := &demoSeeder{
			users:      userPostgres.NewUserRepository(gdb),
			hasher:     auth.NewArgon2Hasher(auth.Argon2ParamsFromConfig(cfg.Security.Argon2)),
			warehouses: warehouse.NewService(warehousePostgres.NewWarehouseRepository(sqlx.NewDb(db, sqlDriver)), lg),
			logger:     lg,
		}
		return seeder.Seed(ctx, password)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password for every demo user (defaults to $"+seedPasswordEnv+")")
}

type demoSeeder struct {
	users      user.Directory
	hasher     auth.PasswordHasher
	warehouses warehouse.ServiceAPI
	logger     *slog.Logger
}

// demoEmail gives each role a stable address, e.g. warehouse_op@smartsupply.local.
func demoEmail(role auth.Role) string {
	return strings.ToLower(string(role)) + "@smartsupply.local"
}

var demoWarehouses = []warehouse.CreateWarehouseDTO{
	{Name: "Central Distribution", Location: "Berlin", Type: string(warehouse.TypePhysical)},
	{Name: "North Hub", Location: "Hamburg", Type: string(warehouse.TypePhysical)},
	{Name: "Dropship Partners", Type: string(warehouse.TypeVirtual)},
}

func (s *demoSeeder) Seed(ctx context.Context, password string) error {
	for _, role := range auth.Roles() {
		if err := s.seedUser(ctx, role, password); err != nil {
			return err
		}
	}

	for _, dto := range demoWarehouses {
		_, err := s.warehouses.Create(ctx, dto)
		switch {
		case err == nil:
			s.logger.Info("seeded warehouse", "name", dto.Name)
		case errors.Is(err, internal.ErrWarehouseNameTaken):
			s.logger.Info("warehouse already exists", "name", dto.Name)
		default:
			return fmt.Errorf("seed warehouse %s: %w", dto.Name, err)
		}
	}
	return nil
}

func (s *demoSeeder) seedUser(ctx context.Context, role auth.Role, password string) error {
	email := demoEmail(role)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", email, err)
	}
	if existing != nil {
		s.logger.Info("user already exists", "email", email)
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, user.NewUser{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     strings.ReplaceAll(role.String(), "_", " "),
		Role:         role.String(),
	})
	if err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return fmt.Errorf("create %s: %w", email, err)
	}
	s.logger.Info("seeded user", "email", email, "role", role)
	return nil
}
