package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	"workshop-backend/pkg/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestDialect(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DSN = "file::memory:"

	for _, tc := range []struct {
		typ  string
		name string
	}{
		{config.DatabaseMySQL, "mysql"},
		{config.DatabasePostgres, "postgres"},
		{config.DatabaseSQLite, "sqlite"},
	} {
		cfg.Database.Type = tc.typ
		d, err := Dialect(cfg)
		require.NoError(t, err)
		require.Equal(t, tc.name, d.Name())
	}

	cfg.Database.Type = "oracle"
	_, err := Dialect(cfg)
	require.Error(t, err)
}

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Type = config.DatabaseSQLite
	cfg.Database.DSN = "file:db_test_new?mode=memory&cache=shared"

	db, err := New(Params{Config: cfg, Dialector: sqlite.Open(cfg.Database.DSN)})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestDBName(t *testing.T) {
	require.Equal(t, "workshop", DBName(mysql.Open("root:secret@tcp(127.0.0.1:3306)/workshop?parseTime=true")))
	require.Equal(t, "unknown", DBName(mysql.Open("root:secret@tcp(127.0.0.1:3306)/")))
	require.Equal(t, "workshop", DBName(postgres.Open("postgres://u:p@localhost:5432/workshop?sslmode=disable")))
	require.Equal(t, "workshop", DBName(postgres.Open("host=localhost user=u dbname=workshop sslmode=disable")))
	require.Equal(t, "sqlite", DBName(sqlite.Open(":memory:")))
}
