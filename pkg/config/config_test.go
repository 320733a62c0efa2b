package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 6, cfg.Access.GrantHours)
	assert.Equal(t, 2, cfg.Coverage.CriticalMonths)
	assert.Equal(t, 4, cfg.Coverage.WarningMonths)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "SQLite")
	v.Set("ACCESS_APPROVER_IDS", " u1, ,u2 ")
	v.Set("ACCESS_GRANT_HOURS", "3")
	v.Set("REDIS_ADDR", "localhost:6379")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, []string{"u1", "u2"}, cfg.Access.ApproverIDs)
	assert.Equal(t, 3, cfg.Access.GrantHours)
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViper_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("COVERAGE_CRITICAL_MONTHS", "5")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	yaml := `
auto_transfer_type: entrada traspaso
movement_types:
  - name: venta
    sign: -1
  - name: reserva
    sign: 1
    affects_stock: false
facilities:
  - id: canet
    name: Canet
    aliases: ["Planta Canet"]
    receiving_warehouse: Canet
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat.MovementTypes, 2)
	assert.Equal(t, -1, cat.MovementTypes[0].Sign)
	assert.Nil(t, cat.MovementTypes[0].AffectsStock)
	require.NotNil(t, cat.MovementTypes[1].AffectsStock)
	assert.False(t, *cat.MovementTypes[1].AffectsStock)
	require.Len(t, cat.Facilities, 1)
	assert.Equal(t, []string{"Planta Canet"}, cat.Facilities[0].Aliases)
	assert.Equal(t, "entrada traspaso", cat.AutoTransferType)
}

func TestLoadCatalog_Empty(t *testing.T) {
	cat, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Empty(t, cat.MovementTypes)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
