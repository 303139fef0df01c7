package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaultsSelectPostgres(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, DBTypePostgres, cfg.Database.Type)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, map[string]string{"app": "backoffice"}, cfg.Loki.Labels)
}

func TestMySQLSelection(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"DB_TYPE":        "MySQL",
		"MYSQL_HOST":     "db.internal",
		"MYSQL_DATABASE": "facility",
	}))
	require.NoError(t, err)

	assert.Equal(t, DBTypeMySQL, cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, "facility", cfg.Database.Name)
}

func TestUnknownDBTypeRejected(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"DB_TYPE": "sqlite"}))
	assert.Error(t, err)
}

func TestProductionRequiresSecret(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"APP_ENV": "production"}))
	assert.Error(t, err)

	cfg, err := fromViper(newViper(map[string]interface{}{"APP_ENV": "production", "JWT_SECRET": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestInvalidTokenTTL(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"TOKEN_TTL": "forever"}))
	assert.Error(t, err)
}

func TestParseLabels(t *testing.T) {
	labels := parseLabels("app=backoffice, env = prod ,broken")
	assert.Equal(t, map[string]string{"app": "backoffice", "env": "prod"}, labels)
}
