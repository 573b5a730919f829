package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsWith(opts ...Option) Settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func TestSettingsDSN(t *testing.T) {
	s := settingsWith(
		WithEndpoint("ch", 9000, "stockcast"),
		WithCredentials("default", "secret"),
		WithTimeouts(5*time.Second, 0, time.Minute),
	)

	u, err := url.Parse(s.DSN())
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch:9000", u.Host)
	assert.Equal(t, "/stockcast", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "secret", pw)
	assert.Equal(t, "5s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "30s", u.Query().Get("read_timeout"))
	assert.Equal(t, "60", u.Query().Get("max_execution_time"))
}

func TestSettingsHTTPAndDefaults(t *testing.T) {
	s := settingsWith(WithEndpoint("ch", 0, ""), WithHTTP(true))
	u, err := url.Parse(s.DSN())
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "ch:9000", u.Host)
	assert.Equal(t, "/default", u.Path)
	assert.Empty(t, u.Query().Get("max_execution_time"))
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(WithCredentials("u", "p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
}

func TestSchemaUsesNames(t *testing.T) {
	stmts := Schema("db", "bars", "preds")
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "db.bars")
	assert.Contains(t, stmts[2], "db.preds")
}
