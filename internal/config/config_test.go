package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TICKET_DISCORD_TOKEN", "token")
	t.Setenv("TICKET_GUILD_ID", "guild")
	t.Setenv("TICKET_SUPPORT_CHANNEL_ID", "support")
	t.Setenv("TICKET_OPEN_CATEGORY_ID", "open")
	t.Setenv("TICKET_CLOSED_CATEGORY_ID", "closed")
	t.Setenv("TICKET_SUPPORT_ROLE_ID", "staff")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CounterBackendFile, cfg.Counter.Backend)
	assert.Equal(t, "ticket_counter.json", cfg.Counter.FilePath)
	assert.Equal(t, "0.0.0.0:3001", cfg.App.Addr())
	assert.Equal(t, "guild", cfg.Ticket.EveryoneRoleID())
	assert.False(t, cfg.Verify.Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("TICKET_SUPPORT_ROLE_ID", "")
	t.Setenv("TICKET_OPEN_CATEGORY_ID", "")

	_, err := Load()
	require.Error(t, err)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.ElementsMatch(t, []string{"TICKET_OPEN_CATEGORY_ID", "TICKET_SUPPORT_ROLE_ID"}, missing.Keys)
}

func TestLoad_PostgresBackendNeedsDSN(t *testing.T) {
	setRequired(t)
	t.Setenv("COUNTER_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"POSTGRES_DSN"}, missing.Keys)
}

func TestLoad_InvalidBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("COUNTER_BACKEND", "etcd")

	_, err := Load()
	assert.ErrorContains(t, err, "COUNTER_BACKEND")
}

func TestVerifyConfig_Enabled(t *testing.T) {
	assert.True(t, VerifyConfig{ChannelID: "c", RoleID: "r"}.Enabled())
	assert.False(t, VerifyConfig{ChannelID: "c"}.Enabled())
}
