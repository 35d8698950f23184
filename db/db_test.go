package db

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"users-service/config"
	"users-service/testutil"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Database{
		User:             "app",
		Password:         "p@ss:word/1",
		Host:             "db.internal",
		Port:             5432,
		Name:             "users",
		SSLMode:          "disable",
		StatementTimeout: 2 * time.Second,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "postgresql", u.Scheme)
	require.Equal(t, "app", u.User.Username())
	pw, _ := u.User.Password()
	require.Equal(t, "p@ss:word/1", pw)
	require.Equal(t, "db.internal:5432", u.Host)
	require.Equal(t, "/users", u.Path)
	require.Equal(t, "disable", u.Query().Get("sslmode"))
	require.Equal(t, "2000", u.Query().Get("statement_timeout"))
}

func TestDSN_NoOptionalParams(t *testing.T) {
	dsn := DSN(config.Database{User: "u", Password: "p", Host: "h", Port: 1, Name: "n"})
	require.Equal(t, "postgresql://u:p@h:1/n", dsn)
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return n
}

func unreachable(t *testing.T, retries int) config.Database {
	return config.Database{
		User:           "u",
		Password:       "p",
		Host:           "127.0.0.1",
		Port:           closedPort(t),
		Name:           "users",
		SSLMode:        "disable",
		MaxOpenConns:   1,
		ConnectRetries: retries,
	}
}

func TestOpen_GivesUpAfterRetries(t *testing.T) {
	p, err := Open(context.Background(), unreachable(t, 2), testutil.Logger(t))
	require.Error(t, err)
	require.Nil(t, p)
	require.Contains(t, err.Error(), "after 2 attempts")
}

func TestOpen_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := Open(ctx, unreachable(t, 10), testutil.Logger(t))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, p)
}
