package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"memory", DriverMemory, false},
		{" Postgres ", DriverPostgres, false},
		{"MYSQL", DriverMySQL, false},
		{"sqlite", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverMemory, Audit: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, DriverMemory, s.Driver)
	assert.Nil(t, s.Audit)
	assert.NoError(t, s.Ping(ctx))
}

func TestOpen_RequiresDSN(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = Open(ctx, Config{Driver: DriverMySQL})
	assert.ErrorContains(t, err, "MYSQL_DSN")

	_, err = Open(ctx, Config{Driver: "bolt"})
	assert.Error(t, err)
}
