package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfce-go/xsmd/internal/domain"
)

func TestParseShutdownType_KnownValues(t *testing.T) {
	cases := map[string]domain.ShutdownType{
		"logout":    domain.ShutdownLogout,
		"halt":      domain.ShutdownHalt,
		"reboot":    domain.ShutdownReboot,
		"suspend":   domain.ShutdownSuspend,
		"hibernate": domain.ShutdownHibernate,
	}
	for s, want := range cases {
		got, err := parseShutdownType(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseShutdownType_RejectsUnknown(t *testing.T) {
	_, err := parseShutdownType("poweroff")
	assert.Error(t, err)
}
