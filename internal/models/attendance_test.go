package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettucedream/roster/internal/common"
)

func TestNewAttendance(t *testing.T) {
	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	a, err := NewAttendance("LD_00001", in, "evening class")
	require.NoError(t, err)

	assert.Equal(t, 7, int(a.ID.Version()))
	assert.True(t, a.Open())
	assert.Zero(t, a.Duration())

	b, err := NewAttendance("LD_00001", in, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = NewAttendance("", in, "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestAttendance_Close(t *testing.T) {
	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	a, err := NewAttendance("LD_00001", in, "")
	require.NoError(t, err)

	require.ErrorIs(t, a.Close(in.Add(-time.Minute)), common.ErrorValidation)
	require.True(t, a.Open())

	require.NoError(t, a.Close(in.Add(90*time.Minute)))
	assert.False(t, a.Open())
	assert.Equal(t, 90*time.Minute, a.Duration())

	require.ErrorIs(t, a.Close(in.Add(2*time.Hour)), common.ErrorValidation)
}
