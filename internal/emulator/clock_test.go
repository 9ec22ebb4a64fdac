package emulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDate(t *testing.T) {
	baku, err := LoadZone("Asia/Baku")
	require.NoError(t, err)
	honolulu, err := LoadZone("Pacific/Honolulu")
	require.NoError(t, err)

	lateEvening := time.Date(2023, 3, 1, 22, 0, 0, 0, time.UTC).Unix()

	cases := []struct {
		name  string
		epoch int64
		loc   *time.Location
		want  string
	}{
		{"epoch zero utc", 0, nil, "1970-01-01"},
		{"utc date", lateEvening, nil, "2023-03-01"},
		{"east of utc crosses midnight", lateEvening, baku, "2023-03-02"},
		{"west of utc stays", lateEvening, honolulu, "2023-03-01"},
		{"explicit utc", lateEvening, time.UTC, "2023-03-01"},
		{"zero padded", time.Date(2024, 1, 5, 3, 4, 5, 0, time.UTC).Unix(), nil, "2024-01-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LocalDate(tc.epoch, tc.loc))
		})
	}
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("")
	require.NoError(t, err)
	assert.Nil(t, loc)

	_, err = LoadZone("Mars/Olympus_Mons")
	assert.Error(t, err)
}
