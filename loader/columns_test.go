package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"full_name", "full_name"},
		{"Full Name", "full_name"},
		{" Client-Net ", "client_net"},
		{"Client  Hourly   Rate", "client_hourly_rate"},
		{"DNS", "dns"},
		{"Rôle", "role"},
		{"__Job__Name__", "job_name"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestCheckColumns(t *testing.T) {
	assert.NoError(t, CheckColumns(RequiredColumns))

	header := append([]string{"notes"}, RequiredColumns...)
	assert.NoError(t, CheckColumns(header), "extra columns are allowed")

	err := CheckColumns([]string{ColFullName, ColDate, ColClientNet})
	require.Error(t, err)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Columns, len(RequiredColumns)-3)
	assert.Equal(t, ColJobName, missing.Columns[0])
	assert.Contains(t, err.Error(), "Missing required columns: job_name, shift_name, location")
}
