package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "plain",
			in:   "name,age,city\nAlice,30,New York\nBob,25,Los Angeles\n",
			want: [][]string{{"name", "age", "city"}, {"Alice", "30", "New York"}, {"Bob", "25", "Los Angeles"}},
		},
		{
			name: "byte order mark",
			in:   "\ufeffname,age\nAlice,30\n",
			want: [][]string{{"name", "age"}, {"Alice", "30"}},
		},
		{
			name: "blank lines keep row numbers",
			in:   "name,age\n\nAlice,30\n\n\nBob,25\n",
			want: [][]string{{"name", "age"}, nil, {"Alice", "30"}, nil, nil, {"Bob", "25"}},
		},
		{
			name: "ragged rows",
			in:   "name,age,city\nAlice\nBob,25,Perth,extra\n",
			want: [][]string{{"name", "age", "city"}, {"Alice"}, {"Bob", "25", "Perth", "extra"}},
		},
		{
			name: "quoted cell spanning lines",
			in:   "name,notes\n\"Alice\",\"first\nsecond\"\nBob,x\n",
			want: [][]string{{"name", "notes"}, {"Alice", "first\nsecond"}, {"Bob", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSVEmpty(t *testing.T) {
	got, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
