package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ParsedTask
	}{
		{
			name:  "plain title",
			input: "write the report",
			want:  ParsedTask{Title: "write the report", Tags: []string{}, Errors: []string{}},
		},
		{
			name:  "all markers",
			input: "Fix login bug #work,backend ~45m !4",
			want: ParsedTask{
				Title:        "Fix login bug",
				Tags:         []string{"work", "backend"},
				ExpectedTime: 45,
				Difficulty:   4,
				Errors:       []string{},
			},
		},
		{
			name:  "markers in the middle",
			input: "#home clean ~1h30m the kitchen #chores",
			want: ParsedTask{
				Title:        "clean the kitchen",
				Tags:         []string{"home", "chores"},
				ExpectedTime: 90,
				Errors:       []string{},
			},
		},
		{
			name:  "unicode tags",
			input: "Отчёт #работа",
			want:  ParsedTask{Title: "Отчёт", Tags: []string{"работа"}, Errors: []string{}},
		},
		{
			name:  "bang inside a word is kept",
			input: "ship it! ~20",
			want:  ParsedTask{Title: "ship it!", Tags: []string{}, ExpectedTime: 20, Errors: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTitle(tt.input))
		})
	}
}

func TestParseTitle_Errors(t *testing.T) {
	got := ParseTitle("task ~soon !9")
	assert.Equal(t, "task", got.Title)
	assert.Zero(t, got.ExpectedTime)
	assert.Zero(t, got.Difficulty)
	require.Len(t, got.Errors, 2)
	assert.Contains(t, got.Errors[0], "expected time")
	assert.Contains(t, got.Errors[1], "difficulty")
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("#a, b  #c,,a"))
	assert.Empty(t, ParseTags("  ,# "))
}

func TestParseExpected(t *testing.T) {
	valid := map[string]int{
		"45":       45,
		"45m":      45,
		"1h30m":    90,
		"90s":      2,
		"2 hours":  120,
		"20 min":   20,
		" 1 Hour ": 60,
		"1440":     1440,
	}
	for in, want := range valid {
		got, err := ParseExpected(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0", "-5", "abc", "1441", "2 days"} {
		_, err := ParseExpected(in)
		assert.Error(t, err, in)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("5")
	require.NoError(t, err)
	assert.Equal(t, 5, d)

	_, err = ParseDifficulty("0")
	var rangeErr *RangeError
	assert.ErrorAs(t, err, &rangeErr)
}
