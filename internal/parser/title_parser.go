package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/balkashynov/tally/internal/timecalc"
)

// ParsedTask represents a task parsed from quick-add syntax
type ParsedTask struct {
	Title        string
	Tags         []string
	ExpectedTime int // minutes, 0 if not given
	Difficulty   int // 0 if not given
	Errors       []string
}

var (
	tagRegex        = regexp.MustCompile(`#([\p{L}\p{N}_,-]+)`)
	expectedRegex   = regexp.MustCompile(`(?:^|\s)~(\S+)`)
	difficultyRegex = regexp.MustCompile(`(?:^|\s)!(\S+)`)
	tagSplitRegex   = regexp.MustCompile(`[,\s#]+`)
)

// ParseTitle extracts metadata from a task title using quick-add syntax
// Syntax: "Task title #tag1,tag2 ~45m !3"
func ParseTitle(input string) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Tags:   []string{},
		Errors: []string{},
	}

	// Extract tags (#tag1,tag2 or #tag1 #tag2)
	for _, match := range tagRegex.FindAllStringSubmatch(input, -1) {
		result.Tags = appendUnique(result.Tags, ParseTags(match[1])...)
	}
	input = tagRegex.ReplaceAllString(input, "")

	// Extract expected time (~45m, ~1h30m, ~90)
	if m := expectedRegex.FindStringSubmatch(input); len(m) > 1 {
		minutes, err := ParseExpected(m[1])
		if err != nil {
			result.Errors = append(result.Errors, "Invalid expected time '"+m[1]+"': "+err.Error())
		} else {
			result.ExpectedTime = minutes
		}
		input = expectedRegex.ReplaceAllString(input, " ")
	}

	// Extract difficulty (!1 .. !5)
	if m := difficultyRegex.FindStringSubmatch(input); len(m) > 1 {
		difficulty, err := ParseDifficulty(m[1])
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Difficulty = difficulty
		}
		input = difficultyRegex.ReplaceAllString(input, " ")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")

	return result
}

// ParseTags splits free-form tag input on commas, whitespace and '#'.
// Empty pieces and repeats are dropped.
func ParseTags(input string) []string {
	return appendUnique([]string{}, tagSplitRegex.Split(input, -1)...)
}

// ParseDifficulty parses a difficulty between 1 and 5
func ParseDifficulty(input string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || d < timecalc.MinDifficulty || d > timecalc.MaxDifficulty {
		return 0, &RangeError{Field: "difficulty", Value: input, Min: timecalc.MinDifficulty, Max: timecalc.MaxDifficulty}
	}
	return d, nil
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, item)
		}
	}
	return dst
}
