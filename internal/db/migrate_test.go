package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/models"
)

func decodeRaw(t *testing.T, blob string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &raw))
	return raw
}

func TestMigrateLegacy_Task(t *testing.T) {
	raw := decodeRaw(t, `{"tasks":[{"id":"a","status":"running","actualTime":10,"completedAt":1000}]}`)

	require.True(t, MigrateLegacy(raw))

	task := raw["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, "active", task["status"])
	assert.Equal(t, float64(600000), task["elapsedMs"])
	assert.Equal(t, float64(1000), task["finishedAt"])
	assert.NotContains(t, task, "actualTime")
	assert.NotContains(t, task, "completedAt")
	assert.Equal(t, float64(1), raw["settings"].(map[string]any)["schemaVersion"])
}

func TestMigrateLegacy_StatusMapping(t *testing.T) {
	tests := map[string]string{
		"idle":      "todo",
		"running":   "active",
		"paused":    "paused",
		"completed": "done",
		"":          "done",
	}
	for legacy, want := range tests {
		t.Run(legacy, func(t *testing.T) {
			raw := map[string]any{"tasks": []any{map[string]any{"status": legacy}}}
			MigrateLegacy(raw)
			task := raw["tasks"].([]any)[0].(map[string]any)
			assert.Equal(t, want, task["status"])
		})
	}
}

func TestMigrateLegacy_MissingFields(t *testing.T) {
	raw := decodeRaw(t, `{"tasks":[{"id":"a","status":"idle","completedAt":0}],"settings":{"audioMuted":true}}`)
	require.True(t, MigrateLegacy(raw))

	task := raw["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(0), task["elapsedMs"])
	assert.Nil(t, task["finishedAt"])
	assert.Equal(t, true, raw["settings"].(map[string]any)["audioMuted"])
}

func TestMigrateLegacy_Idempotent(t *testing.T) {
	raw := decodeRaw(t, `{"tasks":[{"id":"a","status":"running","actualTime":10}]}`)
	require.True(t, MigrateLegacy(raw))
	once, err := json.Marshal(raw)
	require.NoError(t, err)

	assert.False(t, MigrateLegacy(raw))
	twice, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(once), string(twice))
}

func TestMigrateLegacy_CurrentVersionUntouched(t *testing.T) {
	raw := decodeRaw(t, `{"tasks":[{"id":"a","status":"weird","elapsedMs":5}],"settings":{"schemaVersion":1}}`)
	assert.False(t, MigrateLegacy(raw))
	task := raw["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, "weird", task["status"])
}

func TestDecodeState_LegacyBlob(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	blob := `{"tasks":[{"id":"a","title":"old","tags":["x"],"expectedTime":20,"difficulty":2,"status":"running","actualTime":10,"completedAt":1000,"startedAt":9000000,"createdAt":500}]}`

	st, migrated, err := DecodeState([]byte(blob), now)
	require.NoError(t, err)
	assert.True(t, migrated)
	require.Len(t, st.Tasks, 1)

	task := st.Tasks[0]
	assert.Equal(t, models.StatusActive, task.Status)
	assert.Equal(t, 10*time.Minute, task.Elapsed)
	assert.Nil(t, task.FinishedAt, "finishedAt is only kept on done tasks")
	require.NotNil(t, task.StartedAt)
	assert.Equal(t, int64(9_000_000), task.StartedAt.UnixMilli())
	assert.Equal(t, int64(500), task.CreatedAt.UnixMilli())
	assert.Equal(t, models.CurrentSchemaVersion, st.Settings.SchemaVersion)
}

func TestDecodeState_Envelope(t *testing.T) {
	blob := `{"state":{"tasks":[{"id":"a","title":"t","status":"paused","elapsedMs":1500}],"settings":{"audioMuted":true,"schemaVersion":1},"showInactiveReminder":true,"lastActivityAt":42},"version":0}`

	st, migrated, err := DecodeState([]byte(blob), time.Now())
	require.NoError(t, err)
	assert.False(t, migrated)
	require.Len(t, st.Tasks, 1)
	assert.Equal(t, 1500*time.Millisecond, st.Tasks[0].Elapsed)
	assert.True(t, st.Settings.AudioMuted)
	assert.True(t, st.ShowInactiveReminder)
	require.NotNil(t, st.LastActivityAt)
	assert.Equal(t, int64(42), st.LastActivityAt.UnixMilli())
}

func TestDecodeState_Lenient(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	blob := `{"settings":{"schemaVersion":1},"extra":[1,2],"tasks":[
		{"title":"no id","status":"todo","tags":["a",3,null]},
		{"id":"d","title":"dup","status":"todo"},
		{"id":"d","title":"dup again","status":"todo"},
		{"id":"e","title":"garbage","status":"flying","difficulty":"hard","expectedTime":-5},
		"not an object"
	]}`

	st, _, err := DecodeState([]byte(blob), now)
	require.NoError(t, err)
	require.Len(t, st.Tasks, 3)

	assert.NotEmpty(t, st.Tasks[0].ID)
	assert.Equal(t, []string{"a"}, st.Tasks[0].Tags)
	assert.Equal(t, now, st.Tasks[0].CreatedAt)

	assert.Equal(t, "dup", st.Tasks[1].Title)

	garbage := st.Tasks[2]
	assert.Equal(t, models.StatusTodo, garbage.Status)
	assert.Equal(t, models.DefaultDifficulty, garbage.Difficulty)
	assert.Equal(t, models.DefaultExpectedMinutes, garbage.ExpectedTime)
}

func TestDecodeState_Invalid(t *testing.T) {
	for _, blob := range []string{"", "{", "null", "[1,2]"} {
		_, _, err := DecodeState([]byte(blob), time.Now())
		assert.Error(t, err, blob)
	}
}

func TestEncodeState_WireNames(t *testing.T) {
	now := time.UnixMilli(2_000_000)
	st, _ := models.AddTask(models.NewState(), models.NewTask{Title: "x"}, "id1", now)
	st, _ = models.StartTask(st, "id1", now)

	data, err := EncodeState(st)
	require.NoError(t, err)

	raw := decodeRaw(t, string(data))
	task := raw["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(2_000_000), task["startedAt"])
	assert.Equal(t, float64(0), task["elapsedMs"])
	assert.Nil(t, task["finishedAt"])
	assert.Equal(t, []any{}, task["tags"])
	assert.Equal(t, float64(2_000_000), raw["lastActivityAt"])
	assert.Equal(t, float64(1), raw["settings"].(map[string]any)["schemaVersion"])
}
