package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/tally/internal/models"
)

// StateKey is the fixed storage name the tracker state lives under.
const StateKey = "task-manager-storage"

// ErrCorruptState is returned when the stored blob cannot be decoded.
var ErrCorruptState = errors.New("stored state is unreadable")

// stateRecord is the JSON layout of the state blob. Timestamps and
// durations are integer milliseconds so that blobs written by earlier
// versions of the app stay readable.
type stateRecord struct {
	Tasks                []taskRecord   `json:"tasks"`
	Settings             settingsRecord `json:"settings"`
	LastActivityAt       *int64         `json:"lastActivityAt"`
	ShowInactiveReminder bool           `json:"showInactiveReminder"`
}

type settingsRecord struct {
	AudioMuted    bool `json:"audioMuted"`
	SchemaVersion int  `json:"schemaVersion"`
}

type taskRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	ExpectedTime int      `json:"expectedTime"`
	Difficulty   int      `json:"difficulty"`
	ElapsedMs    int64    `json:"elapsedMs"`
	Points       int      `json:"points"`
	Status       string   `json:"status"`
	StartedAt    *int64   `json:"startedAt"`
	FinishedAt   *int64   `json:"finishedAt"`
	CreatedAt    int64    `json:"createdAt"`
}

// EncodeState serialises st into the blob format.
func EncodeState(st models.State) ([]byte, error) {
	rec := stateRecord{
		Tasks: make([]taskRecord, 0, len(st.Tasks)),
		Settings: settingsRecord{
			AudioMuted:    st.Settings.AudioMuted,
			SchemaVersion: models.CurrentSchemaVersion,
		},
		LastActivityAt:       toMillis(st.LastActivityAt),
		ShowInactiveReminder: st.ShowInactiveReminder,
	}
	for _, t := range st.Tasks {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		rec.Tasks = append(rec.Tasks, taskRecord{
			ID:           t.ID,
			Title:        t.Title,
			Tags:         tags,
			ExpectedTime: t.ExpectedTime,
			Difficulty:   t.Difficulty,
			ElapsedMs:    t.Elapsed.Milliseconds(),
			Points:       t.Points,
			Status:       string(t.Status),
			StartedAt:    toMillis(t.StartedAt),
			FinishedAt:   toMillis(t.FinishedAt),
			CreatedAt:    t.CreatedAt.UnixMilli(),
		})
	}
	return json.Marshal(rec)
}

// DecodeState parses a state blob, migrating legacy layouts first. It also
// accepts a persisted-store envelope of the form {"state": {...}, "version": n}.
// Missing fields get defaults and unknown fields are ignored. The bool
// reports whether a legacy migration was applied.
func DecodeState(data []byte, now time.Time) (models.State, bool, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.NewState(), false, err
	}
	if raw == nil {
		return models.NewState(), false, errors.New("state blob is null")
	}
	if inner, ok := raw["state"].(map[string]any); ok {
		if _, hasTasks := raw["tasks"]; !hasTasks {
			raw = inner
		}
	}

	migrated := MigrateLegacy(raw)

	st := models.NewState()
	if settings, ok := raw["settings"].(map[string]any); ok {
		st.Settings.AudioMuted, _ = settings["audioMuted"].(bool)
	}
	st.LastActivityAt = fromMillis(raw["lastActivityAt"])
	st.ShowInactiveReminder, _ = raw["showInactiveReminder"].(bool)

	items, _ := raw["tasks"].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		st.Tasks = append(st.Tasks, decodeTask(m, now))
	}

	return st.Normalize(now), migrated, nil
}

func decodeTask(m map[string]any, now time.Time) models.Task {
	t := models.Task{
		ID:           stringField(m, "id"),
		Title:        stringField(m, "title"),
		Tags:         []string{},
		ExpectedTime: models.DefaultExpectedMinutes,
		Difficulty:   models.DefaultDifficulty,
		Status:       models.Status(stringField(m, "status")),
		StartedAt:    fromMillis(m["startedAt"]),
		FinishedAt:   fromMillis(m["finishedAt"]),
		CreatedAt:    now,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if tags, ok := m["tags"].([]any); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				t.Tags = append(t.Tags, s)
			}
		}
	}
	if v, ok := number(m["expectedTime"]); ok {
		t.ExpectedTime = int(v)
	}
	if v, ok := number(m["difficulty"]); ok {
		t.Difficulty = int(v)
	}
	if v, ok := number(m["elapsedMs"]); ok {
		t.Elapsed = time.Duration(v) * time.Millisecond
	}
	if v, ok := number(m["points"]); ok {
		t.Points = int(v)
	}
	if created := fromMillis(m["createdAt"]); created != nil {
		t.CreatedAt = *created
	}
	return t
}

// LoadState reads the tracker state. A missing blob yields an empty state.
// A blob that cannot be decoded yields an empty state and an error wrapping
// ErrCorruptState. Migrated blobs are written back immediately.
func (r *Repository) LoadState(ctx context.Context, now time.Time) (models.State, error) {
	data, err := r.Get(ctx, StateKey)
	if errors.Is(err, ErrNotFound) {
		return models.NewState(), nil
	}
	if err != nil {
		return models.NewState(), err
	}

	st, migrated, err := DecodeState(data, now)
	if err != nil {
		return models.NewState(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if migrated {
		if err := r.SaveState(ctx, st); err != nil {
			return st, fmt.Errorf("save migrated state: %w", err)
		}
	}
	return st, nil
}

// SaveState writes the tracker state.
func (r *Repository) SaveState(ctx context.Context, st models.State) error {
	data, err := EncodeState(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return r.Put(ctx, StateKey, data)
}

// BackupState copies the current raw blob to a timestamped key and returns
// that key. It is used before an unreadable blob gets overwritten.
func (r *Repository) BackupState(ctx context.Context, now time.Time) (string, error) {
	data, err := r.Get(ctx, StateKey)
	if err != nil {
		return "", err
	}
	key := StateKey + ".corrupt-" + strconv.FormatInt(now.Unix(), 10)
	if err := r.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Backups lists the keys written by BackupState.
func (r *Repository) Backups(ctx context.Context) ([]string, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, StateKey+".corrupt-") {
			out = append(out, k)
		}
	}
	return out, nil
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// fromMillis reads a millisecond timestamp; 0, null and non-numbers mean unset.
func fromMillis(v any) *time.Time {
	ms, ok := number(v)
	if !ok || ms == 0 {
		return nil
	}
	t := time.UnixMilli(int64(ms))
	return &t
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
