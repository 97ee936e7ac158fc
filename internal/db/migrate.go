package db

import "github.com/balkashynov/tally/internal/models"

// legacyStatuses maps the version 0 status vocabulary. Anything not listed
// becomes done.
var legacyStatuses = map[string]models.Status{
	"idle":    models.StatusTodo,
	"running": models.StatusActive,
	"paused":  models.StatusPaused,
}

// schemaVersion reads settings.schemaVersion, treating anything unreadable as 0.
func schemaVersion(raw map[string]any) int {
	settings, _ := raw["settings"].(map[string]any)
	if v, ok := number(settings["schemaVersion"]); ok {
		return int(v)
	}
	return 0
}

// MigrateLegacy upgrades a decoded state blob in place to the current
// schema and reports whether anything was done. Blobs already at the
// current version are left alone, so running it twice is harmless.
//
// Version 0 → 1:
//   - status idle/running/paused → todo/active/paused, anything else → done
//   - actualTime (minutes) → elapsedMs
//   - completedAt → finishedAt
func MigrateLegacy(raw map[string]any) bool {
	if raw == nil || schemaVersion(raw) >= models.CurrentSchemaVersion {
		return false
	}

	if tasks, ok := raw["tasks"].([]any); ok {
		for _, item := range tasks {
			task, ok := item.(map[string]any)
			if !ok {
				continue
			}
			migrateLegacyTask(task)
		}
	}

	settings, _ := raw["settings"].(map[string]any)
	if settings == nil {
		settings = map[string]any{}
	}
	settings["schemaVersion"] = float64(models.CurrentSchemaVersion)
	raw["settings"] = settings
	return true
}

func migrateLegacyTask(task map[string]any) {
	if minutes, ok := number(task["actualTime"]); ok {
		task["elapsedMs"] = minutes * 60 * 1000
	} else if _, ok := number(task["elapsedMs"]); !ok {
		task["elapsedMs"] = float64(0)
	}
	delete(task, "actualTime")

	status, _ := task["status"].(string)
	if mapped, ok := legacyStatuses[status]; ok {
		task["status"] = string(mapped)
	} else {
		task["status"] = string(models.StatusDone)
	}

	if completed, ok := number(task["completedAt"]); ok && completed != 0 {
		task["finishedAt"] = completed
	} else if _, ok := number(task["finishedAt"]); !ok {
		task["finishedAt"] = nil
	}
	delete(task, "completedAt")
}

// number reads a JSON number.
func number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
