package utils

import (
	"encoding/json"
	"log/slog"
)

func SerializeToJSON(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[Utils] Failed to serialize JSON",
			slog.String("error", err.Error()))
		return nil, err
	}
	return data, nil
}

func DeserializeFromJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("[Utils] Failed to deserialize JSON",
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
