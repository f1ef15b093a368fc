package obs

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLogEventEmitsJSON(t *testing.T) {
	logger := Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	LogEvent(map[string]any{"msg": "hello", "command": "add"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["command"] != "add" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
