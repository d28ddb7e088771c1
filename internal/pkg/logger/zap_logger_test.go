package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversation.log")
	l := NewIsolatedLogger(path)

	l.Info("Orchestrator", "stage reached", map[string]interface{}{"stage": "RETRIEVED"})
	l.Warn("Retriever", "retrieval miss", nil)
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "Orchestrator", lines[0]["module"])
	assert.Equal(t, "stage reached", lines[0]["message"])
	assert.Equal(t, "RETRIEVED", lines[0]["details"].(map[string]interface{})["stage"])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error("Any", "ignored", map[string]interface{}{"error": "boom"})
	assert.NoError(t, l.Sync())
}
