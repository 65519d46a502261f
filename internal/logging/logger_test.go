package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetForTest() {
	CloseAll()
	enabled = false
	logsDir = ""
}

func readCategoryLog(t *testing.T, dir string, category Category) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*_"+string(category)+".log"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s log file", category)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestDisabledLoggingIsNoOp(t *testing.T) {
	defer resetForTest()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(dir, false, "info"))

	Run("should go nowhere")
	Get(CategoryTransport).Error("also nowhere")

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "disabled logging must not create the directory")
}

func TestCategoryFilesAndLevels(t *testing.T) {
	defer resetForTest()

	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true, "info"))

	Transport("request sent to %s", "test/model")
	TransportDebug("filtered at info level")
	Stage1("opinions gathered")
	CloseAll()

	transportLog := readCategoryLog(t, dir, CategoryTransport)
	assert.Contains(t, transportLog, "request sent to test/model")
	assert.Contains(t, transportLog, "INFO")
	assert.NotContains(t, transportLog, "filtered at info level")

	stage1Log := readCategoryLog(t, dir, CategoryStage1)
	assert.Contains(t, stage1Log, "opinions gathered")
	assert.NotContains(t, stage1Log, "request sent", "categories must not share files")
}

func TestDebugLevelPassesDebugMessages(t *testing.T) {
	defer resetForTest()

	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true, "debug"))

	TransportDebug("payload size %d", 512)
	CloseAll()

	transportLog := readCategoryLog(t, dir, CategoryTransport)
	assert.Contains(t, transportLog, "payload size 512")
	assert.Contains(t, transportLog, "DEBUG")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	defer resetForTest()

	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true, "whatever"))

	Run("visible")
	Get(CategoryRun).Debug("invisible")
	CloseAll()

	runLog := readCategoryLog(t, dir, CategoryRun)
	assert.Contains(t, runLog, "visible")
	assert.NotContains(t, runLog, "invisible")
}

func TestGetReturnsSameLoggerPerCategory(t *testing.T) {
	defer resetForTest()

	require.NoError(t, Initialize(t.TempDir(), true, "info"))
	a := Get(CategoryStage2)
	b := Get(CategoryStage2)
	assert.Same(t, a, b)

	if !strings.HasSuffix(string(a.category), "stage2") {
		t.Errorf("unexpected category %q", a.category)
	}
}
