package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sensorlog/core/model"
	"github.com/kilianp07/sensorlog/core/telemetry"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	t.Cleanup(func() {
		cfgPath = ""
		decodeTopic = model.TopicTemperature
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTopicsDefault(t *testing.T) {
	out, err := execute(t, "", "topics", "--config", "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string(model.DefaultTopics()), lines)
}

func TestTopicsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topics:\n  - \"lab/a\"\n  - \"lab/b\"\n"), 0o644))
	out, err := execute(t, "", "topics", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "lab/a\nlab/b\n", out)
}

func TestDecodeArgument(t *testing.T) {
	out, err := execute(t, "", "decode", "--topic", model.TopicHumidity, `{"value": 60.25, "unit": "%"}`)
	require.NoError(t, err)
	assert.Equal(t, "收到主题 home/sensor/humidity 的消息:\n值: 60.25\n单位: %\n--------------------------\n", out)
}

func TestDecodeStdin(t *testing.T) {
	out, err := execute(t, `{"value": 152.3, "unit": "m"}`, "decode", "-t", model.TopicAltitude)
	require.NoError(t, err)
	assert.Contains(t, out, "值: 152.3\n")
	assert.Contains(t, out, model.TopicAltitude)
}

func TestDecodeInvalid(t *testing.T) {
	out, err := execute(t, "", "decode", `{"value": "x"`)
	require.Error(t, err)
	assert.ErrorIs(t, err, telemetry.ErrDecode)
	assert.Empty(t, out)
}
