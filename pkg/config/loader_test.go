package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAdapterSource, cfg.Conversion.AdapterSource)
	assert.Equal(t, config.DefaultFrameworkSource, cfg.Conversion.FrameworkSource)
	assert.Equal(t, config.DefaultTargetExtension, cfg.Conversion.TargetExtension)
	assert.Equal(t, config.DefaultMigrateWorkers, cfg.Migrate.Workers)
	assert.Equal(t, config.DefaultMigrateStateFile, cfg.Migrate.StateFile)
	assert.Equal(t, []string{"node_modules"}, cfg.Migrate.Exclude)
	assert.Equal(t, config.DefaultCacheSizeMB, cfg.Migrate.CacheSizeMB)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultLogMaxSizeMB, cfg.Logging.MaxSizeMB)
	assert.InDelta(t, config.DefaultSampleRatio, cfg.Telemetry.SampleRatio, 0.0001)
	assert.Empty(t, cfg.Conversion.Tags)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	content := `
conversion:
  adapter_source: "@acme/vue-adapter"
  target_extension: ".tsx"
  global_properties: ["$api", "$bus"]
  instance_imports:
    $store:
      name: useMainStore
      source: "@/stores/main"
  tags:
    el-button:
      tag: Button
      source: "@acme/ui"
      attrs:
        native-type: htmlType
migrate:
  workers: 3
logging:
  level: debug
  format: json
`

	path := writeFile(t, t.TempDir(), ".vue2inula.yaml", content)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "@acme/vue-adapter", cfg.Conversion.AdapterSource)
	assert.Equal(t, ".tsx", cfg.Conversion.TargetExtension)
	assert.Equal(t, []string{"$api", "$bus"}, cfg.Conversion.GlobalProperties)
	assert.Equal(t, "useMainStore", cfg.Conversion.InstanceImports["$store"].Name)
	assert.Equal(t, "@/stores/main", cfg.Conversion.InstanceImports["$store"].Source)

	rule := cfg.Conversion.Tags["el-button"]
	assert.Equal(t, "Button", rule.Tag)
	assert.Equal(t, "@acme/ui", rule.Source)
	assert.Equal(t, "htmlType", rule.Attrs["native-type"])

	assert.Equal(t, 3, cfg.Migrate.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("VUE2INULA_MIGRATE_WORKERS", "7")
	t.Setenv("VUE2INULA_LOGGING_LEVEL", "warn")

	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Migrate.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.yaml", "migrate:\n  workers: -1\n")

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidWorkers)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.yaml", "conversion: [unclosed\n")

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_TagsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tagsPath := writeFile(t, dir, "tags.json", `{"el-input": {"tag": "Input", "source": "@acme/ui", "default": true}}`)
	path := writeFile(t, dir, "cfg.yaml", "conversion:\n  tags_file: "+tagsPath+"\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	rule, ok := cfg.Conversion.Tags["el-input"]
	require.True(t, ok)
	assert.Equal(t, "Input", rule.Tag)
	assert.True(t, rule.Default)
}

func TestLoadConfig_InvalidTagsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tagsPath := writeFile(t, dir, "tags.yaml", "el-input:\n  source: '@acme/ui'\n")
	path := writeFile(t, dir, "cfg.yaml", "conversion:\n  tags_file: "+tagsPath+"\n")

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidTags)
}
