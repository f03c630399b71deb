package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ModePSToJSON, cfg.Mode)
	assert.Equal(t, "  ", cfg.JSON.Indent)
	assert.Equal(t, 2, cfg.YAML.Indent)
	assert.Equal(t, 4, cfg.PS.Indent)
	assert.Equal(t, KeyCaseNone, cfg.Naming.KeyCase)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.False(t, cfg.Dev.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
mode: json2ps
json:
  indent: "\t"
ps:
  indent: 2
naming:
  key_case: snake
  key_mappings:
    "userID": "user_id"
batch:
  workers: 8
  out_dir: "build"
dev:
  debug: true
`
	path := writeConfig(t, t.TempDir(), "config.yml", yamlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ModeJSONToPS, cfg.Mode)
	assert.Equal(t, "\t", cfg.JSON.Indent)
	assert.Equal(t, 2, cfg.PS.Indent)
	assert.Equal(t, 2, cfg.YAML.Indent, "unset values keep defaults")
	assert.Equal(t, KeyCaseSnake, cfg.Naming.KeyCase)
	assert.Equal(t, "user_id", cfg.Naming.KeyMappings["userID"])
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "build", cfg.Batch.OutDir)
	assert.True(t, cfg.Dev.Debug)
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "invalid.yml", "mode: \"ps2json\"\ninvalid_yaml: [unclosed array\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_ValidateRejectsInvalidFileValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"mode", "mode: xml2ps\n", "invalid mode 'xml2ps'"},
		{"key case", "naming:\n  key_case: title\n", "invalid key case 'title'"},
		{"json indent", "json:\n  indent: \"--\"\n", "invalid JSON indent"},
		{"ps indent", "ps:\n  indent: -1\n", "invalid PS indent"},
		{"workers", "batch:\n  workers: 0\n", "invalid worker count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yml", tt.content)

			_, err := LoadConfig(path)
			require.NoError(t, err, "file values are validated after overrides")

			_, err = LoadConfigWithCLI(path, Overrides{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConfig_OverrideReplacesInvalidFileValue(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yml", "mode: xml2ps\nbatch:\n  workers: 0\n")

	_, err := LoadConfigWithCLI(path, Overrides{Mode: ModeFormat})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid worker count")

	cfg, err := LoadConfigWithCLI(path, Overrides{Mode: ModeFormat, Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, ModeFormat, cfg.Mode)
	assert.Equal(t, 3, cfg.Batch.Workers)
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpDir, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)

	subDir := filepath.Join(tmpDir, "project", "sub")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	configPath := writeConfig(t, filepath.Join(tmpDir, "project"), ".psconv.yml", "mode: fmt\n")

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalDir) }()

	require.NoError(t, os.Chdir(subDir))
	assert.Equal(t, configPath, FindConfigFile())
}

func TestConfig_KeyName(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "firstName", cfg.KeyName("firstName"))
	assert.False(t, cfg.RenamesKeys())

	cfg.Naming.KeyCase = KeyCaseSnake
	assert.True(t, cfg.RenamesKeys())
	assert.Equal(t, "first_name", cfg.KeyName("firstName"))
	assert.Equal(t, "first_name", cfg.KeyName("first name"))

	cfg.Naming.KeyMappings["firstName"] = "given"
	assert.Equal(t, "given", cfg.KeyName("firstName"))

	cfg.Naming.KeyCase = KeyCaseCamel
	assert.Equal(t, "UserId", cfg.KeyName("user_id"))

	cfg.Naming.KeyCase = KeyCaseLowerCamel
	assert.Equal(t, "userId", cfg.KeyName("user-id"))

	cfg.Naming.KeyCase = KeyCaseKebab
	assert.Equal(t, "user-id", cfg.KeyName("userId"))

	cfg.Naming.KeyCase = KeyCaseScreamingSnake
	assert.Equal(t, "USER_ID", cfg.KeyName("userId"))
}

func TestConfig_KeyCases(t *testing.T) {
	assert.Equal(t, []string{"camel", "kebab", "lower_camel", "screaming_snake", "snake"}, KeyCases())
}

func TestConfig_IsMode(t *testing.T) {
	for _, m := range Modes {
		assert.True(t, IsMode(m))
	}
	assert.False(t, IsMode("json2xml"))
	assert.False(t, IsMode(""))
}

func TestConfig_LoadConfigWithCLI(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yml", "mode: yaml2ps\nbatch:\n  workers: 2\n")

	cfg, err := LoadConfigWithCLI(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ModeYAMLToPS, cfg.Mode)
	assert.Equal(t, 2, cfg.Batch.Workers)

	cfg, err = LoadConfigWithCLI(path, Overrides{Mode: ModePSToYAML, Workers: 6, KeyCase: KeyCaseKebab, OutDir: "out", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, ModePSToYAML, cfg.Mode)
	assert.Equal(t, 6, cfg.Batch.Workers)
	assert.Equal(t, KeyCaseKebab, cfg.Naming.KeyCase)
	assert.Equal(t, "out", cfg.Batch.OutDir)
	assert.True(t, cfg.Dev.Debug)
}

func TestConfig_LoadConfigWithCLI_Defaults(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)

	_, err = LoadConfigWithCLI("", Overrides{Mode: "bogus"})
	assert.Error(t, err)
}
