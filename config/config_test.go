package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "authcore")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxRecursionDepth)
	assert.False(t, cfg.AllowCommittee)
	assert.True(t, cfg.AllowNonImmediateOwner)
	assert.False(t, cfg.IgnoreCustomRequiredAuths)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := "max_recursion_depth: 4\nallow_committee: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authcore.yaml"), []byte(contents), 0o644))

	cfg, err := Load(dir, "authcore")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxRecursionDepth)
	assert.True(t, cfg.AllowCommittee)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	require.NoError(t, os.Setenv("AUTHCORE_MAX_RECURSION_DEPTH", "9"))
	defer os.Unsetenv("AUTHCORE_MAX_RECURSION_DEPTH")

	cfg, err := Load(t.TempDir(), "authcore")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxRecursionDepth)
}

func TestVerifyConfigCarriesAuthorizationFields(t *testing.T) {
	cfg, err := Load(t.TempDir(), "authcore")
	require.NoError(t, err)

	vc := cfg.VerifyConfig(nil, nil, nil)
	assert.Equal(t, cfg.AllowNonImmediateOwner, vc.AllowNonImmediateOwner)
	assert.Equal(t, cfg.MaxRecursionDepth, vc.MaxRecursion)
	assert.Equal(t, cfg.AllowCommittee, vc.AllowCommittee)
	assert.Equal(t, cfg.IgnoreCustomRequiredAuths, vc.IgnoreCustomRequiredAuths)
}
