package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: content-policy-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    port: 5432
    database: content_review
    user: ${TEST_DB_USER}
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
workers:
  evaluate-content:
    enabled: true
    timeout: 5000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_DB_USER", "reviewer")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "reviewer", cfg.Database.Postgres.User)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "policy-decisions", cfg.Database.Elasticsearch.DecisionIdx)

	assert.Equal(t, DefaultApprovedCutoff, cfg.Policy.ApprovedCutoff)
	assert.Equal(t, DefaultRevisionCutoff, cfg.Policy.RevisionCutoff)
	require.NotNil(t, cfg.Policy.PositiveFloor)
	assert.Equal(t, DefaultPositiveFloor, *cfg.Policy.PositiveFloor)
	assert.Empty(t, cfg.Policy.LexiconPath)

	w := GetWorkerConfig(cfg, "evaluate-content")
	assert.Equal(t, 5000, w.Timeout)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "resolve-age-tier"))
}

func TestLoadFromFile_PolicySection(t *testing.T) {
	t.Setenv("TEST_DB_USER", "reviewer")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML+`
policy:
  lexicon_path: /etc/policy/lexicon.yaml
  approved_cutoff: 90
  revision_cutoff: 70
  positive_floor: 0
  watch: true
`))
	require.NoError(t, err)

	assert.Equal(t, "/etc/policy/lexicon.yaml", cfg.Policy.LexiconPath)
	assert.Equal(t, 90, cfg.Policy.ApprovedCutoff)
	assert.Equal(t, 70, cfg.Policy.RevisionCutoff)
	require.NotNil(t, cfg.Policy.PositiveFloor)
	assert.Equal(t, 0, *cfg.Policy.PositiveFloor)
	assert.True(t, cfg.Policy.Watch)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("TEST_DB_USER", "reviewer")

	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "inverted cutoffs",
			extra:   "policy:\n  approved_cutoff: 50\n  revision_cutoff: 70\n",
			wantErr: "policy cutoffs",
		},
		{
			name:    "floor out of range",
			extra:   "policy:\n  positive_floor: 12\n",
			wantErr: "positive_floor",
		},
		{
			name:    "moderation without topic",
			extra:   "notifications:\n  moderation:\n    enabled: true\n",
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, baseYAML+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  postgres:\n    host: localhost\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}
