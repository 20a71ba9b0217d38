package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simmonsmd7/inkflow-sub002/pkg/migrate"
)

func TestAuditLogMigrationIsAppendOnly(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_consent_audit_logs_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no audit log migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS consent_audit_logs",
		"seq BIGSERIAL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_consent_audit_logs_seq",
		"BEFORE UPDATE OR DELETE ON consent_audit_logs",
		"DROP TABLE IF EXISTS consent_audit_logs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
