package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteSecrets points SECRETS_DIR at a temporary directory holding one file
// per entry, the way Docker mounts secrets
func WriteSecrets(t *testing.T, secrets map[string]string) string {
	t.Helper()

	secretsDir := t.TempDir()
	t.Setenv("SECRETS_DIR", secretsDir)

	for name, value := range secrets {
		secretPath := filepath.Join(secretsDir, name)
		if err := os.WriteFile(secretPath, []byte(value), 0o600); err != nil {
			t.Fatalf("failed to write secret %s: %v", name, err)
		}
	}
	return secretsDir
}
