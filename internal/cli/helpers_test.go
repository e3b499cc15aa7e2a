package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// storeConfig writes a config file for a file-backed store in a temp dir
// with an instant simulated gateway. An empty userID leaves nobody signed in.
func storeConfig(t *testing.T, userID string) string {
	t.Helper()
	dir := t.TempDir()

	user := ""
	if userID != "" {
		user = fmt.Sprintf("user:\n  id: %s\n  email: %s@example.com\n  name: Ada Lovelace\n", userID, userID)
	}
	content := fmt.Sprintf(`store:
  driver: file
  path: %s
log:
  level: error
payment:
  latency: 0s
%s`, filepath.Join(dir, "data"), user)

	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// shop runs a storefront command against the config at cfg.
func shop(t *testing.T, cfg string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return execute(t, append([]string{"--config", cfg}, args...)...)
}
