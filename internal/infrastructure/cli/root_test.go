package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/gitscribe-go/assets"
	"github.com/doeshing/gitscribe-go/internal/version"
)

type fixture struct {
	t       *testing.T
	repo    string
	start   string
	config  string
	workDir string
	system  chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GITSCRIBE_CONFIG", "")

	f := &fixture{t: t, repo: t.TempDir(), workDir: t.TempDir(), system: make(chan string, 4)}
	f.git("init", "-q")
	f.write("README.md", "hello\n")
	f.git("add", ".")
	f.git("commit", "-q", "-m", "initial")
	f.start = f.git("rev-parse", "HEAD")
	f.write("login.go", "package login\n")
	f.git("add", ".")
	f.git("commit", "-q", "-m", "Fix ABC-12 login bug")
	f.write("theme.go", "package theme\n")
	f.git("add", ".")
	f.git("commit", "-q", "-m", "Add dark mode")

	jira := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/ABC-12" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"key":"ABC-12","fields":{"summary":"Login bug","status":{"name":"Done"},"issuetype":{"name":"Bug"},"updated":"2024-01-01T00:00:00.000+0000"}}`)
	}))
	t.Cleanup(jira.Close)

	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			fmt.Fprint(w, `{"models":[{"name":"llama3","size":1000}]}`)
			return
		}
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		system, _ := payload["system"].(string)
		f.system <- system
		if payload["model"] == "broken" {
			fmt.Fprint(w, `{"response":"# Part","done":false}`+"\n"+`{"error":"model crashed"}`+"\n")
			return
		}
		if payload["stream"] == true {
			fmt.Fprint(w, `{"response":"# Notes","done":false}`+"\n"+`{"response":"\n- Fixed login","done":true}`+"\n")
			return
		}
		fmt.Fprint(w, `{"response":"# Notes\n- Fixed login"}`)
	}))
	t.Cleanup(ollama.Close)

	f.config = filepath.Join(home, "config.yaml")
	cfg := fmt.Sprintf(`inference:
  endpoint: %s/api/generate
  models_url: %s
  model: llama3
tracker:
  base_url: %s
  token: secret
`, ollama.URL, ollama.URL, jira.URL)
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o600))
	return f
}

func (f *fixture) git(args ...string) string {
	f.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = f.repo
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(f.t, err, string(out))
	return strings.TrimSpace(string(out))
}

func (f *fixture) write(name, content string) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(filepath.Join(f.repo, name), []byte(content), 0o644))
}

func (f *fixture) run(args ...string) (string, string, error) {
	f.t.Helper()
	var stdout, stderr bytes.Buffer
	root, container := newRootCmd(context.Background(), Options{})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", f.config))
	err := root.Execute()
	require.NoError(f.t, container.Close())
	return stdout.String(), stderr.String(), err
}

func TestContextCommandToStdout(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("context", "--start", f.start, "--repo", f.repo, "--stdout")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Release Context\n"))
	linked := strings.Index(out, "## Linked Issues")
	history := strings.Index(out, "## Commit History")
	require.GreaterOrEqual(t, linked, 0)
	assert.Less(t, linked, history)
	assert.Contains(t, out, "### ABC-12 Login bug\n**Type:** Bug | **Status:** Done")
	assert.Contains(t, out, "## Commit History\n- Fix ABC-12 login bug\n- Add dark mode\n\n")
	assert.Contains(t, out, "No adhoc notes provided.")
}

func TestContextCommandWithTemplateWritesFile(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.workDir, "ctx.md")
	notes := filepath.Join(f.workDir, "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("Spring launch"), 0o644))

	_, stderr, err := f.run("context", "-s", f.start, "-r", f.repo, "--notes", notes, "--template", "default.md", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, assets.DefaultTemplate+"\n\n---\n**Data to Process:**\n\n# Release Context"))
	assert.Contains(t, doc, "## Strategic Context / Adhoc Notes\nSpring launch\n")
}

func TestContextCommandMissingNotesWarns(t *testing.T) {
	f := newFixture(t)
	out, stderr, err := f.run("context", "-s", f.start, "-r", f.repo, "--notes", filepath.Join(f.workDir, "absent.md"), "--stdout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "not found")
	assert.Contains(t, out, "No adhoc notes provided.")
}

func TestContextCommandBadRevision(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.run("context", "-s", "no-such-rev", "-r", f.repo, "--stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract history")
}

func TestGenerateCommandStreamsAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.workDir, "notes.md")

	out, _, err := f.run("generate", "-s", f.start, "-r", f.repo, "-o", output)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n- Fixed login\n", out)
	assert.Equal(t, assets.DefaultTemplate, <-f.system)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n- Fixed login", string(data))

	list, _, err := f.run("history", "list")
	require.NoError(t, err)
	assert.Contains(t, list, "llama3")
	assert.Contains(t, list, f.start+"..HEAD")

	id := strings.TrimSpace(strings.SplitN(list, "|", 2)[0])
	shown, _, err := f.run("history", "show", id)
	require.NoError(t, err)
	assert.Contains(t, shown, "Issues:  ABC-12")
	assert.Contains(t, shown, "- Fixed login")
}

func TestGenerateCommandBlockingToStdout(t *testing.T) {
	f := newFixture(t)
	out, _, err := f.run("generate", "-s", f.start, "-r", f.repo, "--no-stream", "--stdout", "--system-prompt", filepath.Join(f.workDir, "nope.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n- Fixed login", out)
	assert.Equal(t, "", <-f.system)
}

func TestGenerateCommandReportsPartialStream(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(f.workDir, "notes.md")

	out, stderr, err := f.run("generate", "-s", f.start, "-r", f.repo, "-m", "broken", "-o", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
	assert.Equal(t, "# Part\n", out)
	assert.Contains(t, stderr, "inference stopped after 6 B")
	assert.NoFileExists(t, output)
}

func TestContainerIsClosedAfterCommand(t *testing.T) {
	f := newFixture(t)

	root, container := newRootCmd(context.Background(), Options{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"history", "list", "--config", f.config})
	require.NoError(t, root.Execute())
	_, err := container.HistoryStore.Records(0)
	require.NoError(t, err)

	require.NoError(t, container.Close())
	_, err = container.HistoryStore.Records(0)
	assert.Error(t, err, "database handle should be released")
}

func TestModelsAndTemplatesCommands(t *testing.T) {
	f := newFixture(t)

	models, _, err := f.run("models")
	require.NoError(t, err)
	assert.Contains(t, models, "* llama3")
	assert.Contains(t, models, "1.0 kB")

	templates, _, err := f.run("templates", "list")
	require.NoError(t, err)
	assert.Contains(t, templates, "* default.md")

	refs, _, err := f.run("refs", "-r", f.repo)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(refs))
}

func TestConfigCommandsMaskToken(t *testing.T) {
	f := newFixture(t)

	shown, _, err := f.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, shown, "********")
	assert.NotContains(t, shown, "secret")

	path, _, err := f.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, f.config+"\n", path)

	valid, _, err := f.run("config", "validate")
	require.NoError(t, err)
	assert.Contains(t, valid, "Configuration valid")
}

func TestVersionCommandNeedsNoConfig(t *testing.T) {
	var stdout bytes.Buffer
	root := NewRootCmd(context.Background(), Options{})
	root.SetOut(&stdout)
	root.SetArgs([]string{"version", "--config", "/nonexistent/config.yaml"})
	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "gitscribe version")

	stdout.Reset()
	root = NewRootCmd(context.Background(), Options{})
	root.SetOut(&stdout)
	root.SetArgs([]string{"version", "--short"})
	require.NoError(t, root.Execute())
	assert.Equal(t, version.Current().Version+"\n", stdout.String())
}
