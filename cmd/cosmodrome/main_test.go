package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cosmodrome/internal/testutil/testutils"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestInitThenBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	code, out, _ := runCLI(t, "init", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Initialization completed!")
	assert.Contains(t, out, "created")

	code, out, _ = runCLI(t, "build", "--check", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Build completed!")
	assert.Contains(t, out, "2 pages, 2 capsule pages")

	testutils.NewFileAssertions(t, dir).
		AssertFileContains("srv/www/index.html", "<h1>Poehali!</h1>").
		AssertFileContains("srv/www/about.html", "<li>Post 1</li>").
		AssertFileContains("srv/gemini/index.gmi", "# Poehali!").
		AssertFileExists("srv/www/site.css")
}

func TestInit_SecondRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, 0, run([]string{"init", dir}, &bytes.Buffer{}, &bytes.Buffer{}))
	testutils.WriteTree(t, dir, map[string]string{"src/index.gmi": "# mine"})

	code, out, _ := runCLI(t, "init", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "exists")
	testutils.NewFileAssertions(t, dir).AssertFileEquals("src/index.gmi", "# mine")

	code, _, _ = runCLI(t, "init", "--force", dir)
	require.Equal(t, 0, code)
	testutils.NewFileAssertions(t, dir).AssertFileContains("src/index.gmi", "Poehali!")
}

func TestBuild_MissingSource(t *testing.T) {
	code, out, errOut := runCLI(t, "build", t.TempDir())
	assert.Equal(t, 11, code)
	assert.Contains(t, out, "Build failed")
	assert.Contains(t, errOut, "source directory not found")
}

func TestBuild_MalformedWrapper(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, 0, run([]string{"init", dir}, &bytes.Buffer{}, &bytes.Buffer{}))
	testutils.WriteTree(t, dir, map[string]string{"src/_wrapper.html": "<html></html>"})

	code, _, errOut := runCLI(t, "build", dir)
	assert.Equal(t, 7, code)
	assert.Contains(t, errOut, "placeholder")
	testutils.NewFileAssertions(t, dir).AssertNotExists("srv")
}

func TestBuild_StrictFailsOnFileErrors(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, 0, run([]string{"init", dir}, &bytes.Buffer{}, &bytes.Buffer{}))
	// srv/www/index.html is written as a page before index.html/x.txt needs the
	// same path as a directory.
	testutils.WriteTree(t, dir, map[string]string{"src/index.html/x.txt": "x"})

	code, out, _ := runCLI(t, "build", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "failed: ")

	code, _, errOut := runCLI(t, "build", "--strict", dir)
	assert.Equal(t, 11, code)
	assert.Contains(t, errOut, "1 files failed")
}

func TestBuild_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, 0, run([]string{"init", dir}, &bytes.Buffer{}, &bytes.Buffer{}))
	metricsPath := filepath.Join(t.TempDir(), "cosmodrome.prom")

	code, _, _ := runCLI(t, "build", "--metrics-file", metricsPath, dir)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cosmodrome_build_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, string(data), `cosmodrome_pages_total{format="html",result="success"} 2`)
}

func TestBuild_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTree(t, dir, map[string]string{
		"cosmodrome.yaml":       "source_dir: content\noutput_dir: public\nhtml:\n  extension: htm\n",
		"content/_wrapper.html": "<!-- CONTENT -->",
		"content/_wrapper.gmi":  "<!-- CONTENT -->",
		"content/page.gmi":      "# Page",
	})

	code, _, _ := runCLI(t, "build", dir)
	require.Equal(t, 0, code)
	testutils.NewFileAssertions(t, dir).
		AssertFileEquals("public/www/page.htm", "<h1>Page</h1>").
		AssertFileEquals("public/gemini/page.gmi", "# Page")
}

func TestBuild_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteTree(t, dir, map[string]string{"cosmodrome.yaml": "output_dir: src\n"})

	code, _, errOut := runCLI(t, "build", dir)
	assert.Equal(t, 7, code)
	assert.Contains(t, errOut, "output_dir")
}

func TestJSONLogging(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, 0, run([]string{"init", dir}, &bytes.Buffer{}, &bytes.Buffer{}))

	code, _, errOut := runCLI(t, "--log-format", "json", "build", dir)
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(errOut), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "{"), line)
	}
	assert.Contains(t, errOut, `"build_id"`)
}

func TestInvalidArguments(t *testing.T) {
	code, _, _ := runCLI(t, "--log-format", "xml", "build")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
}
