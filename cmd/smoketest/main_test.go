package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escolacli/internal/config"
	"escolacli/internal/shared/testutil"
)

func smokeDefaults() config.SmokeConfig {
	return config.Default().Smoke
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(t *testing.T, opts options)
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: func(t *testing.T, opts options) {
				assert.Equal(t, "http://localhost:8080/", opts.url)
				assert.Equal(t, "2025B", opts.class)
				assert.Equal(t, "Português", opts.subject)
				assert.Equal(t, 5, opts.scrolls)
				assert.Equal(t, 400, opts.scrollStep)
				assert.Greater(t, opts.timeout, time.Duration(0))
			},
		},
		{
			name: "overrides",
			args: []string{"-url", "http://127.0.0.1:9000/", "-turma", "2025A", "-disciplina", "Matemática", "-headless=false", "-timeout", "30s"},
			want: func(t *testing.T, opts options) {
				assert.Equal(t, "http://127.0.0.1:9000/", opts.url)
				assert.Equal(t, "2025A", opts.class)
				assert.Equal(t, "Matemática", opts.subject)
				assert.False(t, opts.headless)
				assert.Equal(t, 30*time.Second, opts.timeout)
			},
		},
		{name: "empty url", args: []string{"-url", ""}, wantErr: true},
		{name: "empty class", args: []string{"-turma", ""}, wantErr: true},
		{name: "zero timeout", args: []string{"-timeout", "0s"}, wantErr: true},
		{name: "negative scrolls", args: []string{"-scrolls", "-1"}, wantErr: true},
		{name: "unknown flag", args: []string{"-video"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts, err := parseFlags(tt.args, &out, smokeDefaults())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.want(t, opts)
		})
	}
}

func TestMissingTexts(t *testing.T) {
	body := "Estatísticas Rápidas\nNota média da disciplina: 7.50\nNúmero de alunos na turma: 3"

	missing := missingTexts(body, statsTexts)
	assert.Equal(t, []string{"Presença média da disciplina"}, missing)

	assert.Empty(t, missingTexts(body, []string{"Estatísticas Rápidas"}))
	assert.Empty(t, missingTexts(body, nil))
}

func TestTextsPresentExpression(t *testing.T) {
	expr := textsPresentExpression([]string{`Nota "média"`, "Presença"})

	assert.Contains(t, expr, `["Nota \"média\"","Presença"]`)
	assert.Contains(t, expr, "document.body.innerText")
	assert.Contains(t, expr, ".every(")
}

func TestSelectedOption(t *testing.T) {
	assert.Equal(t, `#turma option[value="2025B"][selected]`, selectedOption("turma", "2025B"))
	assert.Equal(t, `#disciplina option[value="Português"][selected]`, selectedOption("disciplina", "Português"))
}

func newScreenshotPaths(t *testing.T, create bool) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	if create {
		require.NoError(t, os.MkdirAll(paths.ScreenshotsDir, 0755))
	}
	return paths
}

func TestScreenshotsSave(t *testing.T) {
	paths := newScreenshotPaths(t, true)
	dir := paths.ScreenshotsDir
	shots := newScreenshots(paths, slog.New(testutil.NewBufferedSlogHandler(t)))

	require.NoError(t, shots.save("dashboard", []byte("one")))
	require.NoError(t, shots.save("scroll 1/x", []byte("two")))

	require.Len(t, shots.files, 2)
	assert.Equal(t, filepath.Join(dir, "01_dashboard.png"), shots.files[0])
	assert.Equal(t, filepath.Join(dir, "02_scroll_1_x.png"), shots.files[1])

	data, err := os.ReadFile(shots.files[1])
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestScreenshotsSaveMissingDir(t *testing.T) {
	shots := newScreenshots(newScreenshotPaths(t, false), slog.New(testutil.NewBufferedSlogHandler(t)))

	err := shots.save("dashboard", []byte("x"))
	assert.ErrorContains(t, err, "01_dashboard.png")
}

func TestSmokeTasksLayout(t *testing.T) {
	opts, err := parseFlags([]string{"-scrolls", "2"}, &bytes.Buffer{}, smokeDefaults())
	require.NoError(t, err)

	tasks := smokeTasks(opts, newScreenshots(newScreenshotPaths(t, true), slog.Default()), slog.Default())

	// 9 setup steps, 3 per scroll, verify and final screenshot
	assert.Len(t, tasks, 9+3*2+2)
}

const fakeDashboard = `<!DOCTYPE html>
<html><body>
<form method="get" action="/">
<label for="turma">Selecione a Turma</label>
<select id="turma" name="turma">{{range .Classes}}<option value="{{.}}"{{if eq . $.Class}} selected{{end}}>{{.}}</option>{{end}}</select>
<label for="disciplina">Selecione a Disciplina</label>
<select id="disciplina" name="disciplina">{{range .Subjects}}<option value="{{.}}"{{if eq . $.Subject}} selected{{end}}>{{.}}</option>{{end}}</select>
<button id="atualizar" type="submit">Atualizar</button>
</form>
<h2>Notas da disciplina {{.Subject}} - Turma {{.Class}}</h2>
<div style="height:1500px"></div>
<h2>Percentual de Presença - Disciplina {{.Subject}} - Turma {{.Class}}</h2>
<h2>Estatísticas Rápidas</h2>
<p>Nota média da disciplina: 7.50</p>
<p>Presença média da disciplina: 90.00%</p>
<p>Número de alunos na turma: 3</p>
</body></html>`

func fakeDashboardServer(t *testing.T) *httptest.Server {
	t.Helper()
	tmpl := template.Must(template.New("page").Parse(fakeDashboard))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			Classes, Subjects []string
			Class, Subject    string
		}{
			Classes:  []string{"2025A", "2025B"},
			Subjects: []string{"Matemática", "Português"},
			Class:    "2025A",
			Subject:  "Matemática",
		}
		if v := r.URL.Query().Get("turma"); v != "" {
			data.Class = v
		}
		if v := r.URL.Query().Get("disciplina"); v != "" {
			data.Subject = v
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}))
}

func browserAvailable() bool {
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestRunAgainstDashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	if !browserAvailable() {
		t.Skip("no Chrome or Chromium binary found")
	}

	server := fakeDashboardServer(t)
	defer server.Close()

	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(paths.ScreenshotsDir, 0755))

	opts, err := parseFlags([]string{"-url", server.URL + "/", "-timeout", "60s"}, &bytes.Buffer{}, smokeDefaults())
	require.NoError(t, err)
	opts.headless = true

	handler := testutil.NewBufferedSlogHandler(nil)
	err = run(context.Background(), opts, paths, slog.New(handler))
	require.NoError(t, err)

	entries, err := os.ReadDir(paths.ScreenshotsDir)
	require.NoError(t, err)
	assert.Len(t, entries, opts.scrolls+2)
	assert.Equal(t, "01_dashboard.png", entries[0].Name())
	assert.Equal(t, fmt.Sprintf("%02d_final.png", opts.scrolls+2), entries[len(entries)-1].Name())
	assert.True(t, handler.ContainsMessage("Smoke test completed"))
}
