// Command smoketest drives the dashboard in a real browser: it selects a class
// and subject, waits for the charts, scrolls through the page taking
// screenshots, and checks that the statistics block is rendered.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"escolacli/internal/config"
	"escolacli/internal/infrastructure"
)

// Texts that must be on the page once the dashboard is rendered
var (
	formTexts  = []string{"Selecione a Turma", "Selecione a Disciplina"}
	chartTexts = []string{"Notas da disciplina", "Percentual de Presença"}
	statsTexts = []string{
		"Estatísticas Rápidas",
		"Nota média da disciplina",
		"Presença média da disciplina",
		"Número de alunos na turma",
	}
)

const (
	pollInterval = 200 * time.Millisecond
	settleDelay  = 300 * time.Millisecond
	fullQuality  = 100
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type options struct {
	url        string
	class      string
	subject    string
	baseDir    string
	headless   bool
	timeout    time.Duration
	scrollStep int
	scrolls    int
}

func parseFlags(args []string, output io.Writer, defaults config.SmokeConfig) (options, error) {
	opts := options{}
	fs := flag.NewFlagSet("smoketest", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.url, "url", defaults.URL, "dashboard URL")
	fs.StringVar(&opts.class, "turma", defaults.Class, "class to select")
	fs.StringVar(&opts.subject, "disciplina", defaults.Subject, "subject to select")
	fs.StringVar(&opts.baseDir, "base", "", "base directory holding reports/")
	fs.BoolVar(&opts.headless, "headless", defaults.Headless, "run browser headless")
	fs.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "overall timeout")
	fs.IntVar(&opts.scrollStep, "scroll-step", defaults.ScrollStep, "pixels per scroll")
	fs.IntVar(&opts.scrolls, "scrolls", defaults.Scrolls, "number of scrolls")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.url == "":
		return options{}, errors.New("url is required")
	case opts.class == "" || opts.subject == "":
		return options{}, errors.New("turma and disciplina are required")
	case opts.timeout <= 0:
		return options{}, fmt.Errorf("timeout must be positive: %s", opts.timeout)
	case opts.scrolls < 0 || opts.scrollStep < 0:
		return options{}, errors.New("scrolls and scroll-step must not be negative")
	}
	return opts, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr, cfg.Smoke)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(paths.ScreenshotsDir, 0755); err != nil {
		slog.Error("Failed to create screenshots directory", "error", err)
		os.Exit(1)
	}

	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = paths.SmokeTestLog
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	err = run(context.Background(), opts, paths, logger)
	if err != nil {
		logger.Error("SMOKE_TEST_FAILED", slog.String("error", err.Error()))
		_ = infrastructure.CloseLogFile()
		os.Exit(1)
	}
	logger.Info("SMOKE_TEST_PASSED")
	_ = infrastructure.CloseLogFile()
}

// run starts a browser and executes the smoke scenario
func run(ctx context.Context, opts options, paths *config.Paths, logger *slog.Logger) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.headless),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserLogger := infrastructure.BindTraceID(ctx, infrastructure.WithComponent(logger, "browser"))

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			browserLogger.Debug(fmt.Sprintf(format, args...))
		}))
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, opts.timeout)
	defer cancel()

	shots := newScreenshots(paths, logger)

	logger.InfoContext(ctx, "Starting smoke test",
		slog.String("url", opts.url),
		slog.String("turma", opts.class),
		slog.String("disciplina", opts.subject),
		slog.Bool("headless", opts.headless))

	start := time.Now()
	if err := chromedp.Run(runCtx, smokeTasks(opts, shots, logger)); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Smoke test completed",
		slog.Int("screenshots", len(shots.files)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// smokeTasks is the browser scenario
func smokeTasks(opts options, shots *screenshots, logger *slog.Logger) chromedp.Tasks {
	tasks := chromedp.Tasks{
		timedAction(logger, "Navigate", chromedp.Navigate(opts.url)),
		timedAction(logger, "WaitForm", waitForTexts(formTexts...)),
		chromedp.SetValue(`#turma`, opts.class, chromedp.ByID),
		chromedp.SetValue(`#disciplina`, opts.subject, chromedp.ByID),
		timedAction(logger, "Submit", chromedp.Click(`#atualizar`, chromedp.ByID)),
		chromedp.WaitReady(selectedOption("turma", opts.class), chromedp.ByQuery),
		chromedp.WaitReady(selectedOption("disciplina", opts.subject), chromedp.ByQuery),
		timedAction(logger, "WaitCharts", waitForTexts(chartTexts...)),
		shots.full("dashboard"),
	}

	for i := 1; i <= opts.scrolls; i++ {
		tasks = append(tasks,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", opts.scrollStep), nil),
			chromedp.Sleep(settleDelay),
			shots.viewport(fmt.Sprintf("scroll_%d", i)),
		)
	}

	tasks = append(tasks,
		timedAction(logger, "VerifyStatistics", verifyTexts(logger, statsTexts...)),
		shots.full("final"),
	)
	return tasks
}

// waitForTexts polls the page until every text is present. It tolerates
// evaluation errors while a navigation is in flight.
func waitForTexts(texts ...string) chromedp.Action {
	expr := textsPresentExpression(texts)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for {
			var ok bool
			if err := chromedp.Evaluate(expr, &ok).Do(ctx); err == nil && ok {
				return nil
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for %q: %w", texts, ctx.Err())
			case <-time.After(pollInterval):
			}
		}
	})
}

// verifyTexts fails with the list of texts missing from the page
func verifyTexts(logger *slog.Logger, texts ...string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var body string
		if err := chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &body).Do(ctx); err != nil {
			return err
		}
		if missing := missingTexts(body, texts); len(missing) > 0 {
			return fmt.Errorf("texts not found on page: %s", strings.Join(missing, ", "))
		}
		for _, text := range texts {
			logger.InfoContext(ctx, "Text found", slog.String("text", text))
		}
		return nil
	})
}

// timedAction logs the duration of an action
func timedAction(logger *slog.Logger, name string, act chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		start := time.Now()
		err := act.Do(ctx)
		logger.InfoContext(ctx, "Step finished",
			slog.String("step", name),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return err
	})
}

func missingTexts(body string, texts []string) []string {
	var missing []string
	for _, text := range texts {
		if !strings.Contains(body, text) {
			missing = append(missing, text)
		}
	}
	return missing
}

// textsPresentExpression builds a JS expression that is true when the page
// contains every text
func textsPresentExpression(texts []string) string {
	quoted, _ := json.Marshal(texts)
	return fmt.Sprintf(`(function(){var b=document.body?document.body.innerText:"";return %s.every(function(t){return b.indexOf(t)!==-1;});})()`, quoted)
}

// selectedOption matches the option the server rendered as selected
func selectedOption(selectID, value string) string {
	quoted, _ := json.Marshal(value)
	return fmt.Sprintf(`#%s option[value=%s][selected]`, selectID, quoted)
}

// screenshots writes numbered PNG files into the screenshots directory
type screenshots struct {
	paths  *config.Paths
	seq    int
	files  []string
	logger *slog.Logger
}

func newScreenshots(paths *config.Paths, logger *slog.Logger) *screenshots {
	return &screenshots{paths: paths, logger: logger}
}

func (s *screenshots) full(label string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var buf []byte
		if err := chromedp.FullScreenshot(&buf, fullQuality).Do(ctx); err != nil {
			return err
		}
		return s.save(label, buf)
	})
}

func (s *screenshots) viewport(label string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var buf []byte
		if err := chromedp.CaptureScreenshot(&buf).Do(ctx); err != nil {
			return err
		}
		return s.save(label, buf)
	})
}

func (s *screenshots) save(label string, buf []byte) error {
	s.seq++
	name := fmt.Sprintf("%02d_%s.png", s.seq, unsafeName.ReplaceAllString(label, "_"))
	path := s.paths.GetScreenshotPath(name)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot %s: %w", name, err)
	}
	s.files = append(s.files, path)
	s.logger.Info("Screenshot saved", slog.String("path", path), slog.Int("bytes", len(buf)))
	return nil
}
