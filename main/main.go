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
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/fsnotify/fsnotify"

	"zplrender"
	"zplrender/canvas"
	"zplrender/config"
	"zplrender/metrics"
)

func main() {
	in := flag.String("in", "", "входной ZPL-файл (относительно labels_dir)")
	out := flag.String("out", "", "результат (по умолчанию имя метки + .png/.json)")
	dataFile := flag.String("data", "", "JSON с подстановками {\"<ID>\": \"000001\"}")
	configFile := flag.String("config", "", "HCL-файл настроек")
	format := flag.String("format", "png", "формат результата: png или json")
	watch := flag.Bool("watch", false, "следить за изменениями и пересобирать автоматически")
	debounce := flag.Duration("debounce", 300*time.Millisecond, "дебаунс перед пересборкой")
	serve := flag.Bool("serve", false, "режим демона (HTTP API)")
	port := flag.Int("port", 0, "порт HTTP демона (по умолчанию из конфига)")
	logLevel := flag.String("log-level", "", "debug, info, warn, error")
	logFormat := flag.String("log-format", "", "text или json")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥  %v\n", err)
			os.Exit(2)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup", "error", err)
		os.Exit(1)
	}

	if *serve {
		if err := runServer(a); err != nil {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
		return
	}

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, filepath.Ext(*in)) + "." + strings.ToLower(*format)
	}

	// первая сборка
	if err := a.renderFile(*in, *dataFile, *out, *format); err != nil {
		logger.Error("render failed", "in", *in, "error", err)
		if !*watch {
			os.Exit(1)
		}
	} else {
		fmt.Println("💚  готово: " + *out)
	}

	if !*watch {
		return
	}
	if err := a.watch(*in, *dataFile, *out, *format, *debounce); err != nil {
		logger.Error("watch", "error", err)
		os.Exit(1)
	}
}

// app - what every render shares: settings, logger, interpreter and fonts.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	interp *zplrender.Interpreter
	fonts  metrics.FaceSource
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	fonts, err := loadFonts(cfg.Font)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		interp: zplrender.NewInterpreter(zplrender.Options{
			Logger:     logger,
			FontFamily: cfg.Font.Family,
		}),
		fonts: fonts,
	}, nil
}

func loadFonts(f config.Font) (metrics.FaceSource, error) {
	if f.Path == "" {
		return metrics.Default()
	}
	return metrics.LoadFont(f.Path)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ---------- общий пайплайн ----------

// resolveLabel keeps relative label names inside the labels directory.
func (a *app) resolveLabel(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	full, err := securejoin.SecureJoin(a.cfg.LabelsDir, name)
	if err != nil {
		return "", fmt.Errorf("forbidden label path: %w", err)
	}
	return full, nil
}

// substitutions - config values overlaid with the request/file values.
func (a *app) substitutions(extra map[string]string) map[string]string {
	if len(a.cfg.Substitutions) == 0 && len(extra) == 0 {
		return nil
	}
	subs := make(map[string]string, len(a.cfg.Substitutions)+len(extra))
	for k, v := range a.cfg.Substitutions {
		subs[k] = v
	}
	for k, v := range extra {
		subs[k] = v
	}
	return subs
}

func readSubstitutions(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение JSON: %w", err)
	}
	subs := map[string]string{}
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("разбор JSON: %w", err)
	}
	return subs, nil
}

// result - output of one label render.
type result struct {
	instructions []zplrender.DrawInstruction
	png          []byte
	err          error // pass or playback failure, output is partial
}

// render interprets the label; for png it also plays it on a fresh raster.
func (a *app) render(ctx context.Context, label string, subs map[string]string, format string) (result, error) {
	switch strings.ToLower(format) {
	case "json":
		list, err := a.interp.Interpret(label, a.substitutions(subs))
		return result{instructions: list, err: err}, nil
	case "png", "":
		r := canvas.New(a.cfg.Canvas.Width, a.cfg.Canvas.Height, a.fonts, a.logger)
		list, err := zplrender.Render(ctx, a.interp, label, a.substitutions(subs), r)
		data, encErr := r.EncodePNG()
		if encErr != nil {
			return result{}, encErr
		}
		return result{instructions: list, png: data, err: err}, nil
	default:
		return result{}, fmt.Errorf("unknown format %q", format)
	}
}

// renderFile - CLI render: partial output is still written, the failure is returned.
func (a *app) renderFile(in, dataFile, out, format string) error {
	path, err := a.resolveLabel(in)
	if err != nil {
		return err
	}
	label, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение метки: %w", err)
	}
	subs, err := readSubstitutions(dataFile)
	if err != nil {
		return err
	}

	res, err := a.render(context.Background(), string(label), subs, format)
	if err != nil {
		return err
	}

	var data []byte
	if res.png != nil {
		data = res.png
	} else if data, err = zplrender.MarshalInstructions(res.instructions); err != nil {
		return fmt.Errorf("кодирование JSON: %w", err)
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("сохранение: %w", err)
	}
	return res.err
}

// ---------- watch ----------

func (a *app) watch(in, dataFile, out, format string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	labelPath, err := a.resolveLabel(in)
	if err != nil {
		return err
	}
	toWatch := dedupe([]string{labelPath, filepath.Dir(labelPath), dataFile, filepath.Dir(dataFile)})
	if dataFile == "" {
		toWatch = dedupe([]string{labelPath, filepath.Dir(labelPath)})
	}
	for _, p := range toWatch {
		if err := watcher.Add(p); err != nil {
			a.logger.Warn("не удалось добавить в watch", "path", p, "error", err)
		}
	}

	outAbs, _ := filepath.Abs(out)
	ignore := func(name string) bool {
		n, _ := filepath.Abs(name)
		if n == outAbs {
			return true
		}
		low := strings.ToLower(n)
		return strings.HasSuffix(low, "~") ||
			strings.HasSuffix(low, ".tmp") ||
			strings.HasSuffix(low, ".swp")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var t *time.Timer
	schedule := func() {
		if t != nil {
			t.Stop()
		}
		t = time.AfterFunc(debounce, func() {
			fmt.Println("🔄  пересборка…")
			if err := a.renderFile(in, dataFile, out, format); err != nil {
				fmt.Printf("💥  %v\n", err)
			} else {
				fmt.Println("💚  готово: " + out)
			}
		})
	}

	fmt.Println("👀  watch-режим (Ctrl+C - выход)")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if ignore(ev.Name) {
				continue
			}
			if hasAnySuffix(strings.ToLower(ev.Name), ".zpl", ".txt", ".prn", ".json") {
				a.logger.Info("изменено", "file", filepath.Base(ev.Name))
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				schedule()
				continue
			}
			a.logger.Warn("watch error", "error", err)
		case <-sig:
			fmt.Print("\r\033[K👋  пока\n")
			return nil
		}
	}
}

// ---------- вспомогательные ----------

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range in {
		if p == "" {
			continue
		}
		abs, _ := filepath.Abs(p)
		if _, ok := seen[abs]; !ok {
			seen[abs] = struct{}{}
			out = append(out, abs)
		}
	}
	return out
}

func hasAnySuffix(s string, exts ...string) bool {
	for _, e := range exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}
