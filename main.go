package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"noshow-dashboard/config"
	"noshow-dashboard/models"
	"noshow-dashboard/server"
	"noshow-dashboard/services"
	"noshow-dashboard/snapshot"
	"noshow-dashboard/storage"
	"noshow-dashboard/utils"
)

const usage = `Usage: noshow-dashboard <command> [flags]

Commands:
  serve      start the interactive dashboard (default)
  report     print the dashboard for one filter to the terminal
  export     write the dashboard tables as CSV and XLSX
  import     copy the dataset file into PostgreSQL
  snapshot   save PNG screenshots of a running dashboard
`

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "report":
		err = runReport(ctx, cfg, logger, args)
	case "export":
		err = runExport(ctx, cfg, logger, args)
	case "import":
		err = runImport(ctx, cfg, logger)
	case "snapshot":
		err = runSnapshot(ctx, cfg, logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		var loadErr *models.LoadError
		if errors.As(err, &loadErr) {
			logger.Error("Dataset could not be loaded: %v", loadErr)
		} else {
			logger.Error("%s failed: %v", cmd, err)
		}
		os.Exit(1)
	}
}

func loadDashboard(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*services.Dashboard, error) {
	data, err := services.NewLoader(cfg, logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		logger.Warn("Dataset is empty; every chart will show its empty state")
	}
	return services.NewDashboard(data, logger), nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Medical Appointment Dashboard starting ===")
	dash, err := loadDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return server.New(cfg, dash, logger).ListenAndServe(ctx)
}

// filterFlags registers the filter flags shared by report and export.
func filterFlags(fs *flag.FlagSet) func() (models.FilterState, error) {
	gender := fs.String("gender", "", "gender code (M or F), empty for all")
	hood := fs.String("neighborhood", "", "neighborhood name, empty for all")
	age := fs.String("age", "", "inclusive age range as lo,hi")

	return func() (models.FilterState, error) {
		f := models.FilterState{Gender: strings.ToUpper(*gender), Neighborhood: *hood}
		if *age == "" {
			return f, nil
		}
		for _, p := range strings.Split(*age, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return f, fmt.Errorf("invalid -age %q: %w", *age, err)
			}
			f.Age = append(f.Age, n)
		}
		if _, err := f.ParseAge(); err != nil {
			return f, fmt.Errorf("invalid -age %q: %w", *age, err)
		}
		return f, nil
	}
}

func runReport(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	filter := filterFlags(fs)
	noColor := fs.Bool("no-color", false, "disable ANSI colors")
	_ = fs.Parse(args)

	f, err := filter()
	if err != nil {
		return err
	}
	dash, err := loadDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}

	out := dash.Recompute(f)
	var delay *models.BoxStats
	if st, ok := services.DelayStats(services.Apply(dash.Dataset(), f)); ok {
		delay = &st
	}
	services.NewReportPrinter(os.Stdout, !*noColor).Print(out, delay)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	filter := filterFlags(fs)
	_ = fs.Parse(args)

	f, err := filter()
	if err != nil {
		return err
	}
	dash, err := loadDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	out := dash.Recompute(f)

	stamp := time.Now().Format("20060102-150405")
	csvPath := filepath.Join(cfg.ExportDir, "dashboard-"+stamp+".csv")
	xlsxPath := filepath.Join(cfg.ExportDir, "dashboard-"+stamp+".xlsx")

	csvWriter, err := storage.NewCSVWriter(csvPath)
	if err != nil {
		return err
	}
	xlsxWriter, err := storage.NewXLSXWriter(xlsxPath)
	if err != nil {
		return err
	}

	for path, exp := range map[string]storage.DashboardExporter{csvPath: csvWriter, xlsxPath: xlsxWriter} {
		if err := exp.Export(out); err != nil {
			return err
		}
		logger.Info("Dashboard exported to %s", path)
	}
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if cfg.DatasetSource == config.SourcePostgres {
		return errors.New("import needs a file source; set DATASET_SOURCE to csv or xlsx")
	}
	data, err := services.NewLoader(cfg, logger).Load(ctx)
	if err != nil {
		return err
	}

	store, err := storage.NewPostgresStore(ctx, cfg.DSN(), &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return err
	}
	defer store.Close()

	if err := store.Write(ctx, data); err != nil {
		return err
	}
	logger.Info("Imported %d appointments into PostgreSQL (table: appointments)", len(data))
	return nil
}

func runSnapshot(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	if cfg.SnapshotURL == "" {
		return errors.New("SNAPSHOT_URL is not set")
	}
	paths, err := snapshot.New(cfg, logger).Capture(ctx, snapshot.DefaultPresets)
	if err != nil {
		return err
	}
	logger.Info("Saved %d snapshots: %s", len(paths), strings.Join(paths, ", "))
	return nil
}
