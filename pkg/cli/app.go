// Package cli implements the reop command line app: a one-shot
// prediction command, a registry dump, and a local server hosting the
// risk form.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/clinsight/reop/pkg/config"
	"github.com/clinsight/reop/pkg/data"
	"github.com/clinsight/reop/pkg/logging"
	"github.com/clinsight/reop/pkg/model"
	"github.com/clinsight/reop/pkg/pipeline"
	"github.com/clinsight/reop/pkg/schema"
)

const (
	name         = "reop"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	modelFlag = &urfave.StringFlag{
		Name:  "model",
		Usage: "Path to the classifier artifact (optional, defaults to the bundled model)",
	}

	dbFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the reference cohort database",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Conf      *config.Config
	DB        *sql.DB
	Predictor *pipeline.Predictor
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 name,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Unplanned reoperation risk prediction for surgical patients",
		Flags: []urfave.Flag{
			debugFlag,
			modelFlag,
			dbFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			predictCmd,
			schemaCmd,
			serverCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			dir, err := config.GetOrCreateHomeDir(name)
			if err != nil {
				return fmt.Errorf("resolving home dir: %w", err)
			}
			conf, err := config.ReadOrCreate(dir)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			if p := c.String(modelFlag.Name); p != "" {
				conf.Model = p
			}
			if p := c.String(dbFlag.Name); p != "" {
				conf.DB = p
			}

			forest, err := loadForest(conf.Model)
			if err != nil {
				return err
			}

			if err := data.Init(conf.DB); err != nil {
				return fmt.Errorf("initializing cohort database: %w", err)
			}
			db, err := data.GetDB(conf.DB)
			if err != nil {
				return fmt.Errorf("opening cohort database: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Conf:      conf,
				DB:        db,
				Predictor: pipeline.New(forest),
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// loadForest loads the configured artifact, falling back to the bundled
// model when no path is set. Load failures are fatal: nothing works
// without a classifier.
func loadForest(path string) (*model.Forest, error) {
	if path == "" {
		slog.Debug("using bundled classifier artifact")
		return model.Default(schema.Names())
	}
	slog.Debug("loading classifier artifact", "path", path)
	return model.Load(path, schema.Names())
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
