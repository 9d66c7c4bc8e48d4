package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/app"
)

// errDenied makes `can` exit non-zero without printing an error.
var errDenied = errors.New("denied")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errDenied) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Administer a fleetcn installation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration directory (default ./config)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newCreateAdminCmd(opts),
		newCanCmd(opts),
		newPagesCmd(),
		newExpiryScanCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*app.Config, error) {
	var (
		cfg *app.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = app.LoadConfig(o.configPath)
	} else {
		cfg, err = app.LoadConfig()
	}
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(app.ServerConfig{LogLevel: "warn", LogFormat: "console"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDatabase loads the configuration and connects, applying migrations when migrate is set.
func (o *rootOptions) openDatabase(migrate bool) (*gorm.DB, *app.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := app.OpenDatabase(cfg, migrate)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
