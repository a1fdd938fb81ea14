package coremain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pmkol/fwdlist/mlog"
	"github.com/pmkol/fwdlist/pkg/script"
)

type runFlags struct {
	c     string
	dir   string
	watch bool
}

var rootCmd = &cobra.Command{
	Use: "fwdlist",
}

func init() {
	rf := new(runFlags)
	runCmd := &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [--watch] [script...]",
		Short: "Run list scripts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return StartRun(cmd.Context(), rf, args)
		},
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
	}
	rootCmd.AddCommand(runCmd)
	fs := runCmd.Flags()
	fs.StringVarP(&rf.c, "config", "c", "", "config file")
	fs.StringVarP(&rf.dir, "dir", "d", "", "working dir")
	fs.BoolVarP(&rf.watch, "watch", "w", false, "re-run scripts when they change")

	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check script...",
		Short: "Check scripts without running them.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, p := range args {
				s, err := script.Load(p)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d steps\n", s.Name, len(s.Steps))
			}
			return errors.Join(errs...)
		},
		SilenceUsage: true,
	}
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func StartRun(ctx context.Context, rf *runFlags, scripts []string) error {
	if len(rf.dir) > 0 {
		err := os.Chdir(rf.dir)
		if err != nil {
			return fmt.Errorf("failed to change the current working directory, %w", err)
		}
		mlog.L().Info("working directory changed", zap.String("path", rf.dir))
	}

	cfg := new(Config)
	var fileUsed string
	// A config file is optional when scripts are given on the command line.
	if len(rf.c) > 0 || len(scripts) == 0 {
		var err error
		cfg, fileUsed, err = loadConfig(rf.c)
		if err != nil {
			return fmt.Errorf("fail to load config, %w", err)
		}
	}

	lg, closeLog, err := mlog.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer closeLog()
	defer mlog.SetLogger(lg)()

	if len(fileUsed) > 0 {
		if err := mergeInclude(cfg, 0, []string{fileUsed}); err != nil {
			return fmt.Errorf("failed to load sub config file, %w", err)
		}
	}
	cfg.Scripts = append(cfg.Scripts, scripts...)
	if rf.watch {
		cfg.Watch = true
	}

	if err := RunScripts(ctx, cfg, os.Stdout); err != nil {
		return fmt.Errorf("fwdlist exited, %w", err)
	}
	return nil
}

// loadConfig load a config from a file. If filePath is empty, it will
// automatically search and load a file which name start with "config".
func loadConfig(filePath string) (*Config, string, error) {
	v := viper.New()

	if len(filePath) > 0 {
		v.SetConfigFile(filePath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	decoderOpt := func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
		cfg.TagName = "yaml"
		cfg.WeaklyTypedInput = true
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

func mergeInclude(cfg *Config, depth int, paths []string) error {
	depth++
	if depth > 8 {
		return fmt.Errorf("maximum include depth reached, include path is %s", strings.Join(paths, " -> "))
	}

	var included []string
	for _, subCfgFile := range cfg.Include {
		subPaths := append(paths, subCfgFile)
		mlog.L().Info("reading sub config", zap.String("file", subCfgFile))
		subCfg, _, err := loadConfig(subCfgFile)
		if err != nil {
			return fmt.Errorf("failed to load sub config, %w", err)
		}
		if err := mergeInclude(subCfg, depth, subPaths); err != nil {
			return err
		}
		included = append(included, subCfg.Scripts...)
	}

	cfg.Scripts = append(included, cfg.Scripts...)
	return nil
}
