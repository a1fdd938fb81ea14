package coremain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/pprof"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pmkol/fwdlist/mlog"
	"github.com/pmkol/fwdlist/pkg/script"
)

type Fwdlist struct {
	logger *zap.Logger
	runner *script.Runner

	metricsReg *prometheus.Registry

	outM sync.Mutex
	out  io.Writer
}

// RunScripts runs every configured script concurrently and writes the
// results to out. In watch mode it keeps re-running scripts on change
// until ctx is done. It logs to the global logger, see mlog.SetLogger.
func RunScripts(ctx context.Context, cfg *Config, out io.Writer) error {
	if len(cfg.Scripts) == 0 {
		return errors.New("no script is configured")
	}

	lg := mlog.L()
	f := &Fwdlist{
		logger:     lg,
		metricsReg: newMetricsReg(),
		out:        out,
	}
	var err error
	f.runner, err = script.NewRunner(lg, f.GetMetricsReg())
	if err != nil {
		return fmt.Errorf("failed to init script runner: %w", err)
	}
	mlog.S().Infof("running %d scripts, watch: %t", len(cfg.Scripts), cfg.Watch)

	g, gctx := errgroup.WithContext(ctx)
	scriptsDone := make(chan struct{})

	// Start http api server
	if httpAddr := cfg.API.HTTP; len(httpAddr) > 0 {
		httpServer := &http.Server{
			Addr:    httpAddr,
			Handler: f.apiMux(),
		}
		g.Go(func() error {
			errChan := make(chan error, 1)
			go func() {
				f.logger.Info("starting api http server", zap.String("addr", httpAddr))
				errChan <- httpServer.ListenAndServe()
			}()
			select {
			case err := <-errChan:
				return fmt.Errorf("api http server exited, %w", err)
			case <-gctx.Done():
			case <-scriptsDone:
			}
			return httpServer.Close()
		})
	}

	g.Go(func() error {
		defer close(scriptsDone)
		sg, sctx := errgroup.WithContext(gctx)
		for _, p := range cfg.Scripts {
			sg.Go(func() error { return f.runFile(sctx, p, cfg.Watch) })
		}
		return sg.Wait()
	})
	return g.Wait()
}

func (f *Fwdlist) runFile(ctx context.Context, path string, watch bool) error {
	err := f.runOnce(ctx, path)
	if !watch {
		return err
	}
	if err != nil {
		f.logger.Error("script failed", zap.String("file", path), zap.Error(err))
	}

	f.logger.Info("watching script", zap.String("file", path))
	return script.Watch(ctx, f.logger, path, func() {
		if err := f.runOnce(ctx, path); err != nil {
			f.logger.Error("script failed", zap.String("file", path), zap.Error(err))
		}
	})
}

func (f *Fwdlist) runOnce(ctx context.Context, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	res, err := f.runner.Run(ctx, s)
	if err != nil {
		return err
	}
	f.logger.Info("script done", zap.String("script", s.Name), zap.Int("steps", len(res.Events)))

	f.outM.Lock()
	defer f.outM.Unlock()
	return writeResult(f.out, res)
}

func writeResult(w io.Writer, res *script.Result) error {
	if _, err := fmt.Fprintf(w, "== %s\n", res.Name); err != nil {
		return err
	}
	for _, e := range res.Events {
		if _, err := fmt.Fprintf(w, "#%d %s: %s\n", e.Step, e.Op, e.Detail); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(res.Lists)) {
		if _, err := fmt.Fprintf(w, "%s = %v\n", name, res.Lists[name]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fwdlist) GetMetricsReg() prometheus.Registerer {
	return prometheus.WrapRegistererWithPrefix("fwdlist_", f.metricsReg)
}

func (f *Fwdlist) apiMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(f.metricsReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func newMetricsReg() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}
