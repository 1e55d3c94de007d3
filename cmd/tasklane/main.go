// Command tasklane hosts a closure scheduler driven by timed jobs.
//
// Usage:
//
//	tasklane [-config tasklane.toml] [-priority n] [-metrics-addr :9090] [-demo] [-verbose]
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"

	"github.com/vnykmshr/tasklane/internal/config"
	"github.com/vnykmshr/tasklane/pkg/metrics"
	"github.com/vnykmshr/tasklane/pkg/scheduling/runner"
	"github.com/vnykmshr/tasklane/pkg/scheduling/scheduler"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("tasklane")

type options struct {
	configPath  string
	priority    int
	prioritySet bool
	metricsAddr string
	demo        bool
	verbose     bool
}

func main() {
	opts := parseFlags(os.Args[1:])

	verbosity := 0
	if opts.verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "tasklane: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	var opts options
	fs := flag.NewFlagSet("tasklane", flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a TOML configuration file")
	fs.IntVar(&opts.priority, "priority", 0, "process nice value, -20 (highest) to 19")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&opts.demo, "demo", false, "schedule the greeting demo on start")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	_ = fs.Parse(args)

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "priority" {
			opts.prioritySet = true
		}
	})
	return opts
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.prioritySet {
		cfg.Priority = opts.priority
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	return cfg, cfg.Validate()
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if cfg.Priority != 0 {
		if err := setPriority(cfg.Priority); err != nil {
			log.Warningf("could not set priority %d: %v", cfg.Priority, err)
		} else {
			log.Infof("process priority set to %d", cfg.Priority)
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sched, err := scheduler.NewWithConfigSafe(scheduler.Config{Name: cfg.Name, Capacity: cfg.Capacity})
	if err != nil {
		return err
	}
	r := runner.New(runner.Config{
		Name:      cfg.Name,
		Scheduler: sched,
		Location:  loc,
		Logger:    commonlog.GetLogger("tasklane.runner"),
	})

	if err := addJobs(r, cfg.Jobs); err != nil {
		return err
	}
	if opts.demo {
		if err := r.OnStart(greet); err != nil {
			return err
		}
	}

	var server *http.Server
	if cfg.MetricsAddr != "" {
		if err := r.EnableMetrics(metrics.DefaultConfig()); err != nil {
			return err
		}
		server = serveMetrics(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Start(ctx); err != nil {
		return err
	}
	log.Noticef("%s running with capacity %d and %d jobs", cfg.Name, cfg.Capacity, len(cfg.Jobs))

	<-ctx.Done()
	<-r.Stop()

	stats := r.Scheduler().Stats()
	log.Noticef("%s stopped: %d scheduled, %d executed, %d evicted",
		cfg.Name, stats.Scheduled, stats.Executed, stats.Evicted)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

// addJobs registers each configured job. Every firing schedules the job's
// closures, which log at debug level.
func addJobs(r *runner.Runner, jobs []config.Job) error {
	var tick scheduler.Task2[int, int]
	if err := r.OnStart(func(s *scheduler.Scheduler) {
		tick = scheduler.Register2(s, func(job, n int) {
			log.Debugf("job %s closure %d", jobs[job].ID, n)
		})
	}); err != nil {
		return err
	}

	for i, j := range jobs {
		fire := func(*scheduler.Scheduler) {
			for n := 0; n < j.Closures; n++ {
				tick.Schedule(i, n)
			}
		}

		var err error
		if j.Cron != "" {
			err = r.Cron(j.ID, j.Cron, fire)
		} else {
			err = r.Every(j.ID, j.Every, fire)
		}
		if err != nil {
			return fmt.Errorf("job %s: %w", j.ID, err)
		}
	}
	return nil
}

var (
	firstGreeting  = "Hello, from the first one!"
	secondGreeting = "Hello, from the second one!"
)

// greet schedules two greetings followed by a queue's worth of no-op
// closures, so both greetings run by eviction before the drain.
func greet(s *scheduler.Scheduler) {
	say := scheduler.Register1(s, func(p unsafe.Pointer) {
		fmt.Println(*(*string)(p))
	})
	nothing := scheduler.Register1(s, func(int64) {})

	say.Schedule(unsafe.Pointer(&firstGreeting))
	say.Schedule(unsafe.Pointer(&secondGreeting))
	for i := 0; i < s.Cap(); i++ {
		nothing.Schedule(0)
	}
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("metrics server listening on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server failed: %v", err)
		}
	}()
	return server
}
