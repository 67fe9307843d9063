// Command spinup bootstraps a single-node deployment of the platform:
// it detects the host OS, installs pinned package dependencies, rewrites
// the system configuration for the selected cloud provider, brings up
// Cassandra and its schema, and starts the service daemons.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/spinup-io/spinup/bootstrap"
	"github.com/spinup-io/spinup/cassandra"
	"github.com/spinup-io/spinup/config"
	"github.com/spinup-io/spinup/errs"
	"github.com/spinup-io/spinup/logger"
	"github.com/spinup-io/spinup/platform"
	"github.com/spinup-io/spinup/provision"
	"github.com/spinup-io/spinup/redis"
	"github.com/spinup-io/spinup/sequencer"
	"github.com/spinup-io/spinup/supervise"
	"github.com/spinup-io/spinup/sysconfig"
	"github.com/spinup-io/spinup/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("spinup", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cloudProvider := fs.String("cloud_provider", "", "cloud provider to enable: amazon, google, or none")
	defaultRegion := fs.String("default_region", "", "default region for the selected provider")
	quiet := fs.Bool("quiet", false, "non-interactive run; forces provider=none and region=none")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errs.ExitHelp
		}
		// Unknown flag: pflag already printed the error and usage.
		return errs.ExitFailure
	}
	if *showVersion {
		fmt.Fprintln(os.Stdout, version.String())
		return errs.ExitOK
	}

	log := logger.NewFromEnv("spinup")

	settings, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to resolve configuration")
		return errs.ExitFailure
	}
	settings.ApplyFlags(*cloudProvider, *defaultRegion, *quiet)
	if err := settings.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return errs.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newRun(settings, log)
	runErr := r.Execute(ctx)
	fmt.Fprint(os.Stdout, r.Summary.Render())

	if runErr != nil {
		r.Log.WithError(runErr).Error("bootstrap failed")
	}
	return errs.ExitCode(runErr)
}

// newRun assembles the bootstrap phases from resolved settings.
func newRun(settings *config.Settings, log *logger.Logger) *bootstrap.Run {
	r := bootstrap.NewRun(log)
	zlog := r.Log.GetLogger()

	r.AddPhase("detect", func(ctx context.Context) error {
		info, err := platform.Detect()
		if err != nil {
			return err
		}
		r.Log.Info("detected os", logger.Fields("os", info.Pretty))
		return platform.CheckSupported(info)
	})

	r.AddPhase("provision", func(ctx context.Context) error {
		p := provision.New(provision.Config{
			AllowRepositoryEdits: settings.AllowRepositoryEdits,
			UpdateOS:             settings.UpdateOS,
		}, zlog)
		return p.InstallAll(ctx)
	})

	r.AddPhase("configure", func(ctx context.Context) error {
		return sysconfig.Rewrite(settings.ConfigFile, sysconfig.Options{
			Provider:      sysconfig.Provider(settings.CloudProvider),
			DefaultRegion: settings.DefaultRegion,
		})
	})

	r.AddPhase("database", func(ctx context.Context) error {
		if err := redis.Start(nil)(ctx); err != nil {
			return errs.Provisioning("redis-server", err)
		}
		ep := sequencer.Endpoint{Host: settings.CassandraHost, Port: settings.CassandraPort}
		steps := cassandra.SchemaSteps(settings.CassandraDir, ep, nil)
		err := sequencer.EnsureReady(ctx, ep, cassandra.LocalStart(nil), steps,
			sequencer.DefaultRetryPolicy(), sequencer.WithLogger(zlog))
		var exhausted *sequencer.StepExhaustedError
		if errors.As(err, &exhausted) {
			return errs.StepExhausted(exhausted.Step, exhausted.Attempts, exhausted.Cause)
		}
		return err
	})

	r.AddPhase("services", func(ctx context.Context) error {
		s := supervise.New(settings.LogDir, zlog)
		_, err := s.StartAll(supervise.DefaultManifest())
		return err
	})

	return r
}
