// Package provision installs and pins the third-party packages the
// platform depends on: a Java runtime, Cassandra, Redis, and the
// platform's own packages. It drives apt on Ubuntu/Debian hosts, with a
// direct .deb download fallback when repository edits are not allowed.
package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/spinup-io/spinup/errs"
	"github.com/spinup-io/spinup/process"
)

// Pinned dependency versions. Empty means whatever the repository
// currently serves.
const (
	OpenJDKVersion     = "8u45-b14-1~14.04"
	CassandraVersion   = ""
	RedisServerVersion = "2:2.8.4-2"
)

// cassandraDebRoot is the archive used for the direct-download fallback.
const cassandraDebRoot = "https://archive.apache.org/dist/cassandra/debian/pool/main/c/cassandra"

// RunFunc executes an external command. It exists so tests can substitute
// a recorder for real package-manager invocations.
type RunFunc func(ctx context.Context, cmd process.Command) (*process.Result, error)

// FetchFunc downloads url to path.
type FetchFunc func(ctx context.Context, url, path string) error

// Config controls what the provisioner installs and how.
type Config struct {
	// AllowRepositoryEdits permits modifying the apt source list. When
	// false, packages outside the standard release are downloaded
	// directly instead.
	AllowRepositoryEdits bool
	// UpdateOS runs a full package upgrade before installing.
	UpdateOS bool
	// DownloadDir receives directly-downloaded packages.
	DownloadDir string
	// Skip flags for individual dependencies.
	SkipJava      bool
	SkipCassandra bool
	SkipRedis     bool
}

// Provisioner installs the platform's package dependencies.
type Provisioner struct {
	cfg   Config
	run   RunFunc
	fetch FetchFunc
	log   zerolog.Logger
}

// Option customizes a Provisioner.
type Option func(*Provisioner)

// WithRunner replaces the subprocess runner, typically for tests.
func WithRunner(run RunFunc) Option {
	return func(p *Provisioner) { p.run = run }
}

// WithFetcher replaces the download function, typically for tests.
func WithFetcher(fetch FetchFunc) Option {
	return func(p *Provisioner) { p.fetch = fetch }
}

// New creates a Provisioner.
func New(cfg Config, log zerolog.Logger, opts ...Option) *Provisioner {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	p := &Provisioner{cfg: cfg, run: process.NewRunner(log).Run, fetch: fetchURL, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InstallAll installs every runtime dependency in order. The first
// failure halts the run; nothing already installed is rolled back.
func (p *Provisioner) InstallAll(ctx context.Context) error {
	if err := p.InstallJava(ctx); err != nil {
		return err
	}
	if err := p.InstallCassandra(ctx); err != nil {
		return err
	}
	if err := p.InstallRedis(ctx); err != nil {
		return err
	}
	if err := p.InstallOSUpdates(ctx); err != nil {
		return err
	}
	return nil
}

// InstallRedis installs the pinned redis-server package.
func (p *Provisioner) InstallRedis(ctx context.Context) error {
	if p.cfg.SkipRedis {
		p.log.Info().Msg("skipping redis install")
		return nil
	}
	p.log.Info().Str("package", "redis-server").Msg("installing redis")
	return p.installPackage(ctx, "redis-server", RedisServerVersion)
}

// InstallCassandra installs cassandra and cassandra-tools, either from
// the apache apt repository or via direct .deb download.
func (p *Provisioner) InstallCassandra(ctx context.Context) error {
	if p.cfg.SkipCassandra {
		p.log.Info().Msg("skipping cassandra install")
		return nil
	}
	p.log.Info().Str("package", "cassandra").Msg("installing cassandra")

	if !p.cfg.AllowRepositoryEdits {
		return p.installCassandraFromDebs(ctx)
	}

	if err := p.addAptSource(ctx, "cassandra.sources.list",
		"deb http://www.apache.org/dist/cassandra/debian 21x main"); err != nil {
		return err
	}
	if err := p.aptUpdate(ctx); err != nil {
		return err
	}
	if err := p.installPackageWithOptions(ctx, "cassandra", CassandraVersion, "--force-yes"); err != nil {
		return err
	}
	return p.installPackageWithOptions(ctx, "cassandra-tools", CassandraVersion, "--force-yes")
}

func (p *Provisioner) installCassandraFromDebs(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.DownloadDir, 0o755); err != nil {
		return errs.Provisioning("cassandra", err)
	}
	for _, deb := range []string{"cassandra_2.1.6_all.deb", "cassandra-tools_2.1.6_all.deb"} {
		path := filepath.Join(p.cfg.DownloadDir, deb)
		url := cassandraDebRoot + "/" + deb
		p.log.Info().Str("url", url).Msg("downloading package")
		if err := p.fetch(ctx, url, path); err != nil {
			return errs.Provisioning(deb, err)
		}
		if _, err := p.run(ctx, sudo("dpkg", "-i", path)); err != nil {
			return errs.Provisioning(deb, err)
		}
	}
	return nil
}

// InstallOSUpdates upgrades base packages when requested.
func (p *Provisioner) InstallOSUpdates(ctx context.Context) error {
	if !p.cfg.UpdateOS {
		p.log.Debug().Msg("skipping os upgrades")
		return nil
	}
	p.log.Info().Msg("upgrading os packages")
	if err := p.aptUpdate(ctx); err != nil {
		return err
	}
	if _, err := p.run(ctx, sudo("apt-get", "-y", "upgrade")); err != nil {
		return errs.Provisioning("os-upgrade", err)
	}
	return nil
}

// fetchURL downloads url to path with a plain HTTP GET.
func fetchURL(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}
