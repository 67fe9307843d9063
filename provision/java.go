package provision

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spinup-io/spinup/errs"
	"github.com/spinup-io/spinup/process"
)

var javaVersionRe = regexp.MustCompile(`(?m)^(?:openjdk|java) version "([^"]+)"`)

// InstallJava installs the pinned OpenJDK 8 runtime. When repository
// edits are not allowed it verifies an existing 1.8 install instead.
func (p *Provisioner) InstallJava(ctx context.Context) error {
	if p.cfg.SkipJava {
		p.log.Info().Msg("skipping java install")
		return nil
	}

	if !p.cfg.AllowRepositoryEdits {
		if err := p.checkJavaVersion(ctx); err != nil {
			return errs.Provisioning("openjdk-8-jre", err)
		}
		p.log.Info().Msg("using existing java")
		return nil
	}

	p.log.Info().Str("package", "openjdk-8-jre").Msg("installing openjdk")
	if err := p.addAptRepository(ctx, "ppa:openjdk-r/ppa"); err != nil {
		return err
	}
	if err := p.aptUpdate(ctx); err != nil {
		return err
	}
	if err := p.installPackage(ctx, "openjdk-8-jre", OpenJDKVersion); err != nil {
		return err
	}
	if _, err := p.run(ctx, sudo("update-java-alternatives", "--jre",
		"-s", "/usr/lib/jvm/java-1.8.0-openjdk-amd64")); err != nil {
		return errs.Provisioning("openjdk-8-jre", err)
	}
	return nil
}

// checkJavaVersion verifies that an installed java reports version 1.8.
func (p *Provisioner) checkJavaVersion(ctx context.Context) error {
	result, err := p.run(ctx, process.Command{Binary: "java", Args: []string{"-version"}})
	if err != nil {
		return fmt.Errorf("java does not appear to be installed: %w", err)
	}

	// java -version historically writes to stderr.
	output := string(result.Stdout) + string(result.Stderr)
	m := javaVersionRe.FindStringSubmatch(output)
	if m == nil {
		return fmt.Errorf("unrecognized java version output: %s", output)
	}
	if len(m[1]) < 3 || m[1][:3] != "1.8" {
		return fmt.Errorf("java %s is installed, but version 1.8 is required", m[1])
	}
	p.log.Info().Str("version", m[1]).Msg("found java")
	return nil
}
