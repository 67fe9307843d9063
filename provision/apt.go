package provision

import (
	"context"
	"strings"

	"github.com/spinup-io/spinup/errs"
	"github.com/spinup-io/spinup/process"
)

// sudo builds a command run through sudo, matching how the original
// installer invoked the package manager.
func sudo(binary string, args ...string) process.Command {
	return process.Command{
		Binary: "sudo",
		Args:   append([]string{binary}, args...),
	}
}

// installPackage installs name at the given version, or the current
// release when version is empty.
func (p *Provisioner) installPackage(ctx context.Context, name, version string) error {
	return p.installPackageWithOptions(ctx, name, version)
}

func (p *Provisioner) installPackageWithOptions(ctx context.Context, name, version string, options ...string) error {
	pkg := name
	if version != "" {
		pkg += "=" + version
	}
	args := append([]string{"-q", "-y"}, options...)
	args = append(args, "install", pkg)
	if _, err := p.run(ctx, sudo("apt-get", args...)); err != nil {
		return errs.Provisioning(name, err)
	}
	return nil
}

func (p *Provisioner) aptUpdate(ctx context.Context) error {
	if _, err := p.run(ctx, sudo("apt-get", "-y", "update")); err != nil {
		return errs.Provisioning("apt-update", err)
	}
	return nil
}

// addAptRepository registers a PPA.
func (p *Provisioner) addAptRepository(ctx context.Context, ppa string) error {
	if _, err := p.run(ctx, sudo("add-apt-repository", "-y", ppa)); err != nil {
		return errs.Provisioning(ppa, err)
	}
	return nil
}

// addAptSource writes a sources.list.d entry.
func (p *Provisioner) addAptSource(ctx context.Context, name, entry string) error {
	cmd := process.Command{
		Binary: "sudo",
		Args:   []string{"tee", "/etc/apt/sources.list.d/" + name},
		Stdin:  strings.NewReader(entry + "\n"),
	}
	if _, err := p.run(ctx, cmd); err != nil {
		return errs.Provisioning(name, err)
	}
	return nil
}
