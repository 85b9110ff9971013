// Package git provides the git_repository asset and the git_pull and
// git_push runners.
package git

import (
	"context"
	_ "embed"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/gitrepo"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// Options are applied to every repository the asset opens.
	Options []gitrepo.Option
}

// Manifest returns the embedded HCL manifest.
func (m *Module) Manifest() config.Source {
	return config.Source{Name: "git/manifest.hcl", Body: manifest}
}

// RepositoryInput defines the arguments of the git_repository asset.
type RepositoryInput struct {
	Path string `bggo:"path"`
}

// Deps holds the repository used by both runners.
type Deps struct {
	Repo *gitrepo.Repository `bggo:"repo"`
}

// PullOutput is returned by git_pull.
type PullOutput struct {
	Stdout string `cty:"stdout"`
}

// PushInput defines the arguments of git_push.
type PushInput struct {
	Message string   `bggo:"message"`
	Paths   []string `bggo:"paths"`
}

// PushOutput is returned by git_push.
type PushOutput struct {
	Stdout  string `cty:"stdout"`
	Message string `cty:"message"`
}

func (m *Module) createRepository(ctx context.Context, input *RepositoryInput) (*gitrepo.Repository, error) {
	ctxlog.FromContext(ctx).Debug("Opening repository.", "path", input.Path)
	return gitrepo.Open(input.Path, m.Options...)
}

// DestroyRepository releases the handle. A working copy holds no live
// process or connection, so there is nothing to close.
func DestroyRepository(repo *gitrepo.Repository) error {
	return nil
}

// OnRunGitPull syncs the working copy with its upstream.
func OnRunGitPull(ctx context.Context, deps *Deps, _ any) (*PullOutput, error) {
	out, err := deps.Repo.Pull(ctx)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Git pull completed.", "output", out)
	return &PullOutput{Stdout: out}, nil
}

// OnRunGitPush stages, commits and pushes the configured paths.
func OnRunGitPush(ctx context.Context, deps *Deps, input *PushInput) (*PushOutput, error) {
	out, err := deps.Repo.Publish(ctx, input.Message, input.Paths...)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Git push completed.", "output", out)
	return &PushOutput{Stdout: out, Message: input.Message}, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateGitRepository", &registry.RegisteredAsset{
		NewInput: func() any { return new(RepositoryInput) },
		CreateFn: m.createRepository,
	})
	r.RegisterAssetHandler("DestroyGitRepository", &registry.RegisteredAsset{
		DestroyFn: DestroyRepository,
	})
	r.RegisterRunner("OnRunGitPull", &registry.RegisteredRunner{
		NewDeps: func() any { return new(Deps) },
		Fn:      OnRunGitPull,
	})
	r.RegisterRunner("OnRunGitPush", &registry.RegisteredRunner{
		NewInput: func() any { return new(PushInput) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunGitPush,
	})
}
