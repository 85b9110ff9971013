package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block any configuration file may hold.
// Grid files and module manifests share one schema so they can be mixed.
type fileRoot struct {
	Runners   []*runnerBlock   `hcl:"runner,block"`
	Assets    []*assetBlock    `hcl:"asset,block"`
	Steps     []*stepBlock     `hcl:"step,block"`
	Resources []*resourceBlock `hcl:"resource,block"`
	Locals    []*bodyBlock     `hcl:"locals,block"`
}

// bodyBlock captures a block whose attributes are interpreted later.
type bodyBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// stepBlock is a runnable instance of a runner.
type stepBlock struct {
	RunnerType string     `hcl:"runner_type,label"`
	Name       string     `hcl:"instance_name,label"`
	Arguments  *bodyBlock `hcl:"arguments,block"`
	Uses       *bodyBlock `hcl:"uses,block"`
	DependsOn  []string   `hcl:"depends_on,optional"`
}

// resourceBlock is a managed, stateful instance of an asset.
type resourceBlock struct {
	AssetType string     `hcl:"asset_type,label"`
	Name      string     `hcl:"instance_name,label"`
	Arguments *bodyBlock `hcl:"arguments,block"`
	DependsOn []string   `hcl:"depends_on,optional"`
}

type lifecycleBlock struct {
	OnRun string `hcl:"on_run"`
}

type assetLifecycleBlock struct {
	Create  string `hcl:"create"`
	Destroy string `hcl:"destroy"`
}

type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

type outputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// usesBlock declares exactly one of asset_type or runner_type.
type usesBlock struct {
	LocalName  string `hcl:"local_name,label"`
	AssetType  string `hcl:"asset_type,optional"`
	RunnerType string `hcl:"runner_type,optional"`
}

type runnerBlock struct {
	Type        string          `hcl:"type,label"`
	Description string          `hcl:"description,optional"`
	Lifecycle   *lifecycleBlock `hcl:"lifecycle,block"`
	Inputs      []*inputBlock   `hcl:"input,block"`
	Outputs     []*outputBlock  `hcl:"output,block"`
	Uses        []*usesBlock    `hcl:"uses,block"`
}

type assetBlock struct {
	Type        string               `hcl:"type,label"`
	Description string               `hcl:"description,optional"`
	Lifecycle   *assetLifecycleBlock `hcl:"lifecycle,block"`
	Inputs      []*inputBlock        `hcl:"input,block"`
	Outputs     []*outputBlock       `hcl:"output,block"`
}
