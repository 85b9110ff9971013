package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses embedded sources first, then every .hcl file under paths, and
// merges all discovered blocks into one model. A later runner or asset
// definition with the same type replaces an earlier one, so manifests under
// --modules-path can override the built-in ones.
func (l *Loader) Load(ctx context.Context, sources []config.Source, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "source_count", len(sources), "path_count", len(paths))

	model := config.NewModel()
	parser := hclparse.NewParser()

	for _, src := range sources {
		hclFile, diags := parser.ParseHCL(src.Body, src.Name)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse embedded manifest %s: %w", src.Name, diags)
		}
		if err := mergeFile(ctx, model, hclFile, src.Name); err != nil {
			return nil, nil, err
		}
	}

	hclFiles, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := mergeFile(ctx, model, hclFile, file); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("HCL loading complete.",
		"runners", len(model.Runners),
		"assets", len(model.Assets),
		"steps", len(model.Grid.Steps),
		"resources", len(model.Grid.Resources),
		"locals", len(model.Grid.Locals),
	)
	return model, NewConverter(), nil
}

// mergeFile decodes one parsed file and merges its blocks into model.
func mergeFile(ctx context.Context, model *config.Model, file *hcl.File, name string) error {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", name, diags)
	}

	for _, runner := range root.Runners {
		def, err := translateRunnerDefinition(ctx, runner)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, exists := model.Runners[def.Type]; exists {
			logger.Debug("Runner definition overridden.", "type", def.Type, "file", name)
		}
		model.Runners[def.Type] = def
	}
	for _, asset := range root.Assets {
		def, err := translateAssetDefinition(ctx, asset)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, exists := model.Assets[def.Type]; exists {
			logger.Debug("Asset definition overridden.", "type", def.Type, "file", name)
		}
		model.Assets[def.Type] = def
	}
	for _, step := range root.Steps {
		s, err := translateStep(step)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		model.Grid.Steps = append(model.Grid.Steps, s)
	}
	for _, resource := range root.Resources {
		r, err := translateResource(resource)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		model.Grid.Resources = append(model.Grid.Resources, r)
	}
	for _, locals := range root.Locals {
		if err := translateLocals(locals, model.Grid.Locals); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of .hcl files. A path that does not exist is an error.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", fsutil.ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
