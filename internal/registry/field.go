package registry

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/company-research/internal/model"
)

//go:embed fields.yaml
var defaultFields []byte

type fieldFile struct {
	Fields []model.FieldSpec `yaml:"fields"`
}

// Default returns the built-in field registry.
func Default() *model.FieldRegistry {
	reg, err := Parse(defaultFields)
	if err != nil {
		// The embedded table is covered by tests.
		panic(err)
	}
	return reg
}

// Load returns the registry from path, or the built-in one when path is empty.
func Load(path string) (*model.FieldRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	zap.L().Info("registry: loaded field table",
		zap.String("path", path),
		zap.Int("fields", len(reg.Fields)),
		zap.Int("aliases", len(reg.AliasTable())),
	)
	return reg, nil
}

// Parse decodes a YAML field table and builds the indexed registry.
func Parse(data []byte) (*model.FieldRegistry, error) {
	var f fieldFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: decode yaml")
	}
	seen := make(map[string]bool, len(f.Fields))
	for _, spec := range f.Fields {
		if spec.ID == "" {
			return nil, eris.New("registry: field without id")
		}
		if seen[spec.ID] {
			return nil, eris.Errorf("registry: duplicate field %q", spec.ID)
		}
		seen[spec.ID] = true
		if spec.Shape != "" && !spec.Shape.Valid() {
			return nil, eris.Errorf("registry: field %q has unknown shape %q", spec.ID, spec.Shape)
		}
	}
	return model.NewFieldRegistry(f.Fields), nil
}
