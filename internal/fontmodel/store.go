package fontmodel

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/robert-malhotra/bgpack/hdf5"
)

// ModelsGroup holds one [a, b] dataset per font name.
const ModelsGroup = "models"

// Save writes models to a new container at path. Fonts sharing a name
// keep the last model.
func Save(path string, models []Model) error {
	f, err := hdf5.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	g, err := f.Root().CreateGroup(ModelsGroup)
	if err != nil {
		f.Close()
		return err
	}
	if err := g.SetAttr("min_size", int64(MinSize)); err != nil {
		f.Close()
		return err
	}
	if err := g.SetAttr("max_size", int64(MaxSize)); err != nil {
		f.Close()
		return err
	}
	for _, m := range models {
		_, err := g.CreateDataset(datasetName(m.Name), []float64{m.A, m.B},
			hdf5.WithAttribute("font_path", m.Path))
		if err != nil {
			f.Close()
			return errors.Wrapf(err, "model %s", m.Name)
		}
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// Load reads the models saved by Save, keyed by dataset name.
func Load(path string) (map[string][2]float64, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := f.OpenGroup(ModelsGroup)
	if err != nil {
		return nil, err
	}
	names, err := g.Members()
	if err != nil {
		return nil, err
	}
	out := make(map[string][2]float64, len(names))
	for _, name := range names {
		ds, err := g.OpenDataset(name)
		if err != nil {
			return nil, err
		}
		v, err := ds.ReadFloat64()
		if err != nil {
			return nil, err
		}
		if len(v) != 2 {
			return nil, errors.Errorf("model %s has %d values", name, len(v))
		}
		out[name] = [2]float64{v[0], v[1]}
	}
	return out, nil
}

// datasetName keeps a font name usable as a single link name.
func datasetName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" || name == "." {
		return "_"
	}
	return name
}
