package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load returns the compiled-in catalog when dir is empty, otherwise the
// catalog assembled from every YAML file under dir. Files are read in lexical
// path order and their grades, exams and resources are concatenated, so an
// operator can split a catalog across files such as 10-grades.yaml and
// 20-resources.yaml.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		c, err := Default()
		if err != nil {
			return nil, fmt.Errorf("loading embedded catalog: %w", err)
		}
		return c, nil
	}

	paths, err := yamlFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("loading catalog: no YAML files in %s", dir)
	}

	var merged document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if len(doc.Grades)+len(doc.Exams)+len(doc.Resources) == 0 {
			slog.Warn("skipping catalog file with no entries", "path", path)
			continue
		}
		merged.Grades = append(merged.Grades, doc.Grades...)
		merged.Exams = append(merged.Exams, doc.Exams...)
		merged.Resources = append(merged.Resources, doc.Resources...)
	}

	c, err := New(merged.Grades, merged.Exams, merged.Resources)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", dir, err)
	}

	slog.Info("catalog loaded",
		"dir", dir,
		"grades", len(merged.Grades),
		"exams", len(merged.Exams),
		"resources", len(merged.Resources),
	)
	return c, nil
}

func yamlFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
