package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk YAML form of a Policy.
type policyFile struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Terms        Terms  `yaml:"terms"`
	SuccessFaces []int  `yaml:"success_faces"`
	FreeFaces    []int  `yaml:"free_faces"`
}

// ParsePolicy decodes a YAML ruleset document.
//
// Postcondition: Returns a validated Policy or a non-nil error.
func ParsePolicy(data []byte) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Policy{}, fmt.Errorf("parsing ruleset: %w", err)
	}
	p, err := NewPolicy(f.ID, f.Name, f.Terms, f.SuccessFaces, f.FreeFaces)
	if err != nil {
		return Policy{}, err
	}
	p.Description = f.Description
	return p, nil
}

// LoadPolicy reads and parses a single YAML ruleset file.
//
// Precondition: path must name a readable file.
// Postcondition: Returns a validated Policy or a non-nil error.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return Policy{}, fmt.Errorf("ruleset file %s: %w", path, err)
	}
	return p, nil
}

// LoadPolicies reads all .yaml files in dir and parses each as a Policy.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed policies in file-name order (may be empty)
// or a non-nil error.
func LoadPolicies(dir string) ([]Policy, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	policies := make([]Policy, 0, len(files))
	for _, path := range files {
		p, err := LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
