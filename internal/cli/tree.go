package cli

import (
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/pthm/sqltemplate/pkg/query"
)

// LoadTree reads a query tree from a YAML or JSON file. A path of "-" reads
// from stdin.
func LoadTree(path string) (query.QueryComponent, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return query.QueryComponent{}, fmt.Errorf("reading tree: %w", err)
	}
	return ParseTree(data)
}

// ParseTree decodes a query tree. Unknown keys are rejected.
func ParseTree(data []byte) (query.QueryComponent, error) {
	var qc query.QueryComponent
	if err := yaml.UnmarshalStrict(data, &qc); err != nil {
		return query.QueryComponent{}, fmt.Errorf("decoding tree: %w", err)
	}
	return qc, nil
}
