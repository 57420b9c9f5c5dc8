package report

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/talkincode/perfinsight/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSON writes the machine-readable results file and returns its path.
// Undefined statistics (NaN) are encoded as null.
func (r *Renderer) WriteJSON(res *domain.AnalysisResult) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create report dir %s", r.outputDir)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode results")
	}
	path := filepath.Join(r.outputDir, JSONFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write results %s", path)
	}
	return path, nil
}
