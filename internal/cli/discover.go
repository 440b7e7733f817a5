package cli

import (
	"github.com/sirupsen/logrus"

	"github.com/roach88/entail/internal/config"
	"github.com/roach88/entail/internal/glob"
	"github.com/roach88/entail/internal/loader"
	"github.com/roach88/entail/internal/suite"
)

// discover finds and loads the suite files selected by patterns, or by the
// configured patterns when none are given.
func discover(cfg *config.Config, patterns []string, log logrus.FieldLogger) ([]suite.Module, error) {
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}

	files, err := glob.Find(cfg.Cwd, patterns, glob.Options{
		Extensions: cfg.DottedExtensions(),
		Ignore:     cfg.Ignore,
	})
	if err != nil {
		return nil, commandError(ErrCodeDiscovery, "failed to find suite files", err)
	}
	log.WithFields(logrus.Fields{
		"patterns": patterns,
		"files":    len(files),
	}).Debug("suite files found")

	modules, err := loader.Load(cfg.Cwd, files)
	if err != nil {
		return nil, commandError(ErrCodeLoadFailed, "failed to load suite", err)
	}
	return modules, nil
}
