/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/suparena/unitofwork/config"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/registry"
)

// Options controls a metadata check run.
type Options struct {
	// MetadataFile overrides the configured metadata file.
	MetadataFile string
	Debug        bool
}

// Run loads the metadata file into a fresh registry, cross-checks it and
// writes a per-entity summary to out.
func Run(opts Options, out io.Writer, logger *zap.Logger) error {
	if opts.MetadataFile == "" {
		return errors.NewConfigurationError("processor", "no metadata file given")
	}
	logger = logger.With(zap.String("file", opts.MetadataFile))

	reg := registry.New()
	if err := reg.LoadFile(opts.MetadataFile); err != nil {
		logger.Error("failed to load metadata", zap.Error(err))
		return err
	}
	if err := reg.Check(); err != nil {
		logger.Error("metadata check failed", zap.Error(err))
		return err
	}
	reg.Seal()

	names := reg.Names()
	logger.Debug("metadata loaded", zap.Int("entities", len(names)))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tCOLLECTION\tKEY\tPROPERTIES\tRELATIONSHIPS")
	for _, name := range names {
		meta, err := reg.Metadata(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", meta.Name, meta.Collection, meta.PrimaryKey,
			len(meta.Properties), relationships(meta))
	}
	return tw.Flush()
}

func relationships(meta *registry.EntityMetadata) string {
	rels := meta.Relationships()
	if len(rels) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(rels))
	for _, p := range rels {
		s := fmt.Sprintf("%s(%s->%s)", p.Name, p.Kind, p.Target)
		if p.Owner {
			s += "*"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Main runs the check against the process configuration and returns the exit
// code: 0 on success, 2 for configuration problems, 1 otherwise.
func Main(opts Options) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitCode(err)
	}
	if opts.MetadataFile == "" {
		opts.MetadataFile = cfg.MetadataFile
	}

	logger, err := newLogger(cfg, opts.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := Run(opts, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitCode(err)
	}
	return 0
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	if debug {
		zc := zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		return zc.Build()
	}
	return cfg.Logger()
}

func exitCode(err error) int {
	if errors.IsConfigurationError(err) {
		return 2
	}
	return 1
}
