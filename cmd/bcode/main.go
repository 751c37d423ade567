// Command bcode is the driver spec §6.3 describes: it reads one textual
// class description, runs it through the asm package's symbol table,
// method compiler, linker, and writer, and exits with the number of
// diagnostics produced. Everything here is collaborator shell around the
// asm package's core — argument parsing and logging configuration, per
// spec §1's "out of scope (treated as external collaborators)" list.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pchintalapudi/bcode-compiler/asm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// classFileExt is the on-disk extension for a compiled class file.
const classFileExt = ".gvc"

// logrusAdapter satisfies asm.Logger by forwarding to a *logrus.Logger,
// the wiring spec §9's redesign note calls for explicitly ("a systems
// re-write should pass a logging interface into the driver"): the core
// package never imports logrus itself.
type logrusAdapter struct{ l *logrus.Logger }

func (a logrusAdapter) Debugf(format string, args ...any) { a.l.Debugf(format, args...) }
func (a logrusAdapter) Infof(format string, args ...any)  { a.l.Infof(format, args...) }
func (a logrusAdapter) Warnf(format string, args ...any)  { a.l.Warnf(format, args...) }
func (a logrusAdapter) Errorf(format string, args ...any) { a.l.Errorf(format, args...) }

func main() {
	var (
		sourcePath string
		buildDir   string
		logLevel   string
	)

	errCount := 0

	root := &cobra.Command{
		Use:           "bcode",
		Short:         "Assemble and link a class-based bytecode source file into a binary class file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			log.SetLevel(level)
			logger := logrusAdapter{l: log}

			n, err := run(sourcePath, buildDir, logger)
			errCount = n
			return err
		},
	}
	root.Flags().StringVarP(&sourcePath, "file", "f", "", "source class file to compile (required)")
	root.Flags().StringVarP(&buildDir, "build-dir", "b", ".", "output build directory")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warning|error")
	_ = root.MarkFlagRequired("file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bcode:", err)
		if errCount == 0 {
			errCount = 1
		}
	}
	os.Exit(errCount)
}

// run performs one compile: parse -> compile -> link -> write. It returns
// the number of accumulated diagnostics (spec §6.3: "Exit code is the
// number of errors") plus a non-nil error only for fatal, non-recoverable
// failures (I/O, per spec §7): reading the source, which returns a count
// of 0, or writing the output, which returns the count gathered so far.
func run(sourcePath, buildDir string, log asm.Logger) (int, error) {
	decl, parseErrs, err := asm.ParseFile(sourcePath)
	if err != nil {
		log.Errorf("%v", err)
		return 0, err
	}

	cls, pool := asm.CompileClass(decl)
	var all asm.ErrorList
	all.Merge(&parseErrs)
	all.Merge(&cls.Errors)

	linker := asm.NewLinker(pool)
	linkErrs := linker.Link(cls)
	all.Merge(linkErrs)

	for _, e := range all.Errors() {
		log.Errorf("%v", e)
	}

	outPath := classOutputPath(buildDir, decl.Name)
	writer := asm.NewWriter(log)
	if writeErr := writer.Write(outPath, cls, pool); writeErr != nil {
		// Fatal per spec §7: "Fatal (non-recoverable) errors are only I/O
		// failures that prevent opening the output mapping."
		log.Errorf("%v", writeErr)
		return all.Len(), writeErr
	}
	log.Infof("wrote %s (%d method(s), %d error(s))", outPath, len(cls.Methods), all.Len())

	return all.Len(), nil
}

// classOutputPath mirrors a dotted class name onto the build directory
// per spec §6.3: "a.b.C -> <build_dir>/a/b/C.<ext>".
func classOutputPath(buildDir, className string) string {
	parts := strings.Split(className, ".")
	rel := filepath.Join(parts...) + classFileExt
	return filepath.Join(buildDir, rel)
}
