package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/classgen"
	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/compiler"
	"github.com/deepnoodle-ai/classgen/errors"
	"github.com/deepnoodle-ai/classgen/internal/table"
	"github.com/deepnoodle-ai/classgen/syntax"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files or directories...]",
		Short: "Compile declaration files into class files",
		Long: `Compile every enum declared in the given .ts files into a JVM class file.
Directories are searched recursively for .ts files.

The output target is a directory (the default is ./classes), a file:// URL,
an s3://bucket/prefix URL or a postgres:// connection string.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd.Context(), args)
		},
	}
	flags := cmd.Flags()
	flags.String("out", "classes", "output directory or URL")
	flags.IntP("jobs", "j", 0, "number of files compiled in parallel (default: number of CPUs)")
	flags.BoolP("keep-going", "k", false, "report every failing declaration and write the classes that succeeded")
	flags.Int("target", classfile.DefaultTarget, "Java release of the generated classes (8 to 21)")
	flags.StringP("output", "o", "text", "summary format: text or json")
	flags.Bool("dry-run", false, "compile without writing any class files")
	flags.Bool("strict", false, "require a literal initializer on every enum member")
	return cmd
}

type builtClass struct {
	Class   string `json:"class"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Members int    `json:"members"`
	Bytes   int    `json:"bytes"`
}

type buildSummary struct {
	RunID   string       `json:"run_id"`
	Target  int          `json:"target"`
	Out     string       `json:"out,omitempty"`
	Written int          `json:"written"`
	Classes []builtClass `json:"classes"`
	Errors  []string     `json:"errors,omitempty"`
}

func (a *app) runBuild(ctx context.Context, args []string) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	sources, err := collectSources(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no .ts files found in %s", strings.Join(args, ", "))
	}
	keepGoing := a.v.GetBool("keep-going")
	target := a.v.GetInt("target")
	a.logger.Info().Int("files", len(sources)).Int("target", target).Msg("building")

	opts := []classgen.Option{
		classgen.WithTarget(target),
		classgen.WithJobs(a.v.GetInt("jobs")),
		classgen.WithKeepGoing(keepGoing),
		classgen.WithLogger(a.logger),
	}
	if a.v.GetBool("strict") {
		opts = append(opts, classgen.WithRules(syntax.Strict))
	}
	result, buildErr := classgen.Build(ctx, sources, opts...)
	if result == nil {
		return buildErr
	}
	if buildErr != nil {
		fmt.Fprint(a.stderr, errors.NewFormatter(!color.NoColor).FormatError(buildErr))
		if !keepGoing {
			return errReported
		}
	}

	summary := buildSummary{
		RunID:   result.RunID.String(),
		Target:  target,
		Classes: describeClasses(result),
	}
	for _, e := range errors.Flatten(buildErr) {
		summary.Errors = append(summary.Errors, e.Error())
	}
	if !a.v.GetBool("dry-run") {
		summary.Out = a.v.GetString("out")
		n, err := result.Publish(ctx, summary.Out)
		if err != nil {
			return err
		}
		summary.Written = n
	}

	if format == "json" {
		if err := writeJSON(a.stdout, summary); err != nil {
			return err
		}
	} else if err := a.printSummary(summary); err != nil {
		return err
	}
	if buildErr != nil {
		return errReported
	}
	return nil
}

func describeClasses(result *classgen.Result) []builtClass {
	classes := []builtClass{}
	_ = result.Artifacts.Each(func(art compiler.Artifact) error {
		c := builtClass{
			Class: art.Name,
			Path:  compiler.BinaryName(art.Name) + ".class",
			Bytes: len(art.Data),
		}
		if info, ok := result.Enums.Enum(art.Name); ok {
			c.Kind = info.Kind.String()
			c.Members = len(info.Members)
		}
		classes = append(classes, c)
		return nil
	})
	return classes
}

func (a *app) printSummary(s buildSummary) error {
	if len(s.Classes) > 0 {
		t := table.NewTable(a.stdout).
			WithHeader([]string{"CLASS", "KIND", "MEMBERS", "BYTES"}).
			WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter}).
			WithColumnAlignment([]table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignRight})
		for _, c := range s.Classes {
			t.Append([]string{c.Class, c.Kind, strconv.Itoa(c.Members), strconv.Itoa(c.Bytes)})
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	switch {
	case s.Out == "":
		fmt.Fprintf(a.stdout, "compiled %d classes (dry run)\n", len(s.Classes))
	default:
		fmt.Fprintf(a.stdout, "%s %d classes to %s\n", green("wrote"), s.Written, s.Out)
	}
	return nil
}

// collectSources reads the named files, and every .ts file below the named
// directories, in lexical order.
func collectSources(args []string) ([]classgen.Source, error) {
	var sources []classgen.Source
	add := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, classgen.Source{Name: path, Code: string(data)})
		return nil
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(arg); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".ts") {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sources, nil
}
