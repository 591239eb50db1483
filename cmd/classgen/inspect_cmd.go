package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/classgen/classfile"
	"github.com/deepnoodle-ai/classgen/dis"
	"github.com/deepnoodle-ai/classgen/internal/table"
	"github.com/spf13/cobra"
)

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.class>",
		Short: "Describe a class file and disassemble its methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(args[0])
		},
	}
	flags := cmd.Flags()
	flags.String("method", "", "disassemble only the named method")
	flags.StringP("output", "o", "text", "output format: text or json")
	return cmd
}

type inspectedMember struct {
	Access       string            `json:"access"`
	Name         string            `json:"name"`
	Descriptor   string            `json:"descriptor"`
	MaxStack     int               `json:"max_stack,omitempty"`
	MaxLocals    int               `json:"max_locals,omitempty"`
	Frames       int               `json:"frames,omitempty"`
	Instructions []dis.Instruction `json:"instructions,omitempty"`
}

type inspectedClass struct {
	Name       string            `json:"name"`
	Super      string            `json:"super"`
	Access     string            `json:"access"`
	Major      int               `json:"major"`
	Release    int               `json:"release"`
	SourceFile string            `json:"source_file,omitempty"`
	Constants  int               `json:"constants"`
	Fields     []inspectedMember `json:"fields"`
	Methods    []inspectedMember `json:"methods"`
}

func (a *app) runInspect(path string) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cf, err := classfile.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	info, err := inspect(cf, a.v.GetString("method"))
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(a.stdout, info)
	}
	return a.printClass(info)
}

func inspect(cf *classfile.ClassFile, method string) (*inspectedClass, error) {
	info := &inspectedClass{
		Name:       cf.Name,
		Super:      cf.SuperName,
		Access:     classfile.AccessString(cf.Access),
		Major:      int(cf.Major),
		Release:    classfile.Release(cf.Major),
		SourceFile: cf.SourceFile,
		Constants:  len(cf.Constants) - 1,
		Fields:     []inspectedMember{},
		Methods:    []inspectedMember{},
	}
	for _, f := range cf.Fields {
		info.Fields = append(info.Fields, inspectedMember{
			Access:     classfile.AccessString(f.Access),
			Name:       f.Name,
			Descriptor: f.Descriptor,
		})
	}
	for _, m := range cf.Methods {
		if method != "" && m.Name != method {
			continue
		}
		im := inspectedMember{
			Access:     classfile.AccessString(m.Access),
			Name:       m.Name,
			Descriptor: m.Descriptor,
		}
		if m.Code != nil {
			instructions, err := dis.Disassemble(m.Code.Code, cf)
			if err != nil {
				return nil, fmt.Errorf("method %s: %w", m.Name, err)
			}
			im.MaxStack = int(m.Code.MaxStack)
			im.MaxLocals = int(m.Code.MaxLocals)
			im.Frames = len(m.Code.Frames)
			im.Instructions = instructions
		}
		info.Methods = append(info.Methods, im)
	}
	if method != "" && len(info.Methods) == 0 {
		return nil, fmt.Errorf("method %q not found in %s", method, cf.Name)
	}
	return info, nil
}

func (a *app) printClass(info *inspectedClass) error {
	w := a.stdout
	fmt.Fprintf(w, "%s %s extends %s\n", info.Access, bold(info.Name), info.Super)
	fmt.Fprintf(w, "  version: %d (Java %d)\n", info.Major, info.Release)
	if info.SourceFile != "" {
		fmt.Fprintf(w, "  source:  %s\n", info.SourceFile)
	}
	fmt.Fprintf(w, "  pool:    %d constants\n\n", info.Constants)

	if len(info.Fields) > 0 {
		t := table.NewTable(w).WithHeader([]string{"FIELD", "DESCRIPTOR", "ACCESS"})
		for _, f := range info.Fields {
			t.Append([]string{f.Name, f.Descriptor, f.Access})
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	for _, m := range info.Methods {
		fmt.Fprintf(w, "\n%s %s%s", m.Access, bold(m.Name), m.Descriptor)
		if m.Instructions == nil {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "  stack=%d locals=%d frames=%d\n", m.MaxStack, m.MaxLocals, m.Frames)
		if err := dis.Print(m.Instructions, w); err != nil {
			return err
		}
	}
	return nil
}
