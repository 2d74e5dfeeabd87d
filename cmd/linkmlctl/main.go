// Command linkmlctl is a thin CLI wrapper around the linkml package: load
// a schema, validate instance data against one of its classes, or project
// the schema to a graph-database definition. It exists to exercise the
// library from a shell, not as the primary integration surface.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/linkml-go/linkml"
	"github.com/linkml-go/linkml/pkg/graphdb"
)

func main() {
	app := &cli.App{
		Name:  "linkmlctl",
		Usage: "load, validate, and project LinkML schemas",
		Commands: []*cli.Command{
			validateCommand(),
			projectCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "linkmlctl:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor picks the exit code for an error that reaches main. The
// subcommands set 0 (success) and 1 (invalid instance) themselves, via a
// nil return or cli.Exit; any error that gets here is an operational
// failure (schema/parse/resource error) and maps to 2.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *linkml.SchemaError, *linkml.ParseError, *linkml.ImportError, *linkml.PathError, *linkml.ResourceLimit:
		return 2
	default:
		return 2
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate an instance document against a schema class",
		ArgsUsage: "<schema.yaml> <class-name> <instance.json>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("expected <schema.yaml> <class-name> <instance.json>", 2)
			}
			schemaPath, className, instancePath := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

			view, err := loadView(c.Context, schemaPath)
			if err != nil {
				return cli.Exit(err, 2)
			}

			bank, err := linkml.CompileValidators(view, className)
			if err != nil {
				return cli.Exit(err, 2)
			}

			data, err := os.ReadFile(instancePath)
			if err != nil {
				return cli.Exit(err, 2)
			}
			var instance map[string]any
			if err := json.Unmarshal(data, &instance); err != nil {
				return cli.Exit(err, 2)
			}

			report, err := bank.Validate(c.Context, instance)
			if err != nil {
				return cli.Exit(err, 2)
			}

			out, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(out))

			if !report.Valid {
				return cli.Exit("validation failed", 1)
			}
			return nil
		},
	}
}

func projectCommand() *cli.Command {
	return &cli.Command{
		Name:      "project",
		Usage:     "project a schema to a graph-database schema definition",
		ArgsUsage: "<schema.yaml>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected <schema.yaml>", 2)
			}

			view, err := loadView(c.Context, c.Args().Get(0))
			if err != nil {
				return cli.Exit(err, 2)
			}

			result, err := graphdb.Project(view)
			if err != nil {
				return cli.Exit(err, 2)
			}

			for _, d := range result.Diagnostics {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Class, d.Message)
			}
			fmt.Print(result.DSL)
			return nil
		},
	}
}

func loadView(ctx context.Context, schemaPath string) (*linkml.SchemaView, error) {
	dir := filepath.Dir(schemaPath)
	base := filepath.Base(schemaPath)

	loader := linkml.NewLoader(&linkml.OSFilesystemAdapter{Root: dir})
	doc, err := loader.ResolveImports(ctx, base)
	if err != nil {
		return nil, err
	}
	return linkml.BuildSchemaView(doc)
}
