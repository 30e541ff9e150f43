package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/importer"
	"github.com/gravitrone/kbconsole/internal/session"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
)

// ImportCmd returns the `kbconsole import` command group.
func ImportCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a scope's taxonomy from a CSV or XLSX file",
	}
	cmd.AddCommand(importTemplateCmd())
	cmd.AddCommand(importValidateCmd(env))
	cmd.AddCommand(importExecuteCmd(env))
	return cmd
}

func importTemplateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty CSV import template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
				if err != nil {
					return fmt.Errorf("create template: %w", err)
				}
				defer f.Close()
				// spreadsheet apps need the BOM to detect UTF-8
				if _, err := f.WriteString("\ufeff"); err != nil {
					return fmt.Errorf("write template: %w", err)
				}
				w = f
			}
			if err := importer.WriteTemplate(w); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func openPipeline(env *Env) (*session.Session, *importer.Pipeline, error) {
	s, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	sc, err := env.Scope(s)
	if err != nil {
		return nil, nil, err
	}
	p := importer.NewPipeline(s.Client, sc)
	p.SetLogger(env.Log)
	return s, p, nil
}

// validateFile runs the first phase and prints its outcome.
func validateFile(cmd *cobra.Command, p *importer.Pipeline, f importer.File) (*importer.Result, error) {
	w := cmd.OutOrStdout()
	res, err := p.Validate(f)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		where := "server"
		if res.Local {
			where = "local check"
		}
		fmt.Fprintf(w, "%s: %d problem(s) found by %s, nothing was written\n", f.Name, len(res.Errors), where)
		printRowErrors(w, res.Errors)
		return res, nil
	}
	fmt.Fprintf(w, "%s is valid for %s: %d categories, %d cases\n",
		f.Name, p.Scope().Label(), res.Summary.Categories, res.Summary.Cases)
	return res, nil
}

func importValidateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an import file without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, p, err := openPipeline(env)
			if err != nil {
				return err
			}
			res, err := validateFile(cmd, p, f)
			if err != nil {
				return guarded(s, err)
			}
			if !res.OK {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}

func importExecuteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <file>",
		Short: "Validate, then replace the whole scope taxonomy with the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, p, err := openPipeline(env)
			if err != nil {
				return err
			}
			res, err := validateFile(cmd, p, f)
			if err != nil {
				return guarded(s, err)
			}
			if !res.OK {
				return fmt.Errorf("validation failed")
			}

			controller := taxonomy.NewController(s.Client, p.Scope())
			controller.SetLogger(env.Log)
			p.OnReplaced(controller.Reload)

			res, err = p.Execute(f, env.Confirmer())
			if err != nil {
				return guarded(s, err)
			}
			w := cmd.OutOrStdout()
			if !res.OK {
				fmt.Fprintln(w, "import rejected, the existing taxonomy is unchanged")
				printRowErrors(w, res.Errors)
				return fmt.Errorf("import failed")
			}
			fmt.Fprintf(w, "%s taxonomy replaced: %d categories, %d cases (%d nodes now)\n",
				p.Scope().Label(), res.Summary.Categories, res.Summary.Cases, controller.Tree().Len())
			return nil
		},
	}
}
