package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/session"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
)

func openController(env *Env) (*session.Session, *taxonomy.Controller, error) {
	s, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	sc, err := env.Scope(s)
	if err != nil {
		return nil, nil, err
	}
	c := taxonomy.NewController(s.Client, sc)
	c.SetLogger(env.Log)
	if err := c.Reload(); err != nil {
		return nil, nil, guarded(s, fmt.Errorf("load tree: %w", err))
	}
	return s, c, nil
}

func intArg(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// TreeCmd returns the `kbconsole tree` command.
func TreeCmd(env *Env) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the taxonomy tree of a scope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := openController(env)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s)\n", c.Scope().Label(), c.Scope())
			printTree(w, taxonomy.Filter(c.Tree(), filter))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "keep nodes whose name contains this text")
	return cmd
}

// NodeCmd returns the `kbconsole node` command group.
func NodeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage taxonomy nodes",
	}
	cmd.AddCommand(nodeShowCmd(env))
	cmd.AddCommand(nodeCreateCmd(env))
	cmd.AddCommand(nodeUpdateCmd(env))
	cmd.AddCommand(nodeDeleteCmd(env))
	return cmd
}

func nodeShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a node with its path and cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "node id")
			if err != nil {
				return err
			}
			s, c, err := openController(env)
			if err != nil {
				return err
			}
			if err := c.Select(id); err != nil {
				return guarded(s, err)
			}
			printSelection(cmd, c.Selection())
			return nil
		},
	}
}

func printSelection(cmd *cobra.Command, sel *taxonomy.Selection) {
	w := cmd.OutOrStdout()
	path := ""
	for i, seg := range sel.Detail.Path {
		if i > 0 {
			path += " / "
		}
		path += seg.Name
	}
	fmt.Fprintf(w, "#%d [L%d] %s\n", sel.Node.ID, sel.Node.Level, sel.Node.Name)
	fmt.Fprintf(w, "path: %s\n", path)
	if sel.Detail.Definition != nil {
		fmt.Fprintf(w, "definition: %s\n", *sel.Detail.Definition)
	}
	if !sel.Node.IsLeaf() {
		fmt.Fprintf(w, "children: %d\n", len(sel.Node.Children))
		return
	}
	if len(sel.Cases) == 0 {
		fmt.Fprintln(w, "no cases")
		return
	}
	rows := make([][]string, 0, len(sel.Cases))
	for _, cs := range sel.Cases {
		rows = append(rows, []string{strconv.Itoa(cs.ID), truncate(cs.Content, 80)})
	}
	printTable(w, []string{"case", "content"}, rows)
}

func nodeCreateCmd(env *Env) *cobra.Command {
	var (
		parent     int
		level      int
		definition string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a node (level 3 needs --definition)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := openController(env)
			if err != nil {
				return err
			}
			var parentID *int
			if parent > 0 {
				parentID = &parent
			}
			if level == 0 {
				level = 1
				if p, ok := c.Tree().Node(parent); ok {
					level = p.Level + 1
				}
			}
			node, err := c.CreateNode(parentID, level, args[0], definition)
			if err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created node #%d [L%d] %s\n", node.ID, node.Level, node.Name)
			return nil
		},
	}
	cmd.Flags().IntVarP(&parent, "parent", "p", 0, "parent node id (omit for a level-1 node)")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "node level (default: one below the parent)")
	cmd.Flags().StringVarP(&definition, "definition", "d", "", "definition (level 3 only)")
	return cmd
}

func nodeUpdateCmd(env *Env) *cobra.Command {
	var (
		name       string
		definition string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a node or change its definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "node id")
			if err != nil {
				return err
			}
			s, c, err := openController(env)
			if err != nil {
				return err
			}
			if err := c.Select(id); err != nil {
				return guarded(s, err)
			}
			sel := c.Selection()
			if !cmd.Flags().Changed("name") {
				name = sel.Node.Name
			}
			if !cmd.Flags().Changed("definition") && sel.Detail.Definition != nil {
				definition = *sel.Detail.Definition
			}
			node, err := c.UpdateNode(id, name, definition)
			if err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated node #%d %s\n", node.ID, node.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&definition, "definition", "d", "", "new definition (level 3 only)")
	return cmd
}

func nodeDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node with its whole subtree and cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "node id")
			if err != nil {
				return err
			}
			s, c, err := openController(env)
			if err != nil {
				return err
			}
			// selecting a leaf lets the prompt count its cases
			if n, ok := c.Tree().Node(id); ok && n.Level == taxonomy.MaxLevel {
				if err := c.Select(id); err != nil {
					return guarded(s, err)
				}
			}
			if err := c.DeleteNode(id, env.Confirmer()); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted node #%d\n", id)
			return nil
		},
	}
}

// CaseCmd returns the `kbconsole case` command group.
func CaseCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage the cases of a level-3 node",
	}
	cmd.AddCommand(caseListCmd(env))
	cmd.AddCommand(caseAddCmd(env))
	cmd.AddCommand(caseUpdateCmd(env))
	cmd.AddCommand(caseDeleteCmd(env))
	return cmd
}

// selectLeaf opens the controller with node args[0] selected.
func selectLeaf(env *Env, raw string) (*session.Session, *taxonomy.Controller, error) {
	id, err := intArg(raw, "node id")
	if err != nil {
		return nil, nil, err
	}
	s, c, err := openController(env)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Select(id); err != nil {
		return nil, nil, guarded(s, err)
	}
	return s, c, nil
}

func caseListCmd(env *Env) *cobra.Command {
	var keyword string
	cmd := &cobra.Command{
		Use:   "list <node-id>",
		Short: "List cases, optionally filtered by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := selectLeaf(env, args[0])
			if err != nil {
				return err
			}
			if keyword != "" {
				if err := c.SetCaseKeyword(keyword); err != nil {
					return guarded(s, err)
				}
			}
			printSelection(cmd, c.Selection())
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "case content keyword")
	return cmd
}

func caseAddCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <node-id> <content>",
		Short: "Add a case to a level-3 node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := selectLeaf(env, args[0])
			if err != nil {
				return err
			}
			created, err := c.CreateCase(args[1])
			if err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created case #%d\n", created.ID)
			return nil
		},
	}
}

func caseUpdateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "update <node-id> <case-id> <content>",
		Short: "Replace the content of a case",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID, err := intArg(args[1], "case id")
			if err != nil {
				return err
			}
			s, c, err := selectLeaf(env, args[0])
			if err != nil {
				return err
			}
			if _, err := c.UpdateCase(caseID, args[2]); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated case #%d\n", caseID)
			return nil
		},
	}
}

func caseDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <node-id> <case-id>",
		Short: "Delete a case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID, err := intArg(args[1], "case id")
			if err != nil {
				return err
			}
			s, c, err := selectLeaf(env, args[0])
			if err != nil {
				return err
			}
			if err := c.DeleteCase(caseID, env.Confirmer()); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted case #%d\n", caseID)
			return nil
		},
	}
}
