package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/publish"
	"github.com/gravitrone/kbconsole/internal/session"
)

// KnowledgeCmd returns the `kbconsole knowledge` command group.
func KnowledgeCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Publish, withdraw and sync knowledge items",
	}
	cmd.AddCommand(knowledgeListCmd(env))
	cmd.AddCommand(knowledgeToggleCmd(env, api.StatusActive))
	cmd.AddCommand(knowledgeToggleCmd(env, api.StatusDisabled))
	cmd.AddCommand(knowledgeEditCmd(env))
	cmd.AddCommand(knowledgeSyncCmd(env))
	return cmd
}

func openBoard(env *Env) (*session.Session, *publish.Board, error) {
	s, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	b := publish.NewBoard(s.Client, env.PageSize())
	b.SetLogger(env.Log)
	return s, b, nil
}

func knowledgeListCmd(env *Env) *cobra.Command {
	var (
		status  string
		page    int
		keyword string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, b, err := openBoard(env)
			if err != nil {
				return err
			}
			if err := b.SetStatusTab(status); err != nil {
				return err
			}
			b.SetKeyword(keyword)
			b.SetPage(page)
			if err := b.Load(); err != nil {
				return guarded(s, err)
			}

			v := b.View()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "active: %d  disabled: %d\n", v.Counts.Active, v.Counts.Disabled)
			if len(v.Items) == 0 {
				fmt.Fprintf(out, "no %s items\n", v.Status)
				return nil
			}
			rows := make([][]string, 0, len(v.Items))
			for _, it := range v.Items {
				rows = append(rows, []string{
					strconv.Itoa(it.ID), truncate(it.Question, 50), truncate(it.Answer, 50),
					it.Status, it.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			printTable(out, []string{"id", "question", "answer", "status", "updated"}, rows)
			fmt.Fprintf(out, "page %d, %d of %d %s\n", v.Page, len(v.Items), v.Total, v.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", api.StatusActive, "active or disabled")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search keyword")
	return cmd
}

func knowledgeToggleCmd(env *Env, target string) *cobra.Command {
	use, verb := "enable", "Publish"
	if target == api.StatusDisabled {
		use, verb = "disable", "Withdraw"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: verb + " a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "item id")
			if err != nil {
				return err
			}
			s, b, err := openBoard(env)
			if err != nil {
				return err
			}
			if err := b.Toggle(id, target, env.Confirmer()); err != nil {
				return guarded(s, err)
			}
			v := b.View()
			fmt.Fprintf(cmd.OutOrStdout(), "item #%d is now %s (active: %d, disabled: %d)\n",
				id, target, v.Counts.Active, v.Counts.Disabled)
			return nil
		},
	}
}

func knowledgeEditCmd(env *Env) *cobra.Command {
	var question, answer string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the question or answer of a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "item id")
			if err != nil {
				return err
			}
			s, b, err := openBoard(env)
			if err != nil {
				return err
			}
			current, err := s.Client.GetKnowledgeItem(id)
			if err != nil {
				return guarded(s, fmt.Errorf("get item %d: %w", id, err))
			}
			if !cmd.Flags().Changed("question") {
				question = current.Question
			}
			if !cmd.Flags().Changed("answer") {
				answer = current.Answer
			}
			if err := b.Edit(id, question, answer); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated item #%d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "new question")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "new answer")
	return cmd
}

func knowledgeSyncCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push active knowledge to the downstream knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, b, err := openBoard(env)
			if err != nil {
				return err
			}
			if err := b.Load(); err != nil {
				return guarded(s, err)
			}
			res, err := b.Sync(s.Config.ScenarioID, env.Confirmer())
			if err != nil {
				if api.IsTimeout(err) {
					return fmt.Errorf("%w; the push may still finish on the server, check before re-running", err)
				}
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scenario %d synced: %d item(s), %s\n", res.ScenarioID, res.Items, res.Status)
			if res.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			}
			return nil
		},
	}
}
