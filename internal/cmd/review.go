package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/review"
	"github.com/gravitrone/kbconsole/internal/session"
)

// ReviewCmd returns the `kbconsole review` command group.
func ReviewCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review machine-suggested FAQs and taxonomy entries",
	}
	faq := &cobra.Command{
		Use:   "faq",
		Short: "Pending FAQ queue",
	}
	faq.AddCommand(faqListCmd(env))
	faq.AddCommand(faqAcceptCmd(env))
	faq.AddCommand(faqDiscardCmd(env))
	faq.AddCommand(faqBulkCmd(env, "accept"))
	faq.AddCommand(faqBulkCmd(env, "discard"))

	tax := &cobra.Command{
		Use:   "taxonomy",
		Short: "Pending taxonomy suggestions of a scope",
	}
	tax.AddCommand(suggestionListCmd(env))
	tax.AddCommand(suggestionAcceptCmd(env))
	tax.AddCommand(suggestionDiscardCmd(env))

	cmd.AddCommand(faq, tax)
	return cmd
}

type faqPaging struct {
	page    int
	keyword string
}

func (p *faqPaging) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "page number")
	cmd.Flags().StringVarP(&p.keyword, "keyword", "k", "", "search keyword")
}

func openFAQs(env *Env, paging faqPaging) (*session.Session, *review.FAQWorkflow, error) {
	s, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	w := review.NewFAQWorkflow(s.Client, s.Config.ScenarioID, env.PageSize())
	w.SetLogger(env.Log)
	w.SetKeyword(paging.keyword)
	w.SetPage(paging.page)
	if err := w.Load(); err != nil {
		return nil, nil, guarded(s, err)
	}
	return s, w, nil
}

func faqListCmd(env *Env) *cobra.Command {
	var paging faqPaging
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending FAQs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, w, err := openFAQs(env, paging)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			items := w.Queue().Items()
			if len(items) == 0 {
				fmt.Fprintln(out, "no pending FAQs")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{strconv.Itoa(it.ID), truncate(it.Question, 50), truncate(it.Answer, 60)})
			}
			printTable(out, []string{"id", "question", "answer"}, rows)
			page, size, _ := w.Page()
			fmt.Fprintf(out, "page %d, %d per page, %d pending\n", page, size, w.Queue().Total())
			return nil
		},
	}
	paging.bind(cmd)
	return cmd
}

func faqAcceptCmd(env *Env) *cobra.Command {
	var (
		paging   faqPaging
		question string
		answer   string
	)
	cmd := &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept a pending FAQ into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "faq id")
			if err != nil {
				return err
			}
			s, w, err := openFAQs(env, paging)
			if err != nil {
				return err
			}
			var edit *review.FAQEdit
			if cmd.Flags().Changed("question") || cmd.Flags().Changed("answer") {
				item, ok := w.Queue().Get(id)
				if !ok {
					return fmt.Errorf("%w: %d", review.ErrNotFound, id)
				}
				edit = &review.FAQEdit{Question: item.Question, Answer: item.Answer}
				if cmd.Flags().Changed("question") {
					edit.Question = question
				}
				if cmd.Flags().Changed("answer") {
					edit.Answer = answer
				}
			}
			created, err := w.Accept(id, edit)
			if err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted FAQ #%d as knowledge item #%d (scenario %d)\n", id, created.ID, w.ScenarioID())
			return nil
		},
	}
	paging.bind(cmd)
	cmd.Flags().StringVarP(&question, "question", "q", "", "replace the suggested question")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "replace the suggested answer")
	return cmd
}

func faqDiscardCmd(env *Env) *cobra.Command {
	var paging faqPaging
	cmd := &cobra.Command{
		Use:   "discard <id>",
		Short: "Discard a pending FAQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "faq id")
			if err != nil {
				return err
			}
			s, w, err := openFAQs(env, paging)
			if err != nil {
				return err
			}
			if err := w.Discard(id, env.Confirmer()); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "discarded FAQ #%d\n", id)
			return nil
		},
	}
	paging.bind(cmd)
	return cmd
}

// parseIDs accepts "1,2,3" and "1 2 3".
func parseIDs(args []string) ([]int, error) {
	var ids []int
	for _, arg := range args {
		for _, raw := range strings.Split(arg, ",") {
			if raw = strings.TrimSpace(raw); raw == "" {
				continue
			}
			id, err := intArg(raw, "faq id")
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func faqBulkCmd(env *Env, action string) *cobra.Command {
	var (
		paging faqPaging
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "bulk-" + action + " [ids...]",
		Short: fmt.Sprintf("Bulk %s up to %d FAQs of one page", action, review.MaxBulk),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			switch {
			case all && len(ids) > 0:
				return fmt.Errorf("give FAQ ids or --all, not both")
			case !all && len(ids) == 0:
				return fmt.Errorf("give FAQ ids or --all")
			}
			s, w, err := openFAQs(env, paging)
			if err != nil {
				return err
			}
			q := w.Queue()
			if all {
				q.SelectAll()
			}
			for _, id := range ids {
				if !q.Toggle(id) {
					return fmt.Errorf("%w: %d", review.ErrNotFound, id)
				}
			}

			var count int
			if action == "accept" {
				count, err = w.BulkAccept(env.Confirmer())
			} else {
				count, err = w.BulkDiscard(env.Confirmer())
			}
			if err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sed %d FAQ(s), %d pending\n", strings.TrimSuffix(action, "e"), count, q.Total())
			return nil
		},
	}
	paging.bind(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "select every FAQ on the page")
	return cmd
}

func openSuggestions(env *Env) (*session.Session, *review.TaxonomyWorkflow, error) {
	s, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	sc, err := env.Scope(s)
	if err != nil {
		return nil, nil, err
	}
	w := review.NewTaxonomyWorkflow(s.Client, sc)
	w.SetLogger(env.Log)
	if err := w.Load(); err != nil {
		return nil, nil, guarded(s, err)
	}
	return s, w, nil
}

func suggestionListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending taxonomy suggestions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, w, err := openSuggestions(env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			items := w.Queue().Items()
			if len(items) == 0 {
				fmt.Fprintf(out, "no pending suggestions for %s\n", w.Scope().Label())
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					strconv.Itoa(it.ID), review.PathLabel(it), truncate(it.Definition, 50), strconv.Itoa(len(it.Cases)),
				})
			}
			printTable(out, []string{"id", "path", "definition", "cases"}, rows)
			return nil
		},
	}
}

func suggestionAcceptCmd(env *Env) *cobra.Command {
	var (
		name       string
		definition string
		cases      []string
	)
	cmd := &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept a suggestion into the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "suggestion id")
			if err != nil {
				return err
			}
			s, w, err := openSuggestions(env)
			if err != nil {
				return err
			}
			item, ok := w.Queue().Get(id)
			if !ok {
				return fmt.Errorf("%w: %d", review.ErrNotFound, id)
			}
			edit := review.Suggested(item)
			if cmd.Flags().Changed("name") {
				edit.L3Name = name
			}
			if cmd.Flags().Changed("definition") {
				edit.Definition = definition
			}
			if cmd.Flags().Changed("case") {
				edit.Cases = cases
			}
			if err := w.Accept(id, &edit); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted suggestion #%d as %s\n", id, strings.TrimSpace(edit.L3Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "replace the level-3 name")
	cmd.Flags().StringVarP(&definition, "definition", "d", "", "replace the definition")
	cmd.Flags().StringArrayVarP(&cases, "case", "c", nil, "replace the cases (repeatable)")
	return cmd
}

func suggestionDiscardCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <id>",
		Short: "Discard a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args[0], "suggestion id")
			if err != nil {
				return err
			}
			s, w, err := openSuggestions(env)
			if err != nil {
				return err
			}
			if err := w.Discard(id, env.Confirmer()); err != nil {
				return guarded(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "discarded suggestion #%d\n", id)
			return nil
		},
	}
}
