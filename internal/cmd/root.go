package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the command tree. runTUI backs the bare command.
func NewRootCmd(env *Env, runTUI func() error) *cobra.Command {
	root := &cobra.Command{
		Use:   "kbconsole",
		Short: "kbconsole - knowledge-base moderation console",
		Long:  "kbconsole: curate the taxonomy, import category files, review suggested FAQs and publish knowledge.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	env.Bind(root)

	root.AddCommand(LoginCmd(env))
	root.AddCommand(LogoutCmd())
	root.AddCommand(WhoamiCmd())
	root.AddCommand(TreeCmd(env))
	root.AddCommand(NodeCmd(env))
	root.AddCommand(CaseCmd(env))
	root.AddCommand(ImportCmd(env))
	root.AddCommand(ReviewCmd(env))
	root.AddCommand(KnowledgeCmd(env))
	root.AddCommand(JobsCmd(env))
	return root
}
