package cli

import (
	"fmt"
	"text/tabwriter"

	"eduquiz-service/internal/domain"
	"github.com/spf13/cobra"
)

func NewQuizzesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quizzes",
		Short: "List the quiz catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer s.Close()
			session, err := s.auth.Current(cmd.Context())
			if err != nil {
				return err
			}
			if err := domain.Authorize(session.User.Role, domain.PermBrowseQuizzes); err != nil {
				return err
			}
			quizzes, err := s.catalog.ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tDIFFICULTY\tQUESTIONS\tMINUTES")
			for _, q := range quizzes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", q.ID, q.Title, q.Subject, q.Difficulty, len(q.Questions), q.Duration)
			}
			return tw.Flush()
		},
	}
}
