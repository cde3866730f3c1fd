package cli

import (
	"encoding/json"

	"eduquiz-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewStatsCmd prints the dashboard of the signed-in user's role.
func NewStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard for the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := loadStack(ctx, *configPath)
			if err != nil {
				return err
			}
			defer s.Close()
			session, err := s.auth.Current(ctx)
			if err != nil {
				return err
			}
			user := session.User

			var out any
			switch user.Role {
			case domain.RoleStudent:
				dashboard, err := s.dashboards.Student(ctx, user.ID)
				if err != nil {
					return err
				}
				summary, err := s.achievements.Summary(ctx, user.ID)
				if err != nil {
					return err
				}
				out = map[string]any{"dashboard": dashboard, "achievements": summary}
			case domain.RoleTeacher:
				if err := domain.Authorize(user.Role, domain.PermViewSubmissions); err != nil {
					return err
				}
				if out, err = s.dashboards.Teacher(ctx); err != nil {
					return err
				}
			case domain.RoleAdmin:
				if err := domain.Authorize(user.Role, domain.PermViewSystemStats); err != nil {
					return err
				}
				if out, err = s.dashboards.Admin(ctx); err != nil {
					return err
				}
			default:
				return domain.ErrForbidden
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
