package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/civicsafe/civicsafe-api/internal/domain/auth"
	"github.com/civicsafe/civicsafe-api/internal/domain/notification"
	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/database"
	"github.com/civicsafe/civicsafe-api/internal/pkg/email"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
)

const commandTimeout = 30 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
			if err := database.EnsureSchema(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		})
	},
}

var accountFlags auth.CreateAccountInput

var createAccountCmd = &cobra.Command{
	Use:   "create-account",
	Short: "Create an account with a role",
	Example: `  civicsafectl create-account --email ops@city.gov --password 's3cret-pass' --role MODERATOR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
			svc := auth.NewService(user.NewRepository(db), jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL))
			account, err := svc.CreateAccount(ctx, &accountFlags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (%s)\n", account.Role, account.Email, account.ID)
			return nil
		})
	},
}

var statusFlags struct {
	reportID string
	status   string
	as       string
}

var reportStatusCmd = &cobra.Command{
	Use:   "report-status",
	Short: "Move a report to a new status",
	Long: `Move a report to a new status on behalf of a staff account.

The transition policy configured by REPORT_TRANSITION_POLICY applies.`,
	Example: `  civicsafectl report-status --report CS-7KX2M9PQ4T --status RESOLVED --as ops@city.gov`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *sqlx.DB) error {
			accounts := user.NewRepository(db)
			account, err := accounts.GetByEmail(ctx, auth.NormalizeEmail(statusFlags.as))
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("no account with email %q", statusFlags.as)
			}

			policy, ok := report.PolicyByName(cfg.ReportTransitionPolicy)
			if !ok {
				return fmt.Errorf("unknown transition policy %q", cfg.ReportTransitionPolicy)
			}

			reports := report.NewRepository(db)
			publishers, release, err := statusPublishers(reports, accounts)
			if err != nil {
				return err
			}
			defer release()

			svc := newStatusService(reports, policy, publishers)
			updated, err := updateStatus(ctx, svc, account.Identity(), statusFlags.reportID, statusFlags.status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.ReportID, updated.Status)
			return nil
		})
	},
}

func init() {
	createAccountCmd.Flags().StringVar(&accountFlags.Email, "email", "", "account email (required)")
	createAccountCmd.Flags().StringVar(&accountFlags.Password, "password", "", "account password, at least 8 characters (required)")
	createAccountCmd.Flags().StringVar(&accountFlags.Name, "name", "", "display name")
	createAccountCmd.Flags().StringVar(&accountFlags.Role, "role", string(user.RoleUser), "ADMIN, MODERATOR or USER")
	_ = createAccountCmd.MarkFlagRequired("email")
	_ = createAccountCmd.MarkFlagRequired("password")

	reportStatusCmd.Flags().StringVar(&statusFlags.reportID, "report", "", "tracking id, e.g. CS-7KX2M9PQ4T (required)")
	reportStatusCmd.Flags().StringVar(&statusFlags.status, "status", "", "PENDING, IN_PROGRESS, RESOLVED or DISMISSED (required)")
	reportStatusCmd.Flags().StringVar(&statusFlags.as, "as", "", "email of the ADMIN or MODERATOR making the change (required)")
	_ = reportStatusCmd.MarkFlagRequired("report")
	_ = reportStatusCmd.MarkFlagRequired("status")
	_ = reportStatusCmd.MarkFlagRequired("as")
}

// StatusUpdater is the report operation report-status drives
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, reportID, newStatus string, caller *user.Identity) (*report.Report, error)
}

// statusPublishers builds the same status fan-out the API uses: the Redis
// tracking channel and author email, each only when configured. release
// flushes queued mail and closes connections.
func statusPublishers(reports report.Repository, accounts user.Repository) (report.Publishers, func(), error) {
	var (
		publishers report.Publishers
		closers    []func()
	)
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, release, fmt.Errorf("connect redis: %w", err)
	}
	if redis != nil {
		hub := notification.NewHub(redis)
		publishers = append(publishers, hub)
		closers = append(closers, func() {
			hub.Shutdown()
			database.CloseRedis(redis)
		})
	}

	if cfg.SendGridAPIKey != "" {
		mail := email.NewService(email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}))
		publishers = append(publishers, notification.NewEmailNotifier(reports, accounts, mail, cfg.SiteURL))
		closers = append(closers, mail.Close)
	}

	return publishers, release, nil
}

func newStatusService(reports report.Repository, policy report.TransitionPolicy, publishers report.Publishers) *report.Service {
	svc := report.NewService(reports, policy)
	if len(publishers) > 0 {
		svc.SetPublisher(publishers)
	}
	return svc
}

func updateStatus(ctx context.Context, svc StatusUpdater, caller *user.Identity, reportID, status string) (*report.Report, error) {
	updated, err := svc.UpdateStatus(ctx, reportID, status, caller)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, report.ErrForbidden):
		return nil, fmt.Errorf("%s accounts cannot change report status", caller.Role)
	case errors.Is(err, report.ErrReportNotFound):
		return nil, fmt.Errorf("report %s not found", reportID)
	default:
		return nil, err
	}
}

func withDB(parent context.Context, fn func(ctx context.Context, db *sqlx.DB) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, commandTimeout)
	defer cancel()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer database.ClosePostgres(db)

	return fn(ctx, db)
}
