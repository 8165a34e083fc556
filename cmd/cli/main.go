package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/auth"
)

type options struct {
	baseURL   string
	timeout   time.Duration
	token     string
	actorID   string
	actorName string
	admin     bool
}

func (o *options) client() *apiClient {
	c := newAPIClient(o.baseURL, o.token, o.actorID, o.admin, o.timeout)
	c.actorName = o.actorName
	return c
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cantina-cli",
		Short:         "Cantina CLI tool",
		Long:          `A command line interface for the canteen credit ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("CANTINA_URL", "http://localhost:8080"), "Base URL of the cantina API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("CANTINA_TOKEN"), "Bearer token (see the token command)")
	flags.StringVar(&opts.actorID, "actor", os.Getenv("CANTINA_ACTOR"), "Actor ID sent when no token is given")
	flags.StringVar(&opts.actorName, "actor-name", "", "Actor display name sent when no token is given")
	flags.BoolVar(&opts.admin, "admin", false, "Act as an administrator when no token is given")

	rootCmd.AddCommand(
		tokenCmd(),
		accountsCmd(opts),
		entryCmd(opts, "credit", "Add credit to an account", "/credits"),
		entryCmd(opts, "debit", "Record a purchase against an account", "/debits"),
		limitCmd(opts),
		statementCmd(opts),
		statsCmd(opts),
		orphansCmd(opts),
		reconcileCmd(opts),
	)

	return rootCmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		name   string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token ACTOR_ID",
		Short: "Mint a bearer token signed with the server secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0], name, domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	cmd.Flags().StringVar(&name, "name", "", "Actor display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEmployee), "Role: admin or employee")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var (
		query   string
		balance string
		limit   int
		offset  int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if query != "" {
				q.Set("q", query)
			}
			if balance != "" {
				q.Set("balance", balance)
			}
			setPage(q, limit, offset)

			var resp dto.ListAccountsResponse
			if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: "/api/v1/accounts", query: q}, &resp); err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), resp.Accounts)
		},
	}
	listCmd.Flags().StringVar(&query, "q", "", "Search by name or phone")
	listCmd.Flags().StringVar(&balance, "balance", "", "Filter by balance: positive, negative or zero")
	listCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	getCmd := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: accountPath(args[0], "")}, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var reg dto.RegisterAccountRequest
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dto.Validate(&reg); err != nil {
				return err
			}
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), request{method: http.MethodPost, path: "/api/v1/accounts", body: reg}, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	registerCmd.Flags().StringVar(&reg.FullName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&reg.BirthDate, "birth-date", "", "Birth date as DD/MM/YYYY")
	registerCmd.Flags().StringVar(&reg.Phone, "phone", "", "Phone number")

	removeCmd := &cobra.Command{
		Use:   "remove ACCOUNT_ID",
		Short: "Remove an account and its entries (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().do(cmd.Context(), request{method: http.MethodDelete, path: accountPath(args[0], "")}, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd, registerCmd, removeCmd)
	return cmd
}

func entryCmd(opts *options, use, short, suffix string) *cobra.Command {
	var (
		description string
		key         string
	)

	cmd := &cobra.Command{
		Use:   use + " ACCOUNT_ID AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseMoney(args[1])
			if err != nil {
				return err
			}
			body := dto.EntryRequest{Amount: amount, Description: description}
			if err := dto.Validate(&body); err != nil {
				return err
			}
			if key == "" {
				key = uuid.NewString()
			}

			var resp dto.EntryResponse
			err = opts.client().do(cmd.Context(), request{
				method:         http.MethodPost,
				path:           accountPath(args[0], suffix),
				body:           body,
				idempotencyKey: key,
			}, &resp)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Entry description")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (random when empty)")

	return cmd
}

func limitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "limit ACCOUNT_ID NEGATIVE_LIMIT",
		Short: "Set how far below zero an account may go (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := domain.ParseMoney(args[1])
			if err != nil {
				return err
			}
			if err := domain.ValidateLimit(limit); err != nil {
				return err
			}

			var resp dto.AccountResponse
			err = opts.client().do(cmd.Context(), request{
				method: http.MethodPut,
				path:   accountPath(args[0], "/limit"),
				body:   dto.SetLimitRequest{NegativeLimit: &limit},
			}, &resp)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func statementCmd(opts *options) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "statement ACCOUNT_ID",
		Short: "List an account's entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setPage(q, limit, offset)

			var entries []*dto.EntryResponse
			if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: accountPath(args[0], "/entries"), query: q}, &entries); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	return cmd
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show balance statistics across all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats domain.Statistics
			if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: "/api/v1/statistics"}, &stats); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func orphansCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "Entries left behind by removed accounts (admin only)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List account IDs with orphaned entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp dto.OrphansResponse
				if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: "/api/v1/maintenance/orphans"}, &resp); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		},
		&cobra.Command{
			Use:   "purge",
			Short: "Delete orphaned entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp dto.PurgeResponse
				if err := opts.client().do(cmd.Context(), request{method: http.MethodPost, path: "/api/v1/maintenance/orphans/purge"}, &resp); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		},
	)

	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every balance against its entries (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationResponse
			if err := opts.client().do(cmd.Context(), request{method: http.MethodGet, path: "/api/v1/maintenance/reconciliation"}, &report); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("%d account(s) do not match their entries", len(report.Discrepancies))
			}
			return nil
		},
	}
}

func accountPath(id, suffix string) string {
	return "/api/v1/accounts/" + url.PathEscape(id) + suffix
}

func setPage(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

func printAccounts(w io.Writer, accounts []*dto.AccountResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tBALANCE\tLIMIT")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, truncate(a.FullName, 30), a.Phone, a.Balance, a.NegativeLimit)
	}
	return tw.Flush()
}

func printEntries(w io.Writer, entries []*dto.EntryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tKIND\tAMOUNT\tBALANCE\tBY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.OccurredAt.Local().Format("2006-01-02 15:04"), e.Kind, e.SignedAmount, e.BalanceAfter, e.ActorID, truncate(e.Description, 40))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
