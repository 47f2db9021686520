package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/zionledger/internal/adapter/http/dto"
)

func entrySetsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry-sets",
		Short: "Record and inspect entry sets",
	}

	var file string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Record an entry set from a JSON file (use - for stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			var req dto.CreateEntrySetRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return fmt.Errorf("invalid entry set file: %w", err)
			}

			var resp dto.EntrySetResponse
			status, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/entry_sets", nil, body, &resp)
			if err != nil {
				return err
			}

			if status == http.StatusCreated {
				fmt.Fprintf(cmd.ErrOrStderr(), "created entry set %s\n", resp.ID)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "entry set %s already recorded\n", resp.ID)
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	createCmd.Flags().StringVarP(&file, "file", "f", "", "Path to the entry set JSON")
	_ = createCmd.MarkFlagRequired("file")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show an entry set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.EntrySetResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/entry_sets/"+url.PathEscape(args[0]), nil, nil, &resp); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.AddCommand(createCmd, getCmd)

	return cmd
}

func balancesCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Calculate balances",
	}

	var (
		accountID   string
		balanceName string
		asOf        string
	)
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Calculate a named balance for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if balanceName != "" {
				query.Set("balance_name", balanceName)
			}
			if asOf != "" {
				if _, err := time.Parse(time.RFC3339Nano, asOf); err != nil {
					return fmt.Errorf("invalid --as-of (use RFC3339): %w", err)
				}
				query.Set("as_of", asOf)
			}

			var resp dto.BalanceResponse
			path := "/api/v1/accounts/" + url.PathEscape(accountID) + "/balance"
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, query, nil, &resp); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	getCmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	getCmd.Flags().StringVar(&balanceName, "name", "", "Balance definition name (server default when empty)")
	getCmd.Flags().StringVar(&asOf, "as-of", "", "Point in time, RFC3339 (now when empty)")
	_ = getCmd.MarkFlagRequired("account")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available balance definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AvailableBalancesResponse
			if _, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/balances/available", nil, nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range resp.Balances {
				marker := " "
				if name == resp.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}

			return nil
		},
	}

	cmd.AddCommand(getCmd, listCmd)

	return cmd
}

func entriesCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Browse recorded entries",
	}

	var (
		accountID string
		limit     int
		offset    int
		all       bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List an account's entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			path := "/api/v1/accounts/" + url.PathEscape(accountID) + "/entries"

			var collected []*dto.EntryResponse
			next := offset
			for {
				query := url.Values{}
				query.Set("limit", strconv.Itoa(limit))
				query.Set("offset", strconv.Itoa(next))

				var page dto.EntryPageResponse
				if _, err := client.do(cmd.Context(), http.MethodGet, path, query, nil, &page); err != nil {
					return err
				}
				collected = append(collected, page.Entries...)

				if !all || page.NextOffset == nil {
					break
				}
				next = *page.NextOffset
			}

			if collected == nil {
				collected = []*dto.EntryResponse{}
			}

			return printJSON(cmd.OutOrStdout(), collected)
		},
	}
	listCmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	listCmd.Flags().BoolVar(&all, "all", false, "Follow pages until the last one")
	_ = listCmd.MarkFlagRequired("account")

	cmd.AddCommand(listCmd)

	return cmd
}

func ledgerCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			_, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil, &resp)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				return errors.New("consistency check FAILED: ledger does not sum to zero")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Consistent: %v\n", resp.Consistent)
			fmt.Fprintf(out, "Status: %s\n", resp.Status)

			return nil
		},
	}

	cmd.AddCommand(consistencyCmd)

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return io.ReadAll(stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}
