package cmd

import (
	"net/url"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account <address>",
	Short: "Show the balance and transactions of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(cmd, "/address/"+url.PathEscape(args[0]))
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <height>",
	Short: "Show a mined block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(cmd, "/block/"+url.PathEscape(args[0]))
	},
}

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Show a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(cmd, "/transaction/"+url.PathEscape(args[0]))
	},
}

var mempoolCmd = &cobra.Command{
	Use:   "mempool",
	Short: "Show the transactions waiting for the next block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(cmd, "/v1/mempool")
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Wipe the ledger and start from an empty chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := call(cmd.Context(), "POST", "/restart", nil, &resp); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd, blockCmd, txCmd, mempoolCmd, restartCmd)
}

func get(cmd *cobra.Command, path string) error {
	var resp any
	if err := call(cmd.Context(), "GET", path, nil, &resp); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
