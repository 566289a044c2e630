package cmd

import (
	"github.com/spf13/cobra"
)

var (
	sendFrom   string
	sendTo     string
	sendAmount int64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value between two accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Amount int64  `json:"amount"`
		}{
			From:   sendFrom,
			To:     sendTo,
			Amount: sendAmount,
		}

		var resp struct {
			Hash    string `json:"hash"`
			Success bool   `json:"success"`
		}
		if err := call(cmd.Context(), "POST", "/transaction", body, &resp); err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFrom, "from", "f", "", "Address or name sending the value.")
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Address or name receiving the value.")
	sendCmd.Flags().Int64VarP(&sendAmount, "amount", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
