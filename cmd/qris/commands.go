package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qris-workers/internal/common/config"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/money"
	"qris-workers/internal/qris"
)

var errInvalidPayload = errors.New("payload is not valid")

func newRootCmd() *cobra.Command {
	var level string

	root := &cobra.Command{
		Use:          "qris",
		Short:        "Inspect and generate dynamic QRIS payment strings",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&level, "log-level", "warn", "Log level written to stderr")

	logFor := func() *zap.Logger { return logger.New(level, "console", "stderr") }

	root.AddCommand(
		newInjectCmd(logFor),
		newCRCCmd(),
		newVerifyCmd(),
		newDecodeCmd(),
		newFormatCmd(),
	)
	return root
}

func newInjectCmd(logFor func() *zap.Logger) *cobra.Command {
	var (
		template   string
		configPath string
		amount     int64
	)

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Inject an amount into a static template and print the payload",
		Example: `  qris inject --config configs/config.yaml --amount 150000
  qris inject --template 000201...6304DE60 --amount 150000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logFor()
			defer log.Sync()

			if template == "" {
				if configPath == "" {
					return errors.New("one of --template or --config is required")
				}
				q, err := config.LoadQRISFromFile(configPath)
				if err != nil {
					return err
				}
				template = q.BaseTemplate
			}

			if !qris.ValidateChecksum(template) {
				log.Warn("template checksum does not match; injecting anyway")
			}
			payload, err := qris.InjectAmount(template, amount)
			if err != nil {
				return err
			}
			log.Debug("injected", zap.Int64("amount", amount), zap.String("checksum", payload[len(payload)-4:]))
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "Static QRIS template")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file holding qris.base_template")
	cmd.Flags().Int64Var(&amount, "amount", 0, "Whole-rupiah amount")
	cmd.MarkFlagsMutuallyExclusive("template", "config")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newCRCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crc <data>",
		Short: "Print the CRC-16/CCITT-FALSE checksum of data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), qris.CRC16(args[0]))
			return nil
		},
	}
}

type verifyResult struct {
	Valid            bool   `json:"valid"`
	Reason           string `json:"reason,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	ExpectedChecksum string `json:"expectedChecksum,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	var amount int64

	cmd := &cobra.Command{
		Use:   "verify <payload>",
		Short: "Check the checksum and optional amount of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := verifyResult{Valid: true}

			p, err := qris.Decode(args[0])
			if p != nil {
				res.Checksum, res.ExpectedChecksum = p.Checksum, p.ExpectedChecksum
			}
			switch {
			case err != nil:
				res.Valid, res.Reason = false, err.Error()
			case cmd.Flags().Changed("amount") && (!p.HasAmount || p.Amount != amount):
				res.Valid = false
				res.Reason = fmt.Sprintf("amount mismatch: want %d", amount)
			}

			if err := writeJSON(cmd, res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalidPayload
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&amount, "amount", 0, "Expected amount")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <payload>",
		Short: "Print the fields of a payload as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := qris.Decode(args[0])
			if p == nil {
				return err
			}
			if werr := writeJSON(cmd, p); werr != nil {
				return werr
			}
			return err
		},
	}
}

func newFormatCmd() *cobra.Command {
	var code, locale string

	cmd := &cobra.Command{
		Use:   "format <amount>",
		Short: "Format a whole-unit amount as currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			f, err := money.NewFormatter(code, locale)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.Format(amount))
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "currency", "IDR", "ISO 4217 currency code")
	cmd.Flags().StringVar(&locale, "locale", "id-ID", "BCP 47 locale for digit grouping")
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
