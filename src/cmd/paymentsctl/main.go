package main

import (
	"context"
	"encoding/json"
	"fmt"
	"huletfish/src/boot"
	"log"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if os.Getenv("API_ENV") == "local" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Could not load .env: %s\n", err.Error())
		}
	}

	rootCmd := &cobra.Command{
		Use:   "paymentsctl",
		Short: "Operator tasks for Hulet Fish payments",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			boot.InitSecrets()
		},
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply model migrations and the active payment index",
		RunE: func(cmd *cobra.Command, args []string) error {
			boot.InitDb()
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile pending payments older than the sweep threshold once",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := boot.InitPayments(boot.InitDb())
			boot.SweepStalePayments(p.Service)
			return nil
		},
	}
}

func ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the exchange rate table checkout would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := boot.InitPayments(boot.InitDb())
			table := p.Rates.Rates()
			for _, pair := range slices.Sorted(maps.Keys(table)) {
				fmt.Printf("%-8s %.6f\n", pair, table[pair])
			}
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [paymentId]",
		Short: "Ask the gateway for the current status of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			p := boot.InitPayments(boot.InitDb())
			payment, err := p.Service.Verify(ctx, args[0], 0, true)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(payment, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 30*time.Second, "Gateway request timeout")
	return cmd
}
