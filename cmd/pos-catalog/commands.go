package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/spf13/cobra"

	"github.com/xenking/kicks-pos/internal/catalog"
	"github.com/xenking/kicks-pos/internal/domain/auth"
	"github.com/xenking/kicks-pos/internal/domain/report"
)

var errInvalidCatalog = errors.New("catalog has problems")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pos-catalog",
		Short: "Inspect and prepare point-of-sale catalog files",
		Long: `pos-catalog works on the JSON seed documents pos-server loads at start
(operators, products and customers). Files ending in .gz are read
through a gzip decoder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newStatsCmd(), newPackCmd(), newHashPasswordCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			problems := catalog.Validate(c)
			out := cmd.OutOrStdout()
			for _, p := range problems {
				_, _ = fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				return errors.Wrapf(errInvalidCatalog, "%d problem(s)", len(problems))
			}
			_, _ = fmt.Fprintf(out, "ok: %d operators, %d products, %d customers\n",
				len(c.Operators), len(c.Products), len(c.Customers))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Print stock totals and alerts for a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			var sizes, units int
			for _, p := range c.Products {
				sizes += len(p.Sizes)
				units += p.TotalStock()
			}
			low, out := report.StockAlerts(c.Products)

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "products: %d\nsizes: %d\nunits: %d\nout of stock: %d\n",
				len(c.Products), sizes, units, out)
			if len(low) > 0 {
				_, _ = fmt.Fprintln(w, "low stock:")
			}
			for _, l := range low {
				_, _ = fmt.Fprintf(w, "  %s %s (%d)\n", l.SKU, l.Name, l.TotalStock)
			}
			return nil
		},
	}
}

func newPackCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pack <file>",
		Short: "Validate a catalog file and write it gzip-compressed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if output == "" {
				output = src + ".gz"
			}
			c, err := catalog.Load(src)
			if err != nil {
				return err
			}
			if problems := catalog.Validate(c); len(problems) > 0 {
				return errors.Wrapf(errInvalidCatalog, "%s: %s", src, problems[0])
			}
			if err := compressFile(src, output); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (default <file>.gz)")
	return cmd
}

func compressFile(src, dst string) (rerr error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	defer func() {
		if err := out.Close(); err != nil && rerr == nil {
			rerr = errors.Wrapf(err, "close %s", dst)
		}
	}()

	gz := pgzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return errors.Wrapf(err, "compress %s", src)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip")
	}
	return nil
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash to store as an operator password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}
