package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gostat/adapters/datareadiness/coercer"
	"gostat/adapters/excel"
	"gostat/app"
	"gostat/domain/dataset"
	"gostat/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "gostat-cli",
		Short:         "Filtered descriptive statistics over CSV and spreadsheet files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, configFile, cmd.Flags())
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with default flag values")

	rootCmd.AddCommand(
		newQueryCmd(v),
		newSchemaCmd(v),
	)
	return rootCmd
}

// loadConfig reads the optional config file and binds it under the command flags
func loadConfig(v *viper.Viper, configFile string, flags *pflag.FlagSet) error {
	v.SetEnvPrefix("GOSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}
	return v.BindPFlags(flags)
}

func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "CSV or XLSX file to read")
	cmd.Flags().String("delimiter", ",", "CSV field separator")
	cmd.Flags().String("thousands", "", "thousands separator used in numbers")
	cmd.Flags().String("sheet", "", "spreadsheet sheet (default: first sheet)")
}

func readerFromConfig(v *viper.Viper, requireNumeric ...string) (*excel.DataReader, error) {
	file := v.GetString("file")
	if file == "" {
		return nil, errors.InvalidInput("--file is required")
	}
	delim := []rune(v.GetString("delimiter"))
	if len(delim) != 1 {
		return nil, errors.InvalidInput("--delimiter must be a single character")
	}

	cfg := excel.DefaultReaderConfig()
	cfg.FilePath = file
	cfg.Delimiter = delim[0]
	cfg.Sheet = v.GetString("sheet")
	cfg.RequireNumeric = requireNumeric
	cfg.CoercionConfig = coercer.CoercionConfig{Thousands: v.GetString("thousands")}
	return excel.NewDataReader(cfg), nil
}

func newQueryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print statistics of a numeric column over the filtered rows",
		Long: `Filter the rows of a file and print count, mean, median, sample variance and
standard deviation of the target column as JSON.

Example: gostat-cli query --file data/sales_data.csv --delimiter ';' --thousands , \
    --target Sales --where Country=Germany --where Country=France`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := v.GetString("target")
			if target == "" {
				return errors.InvalidInput("--target is required")
			}
			spec, err := parseWhere(v.GetStringSlice("where"))
			if err != nil {
				return err
			}

			reader, err := readerFromConfig(v, target)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), reader, target, spec)
		},
	}
	addFileFlags(cmd)
	cmd.Flags().String("target", "", "numeric column to summarise")
	cmd.Flags().StringArray("where", nil, "filter as Column=Value, repeatable")
	return cmd
}

func newSchemaCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the typed columns of a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := readerFromConfig(v)
			if err != nil {
				return err
			}
			ds, err := reader.Load(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"name":    ds.Name(),
				"rows":    ds.Rows(),
				"columns": ds.Schema().Fields(),
			})
		},
	}
	addFileFlags(cmd)
	return cmd
}

func runQuery(ctx context.Context, out io.Writer, reader *excel.DataReader, target string, spec dataset.FilterSpec) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := reader.Load(ctx)
	if err != nil {
		return err
	}

	svc, err := app.NewStatsService(app.Resource{
		Name:        ds.Name(),
		Dataset:     ds,
		Target:      target,
		ParseNumber: reader.ParseNumeric,
	})
	if err != nil {
		// the target is a flag value here
		return errors.WithCode(errors.CodeInvalidInput, err)
	}

	summary, err := svc.Query(ctx, spec)
	if err != nil {
		return err
	}
	return writeJSON(out, summary)
}

// parseWhere turns repeated Column=Value flags into a filter specification
func parseWhere(clauses []string) (dataset.FilterSpec, error) {
	spec := dataset.FilterSpec{}
	for _, clause := range clauses {
		column, value, ok := strings.Cut(clause, "=")
		if !ok || column == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid --where %q, expected Column=Value", clause))
		}
		spec[column] = append(spec[column], value)
	}
	return spec, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
