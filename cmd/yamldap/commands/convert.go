package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/yamldap/internal/config"
	"github.com/systmms/yamldap/internal/convert"
)

func NewLDIF2YAMLCommand(cfg *config.Config) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "ldif2yaml <src> <dst>",
		Short: "Convert an LDIF export to YAML",
		Long: `Convert an LDIF export to a YAML list with one item per entry.

Entries are streamed, so exports larger than memory can be converted.
Progress is reported on stderr. Base64 values are kept as !!binary.

Examples:
  yamldap ldif2yaml export.ldif export.yml

  # Also write conversion metrics for the node_exporter textfile collector
  yamldap ldif2yaml export.ldif export.yml --metrics-file /var/lib/node_exporter/yamldap.prom`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cfg, convert.DirectionLDIFToYAML, args[0], args[1], metricsFile)
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write conversion metrics in Prometheus text format to this file")

	return cmd
}

func NewYAML2LDIFCommand(cfg *config.Config) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "yaml2ldif <src> <dst>",
		Short: "Convert a YAML export back to LDIF",
		Long: `Convert a YAML list written by ldif2yaml back to LDIF.

Examples:
  yamldap yaml2ldif export.yml export.ldif`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cfg, convert.DirectionYAMLToLDIF, args[0], args[1], metricsFile)
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write conversion metrics in Prometheus text format to this file")

	return cmd
}

func runConvert(cfg *config.Config, direction, src, dst, metricsFile string) error {
	var metrics *convert.Metrics
	if metricsFile != "" {
		metrics = convert.NewMetrics()
	}

	c := convert.New(cfg.Logger, metrics)
	stats, err := c.ConvertFile(direction, src, dst)
	if err != nil {
		return err
	}
	cfg.Logger.Info("Converted %d entries from %s to %s in %s", stats.Entries, src, dst, stats.Duration.Round(time.Millisecond))

	if metrics != nil {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return err
		}
		cfg.Logger.Debug("Metrics written to %s", metricsFile)
	}
	return nil
}
