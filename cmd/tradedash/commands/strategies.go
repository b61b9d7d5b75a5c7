package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/internal/strategyconfig"
	"github.com/wonny/tradedash/pkg/config"
)

// strategiesCmd represents the strategies command
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "전략 파라미터 조회/수정",
	Long: `STRATEGY_CONFIG_PATH 의 전략 파라미터를 조회하거나 수정합니다.

Example:
  go run ./cmd/tradedash strategies list
  go run ./cmd/tradedash strategies set momentum lookback_days=30 stop_loss_pct=2`,
}

var (
	strategiesListCmd = &cobra.Command{
		Use:   "list",
		Short: "전략 목록",
		RunE:  runStrategiesList,
	}

	strategiesSetCmd = &cobra.Command{
		Use:   "set [id] [name=value]...",
		Short: "파라미터 수정",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runStrategiesSet,
	}
)

func init() {
	rootCmd.AddCommand(strategiesCmd)
	strategiesCmd.AddCommand(strategiesListCmd)
	strategiesCmd.AddCommand(strategiesSetCmd)
}

func openStrategyStore() (*strategyconfig.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return strategyconfig.Open(cfg.Analytics.StrategyConfigPath)
}

func runStrategiesList(cmd *cobra.Command, args []string) error {
	store, err := openStrategyStore()
	if err != nil {
		return err
	}

	cfg, hash, err := store.Snapshot()
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Strategies (version %s, hash %s)", cfg.Version, hash[:12]))
	for _, st := range cfg.Strategies {
		status := "off"
		if st.Enabled {
			status = "on"
		}
		fmt.Printf("\n  %s [%s] %s @ %s, allocation %.2f\n", st.ID, status, st.Label, st.Platform, st.Allocation)

		names := make([]string, 0, len(st.Params))
		for name := range st.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := st.Params[name]
			value := strconv.FormatFloat(p.Value, 'f', -1, 64)
			if p.Bounded() {
				value = fmt.Sprintf("%s  [%g, %g]", value, p.Min, p.Max)
			}
			PrintKeyValue(name, value, 24)
		}
	}
	PrintDoubleSeparator()
	return nil
}

func runStrategiesSet(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	store, err := openStrategyStore()
	if err != nil {
		return err
	}

	st, err := store.UpdateParams(args[0], values)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Updated %d parameter(s) of %s", len(values), st.ID))
	return nil
}

// parseAssignments parses name=value pairs
func parseAssignments(args []string) (map[string]float64, error) {
	values := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected name=value)", arg)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}
