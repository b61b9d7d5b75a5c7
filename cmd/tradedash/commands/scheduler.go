package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradedash/internal/scheduler"
	"github.com/wonny/tradedash/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `캐시 예열 스케줄러를 시작하거나 작업을 즉시 실행합니다.

등록되는 작업:
- metrics_warm: ANALYTICS_WARM_SCHEDULE (기본 15분마다)
  ANALYTICS_WARM_ACCOUNTS 계정의 지표를 다시 계산해 캐시에 저장

Example:
  go run ./cmd/tradedash scheduler start
  go run ./cmd/tradedash scheduler run metrics_warm`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runSchedulerStart,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job]",
		Short: "작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers every job against a bootstrapped app
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log, scheduler.WithLocation(a.location))

	warm := jobs.NewMetricsWarmJob(
		a.analyzer,
		a.cfg.Analytics.WarmAccounts,
		a.cfg.Analytics.StartingBalance,
		a.location,
		a.cfg.Analytics.WarmSchedule,
		a.log,
	)
	if err := s.AddJob(warm); err != nil {
		return nil, err
	}

	return s, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.redis.Enabled() {
		PrintWarning("REDIS_ENABLED=false: warmed metrics are computed but not cached")
	}

	s, err := newScheduler(a)
	if err != nil {
		return err
	}

	s.Start()
	PrintSuccess(fmt.Sprintf("Scheduler started with jobs: %v", s.Jobs()))

	<-ctx.Done()
	s.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := s.RunJob(args[0])
	if err != nil {
		return err
	}

	PrintKeyValue("Job", result.JobName, 10)
	PrintKeyValue("Attempts", fmt.Sprintf("%d", result.Attempts), 10)
	PrintKeyValue("Duration", result.Duration.String(), 10)
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}

	PrintSuccess("Job completed")
	return nil
}
