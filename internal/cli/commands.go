// Package cli wires the pipeline into the command surface of the
// binary.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/checkpoint"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/config"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/display"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/notify"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/pipeline"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/report"
)

const version = "1.0.0"

const dateLayout = "2006-01-02"

// NewRootCmd creates the root command.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zsxq-sentiment",
		Short: "知识星球财经舆情分析",
		Long: `抓取知识星球社区的帖子和评论，通过大模型识别财经相关内容，
汇总每只标的的多空观点并生成 Excel 报告。`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newFetchCmd(cfg))
	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newScheduleCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newFetchCmd creates the fetch command.
func newFetchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "抓取帖子和评论并保存快照",
		Long: `抓取配置的星球在指定时间范围内的全部帖子及评论。
不带参数时抓取当天内容。
Example: zsxq-sentiment fetch --start-date=2024-06-01 --end-date=2024-06-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}
			return withSignals(func(ctx context.Context) error {
				_, _, err := runFetch(ctx, cfg, window)
				return err
			})
		},
	}
	addWindowFlags(cmd)
	return cmd
}

// newAnalyzeCmd creates the analyze command, which reruns analysis on a
// previously saved snapshot.
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析已保存的内容快照",
		Long: `对 fetch 保存的快照重新运行分析并生成报告，不访问星球接口。
Example: zsxq-sentiment analyze --data=data/topics_2024-06-01.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath, _ := cmd.Flags().GetString("data")

			topics, err := pipeline.LoadTopics(dataPath)
			if err != nil {
				return err
			}
			label := time.Now().Format(dateLayout)
			return withSignals(func(ctx context.Context) error {
				return runAnalyze(ctx, cfg, topics, label)
			})
		},
	}
	cmd.Flags().String("data", "", "内容快照文件路径")
	cmd.MarkFlagRequired("data")
	return cmd
}

// newRunCmd creates the run command: fetch then analyze in one go.
func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "抓取并分析，一步完成",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}
			return withSignals(func(ctx context.Context) error {
				return runOnce(ctx, cfg, window)
			})
		},
	}
	addWindowFlags(cmd)
	return cmd
}

// newScheduleCmd creates the schedule command, which keeps the process
// alive and runs the full pipeline on the configured cron spec.
func newScheduleCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "按计划定时运行抓取和分析",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSignals(func(ctx context.Context) error {
				c := cron.New()
				_, err := c.AddFunc(cfg.CronSpec, func() {
					if err := runOnce(ctx, cfg, pipeline.Window{}); err != nil {
						slog.Error("scheduled run failed", "error", err)
					}
				})
				if err != nil {
					return fmt.Errorf("invalid cron spec %q: %w", cfg.CronSpec, err)
				}

				slog.Info("scheduler started", "spec", cfg.CronSpec)
				c.Start()
				<-ctx.Done()
				<-c.Stop().Done()
				return nil
			})
		},
	}
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zsxq-sentiment v%s\n", version)
		},
	}
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("start-date", "", "起始日期 YYYY-MM-DD（含当天）")
	cmd.Flags().String("end-date", "", "结束日期 YYYY-MM-DD（含当天）")
	cmd.Flags().Bool("since-last", false, "从上次抓取的检查点继续")
}

// windowFromFlags parses the shared time range flags. An end date is
// inclusive on the command line and converted to the half-open bound
// the crawler expects.
func windowFromFlags(cmd *cobra.Command) (pipeline.Window, error) {
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	sinceLast, _ := cmd.Flags().GetBool("since-last")

	var window pipeline.Window
	window.SinceLast = sinceLast

	if startDate != "" {
		start, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return window, fmt.Errorf("invalid --start-date %q: %w", startDate, err)
		}
		window.Start = start
	}
	if endDate != "" {
		end, err := time.ParseInLocation(dateLayout, endDate, time.Local)
		if err != nil {
			return window, fmt.Errorf("invalid --end-date %q: %w", endDate, err)
		}
		window.End = end.AddDate(0, 0, 1)
	}
	if sinceLast && !window.Start.IsZero() {
		return window, fmt.Errorf("--since-last and --start-date are mutually exclusive")
	}
	return window, nil
}

// runFetch executes the fetch phase and saves the snapshot.
func runFetch(ctx context.Context, cfg *config.Config, window pipeline.Window) ([]models.Topic, string, error) {
	store, err := checkpoint.Open(cfg.CheckpointDB)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	notifier := notify.New(cfg.WecomWebhook)

	topics, counts, err := pipeline.New(cfg, store).Fetch(ctx, window)
	if err != nil {
		_ = notifier.SendAlert(ctx, "内容抓取", err)
		return nil, "", err
	}

	display.PrintFetchSummary(counts)

	label := fetchLabel(window)
	if len(topics) == 0 {
		_ = notifier.SendText(ctx, fmt.Sprintf("📭 %s 没有抓到新内容", label))
		return topics, label, nil
	}

	path, err := pipeline.SaveTopics(cfg.DataDir, label, topics)
	if err != nil {
		return topics, label, err
	}
	_ = notifier.SendText(ctx, fmt.Sprintf("📥 内容抓取完成，共 %d 条，已保存: %s", len(topics), path))
	return topics, label, nil
}

// runAnalyze executes the analysis phase over in-memory topics and
// writes the report.
func runAnalyze(ctx context.Context, cfg *config.Config, topics []models.Topic, label string) error {
	store, err := checkpoint.Open(cfg.CheckpointDB)
	if err != nil {
		return err
	}
	defer store.Close()

	notifier := notify.New(cfg.WecomWebhook)

	table, err := pipeline.New(cfg, store).Analyze(ctx, topics)
	if err != nil {
		_ = notifier.SendAlert(ctx, "内容分析", err)
		return err
	}

	writer := report.NewWriter(cfg.OutputDir)
	reportPath, err := writer.WriteExcel(table, label)
	if err != nil {
		slog.Error("excel report failed, falling back to csv", "error", err)
		reportPath, err = writer.WriteCSV(table, label)
		if err != nil {
			return err
		}
	}

	display.PrintRunSummary(label, table.Summary, reportPath)
	return notifier.SendSummary(ctx, label, table.Summary, reportPath)
}

// runOnce is the full daily pipeline: fetch, analyze, report, notify.
func runOnce(ctx context.Context, cfg *config.Config, window pipeline.Window) error {
	topics, label, err := runFetch(ctx, cfg, window)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return nil
	}
	return runAnalyze(ctx, cfg, topics, label)
}

// fetchLabel names snapshots and reports after the fetch day.
func fetchLabel(window pipeline.Window) string {
	if !window.Start.IsZero() {
		return window.Start.Format(dateLayout)
	}
	return time.Now().Format(dateLayout)
}

// withSignals runs fn under a context cancelled by SIGINT/SIGTERM.
func withSignals(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}
