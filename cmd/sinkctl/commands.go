package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/logsink/pkg/sink/xhandler"
	"github.com/omeyang/logsink/pkg/sink/xpolicy"
	"github.com/omeyang/logsink/pkg/sink/xwire"
)

// usageError 表示调用方参数错误，映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// createCommands 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createListCommand(),
		createSweepCommand(),
		createBackupsCommand(),
		createCheckCommand(),
	}
}

// resolveConfig 合并配置文件与命令行覆盖项。
func resolveConfig(cmd *cli.Command) (xwire.Config, error) {
	cfg := xwire.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := xwire.Load(path)
		if err != nil {
			return xwire.Config{}, err
		}
		cfg = loaded
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.LogDir = dir
	}
	if app := cmd.String("app"); app != "" {
		cfg.AppName = app
	}
	return cfg, nil
}

// newRollingPolicy 按配置构造滚动策略，供 sweep/list 复用。
func newRollingPolicy(cfg xwire.Config) (*xpolicy.TimeBasedRolling, error) {
	return xpolicy.NewTimeBasedRolling(cfg.ActiveFile(),
		xpolicy.WithMaxHistory(cfg.MaxHistory),
		xpolicy.WithTotalSizeCap(cfg.TotalSizeCap),
		xpolicy.WithCompress(cfg.Compress),
	)
}

// managedFiles 返回目录中属于本应用的日志文件（活动文件 + 归档）。
func managedFiles(cfg xwire.Config) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(cfg.LogDir)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(cfg.ActiveFile())
	var infos []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime().After(infos[j].ModTime())
	})
	return infos, nil
}

func createListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "列出活动文件与归档文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			infos, err := managedFiles(cfg)
			if err != nil {
				return fmt.Errorf("读取日志目录失败: %w", err)
			}
			if len(infos) == 0 {
				fmt.Println("无日志文件")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "文件\t大小\t修改时间")
			var total int64
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					info.Name(),
					formatSize(info.Size()),
					info.ModTime().Format("2006-01-02 15:04:05"),
				)
				total += info.Size()
			}
			fmt.Fprintf(w, "合计 %d 个文件\t%s\t\n", len(infos), formatSize(total))
			return w.Flush()
		},
	}
}

func createSweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "立即执行一次保留清扫",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			rolling, err := newRollingPolicy(cfg)
			if err != nil {
				return err
			}

			before, err := managedFiles(cfg)
			if err != nil {
				return fmt.Errorf("读取日志目录失败: %w", err)
			}

			rolling.SweepNow()

			after, err := managedFiles(cfg)
			if err != nil {
				return fmt.Errorf("读取日志目录失败: %w", err)
			}
			fmt.Printf("清扫完成: 删除 %d 个归档，剩余 %d 个文件\n",
				len(before)-len(after), len(after))
			return nil
		},
	}
}

func createBackupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "列出故障降级产生的备份文件",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "purge",
				Usage: "列出后删除全部备份文件",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			backupDir := filepath.Join(cfg.LogDir, xhandler.DefaultBackupDirName)
			entries, err := os.ReadDir(backupDir)
			if os.IsNotExist(err) {
				fmt.Println("无备份文件")
				return nil
			}
			if err != nil {
				return fmt.Errorf("读取备份目录失败: %w", err)
			}

			var names []string
			var total int64
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				fmt.Printf("%s\t%s\t%s\n",
					entry.Name(),
					formatSize(info.Size()),
					info.ModTime().Format("2006-01-02 15:04:05"),
				)
				names = append(names, entry.Name())
				total += info.Size()
			}
			if len(names) == 0 {
				fmt.Println("无备份文件")
				return nil
			}
			fmt.Printf("合计 %d 个备份，%s\n", len(names), formatSize(total))

			if cmd.Bool("purge") {
				for _, name := range names {
					if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
						return fmt.Errorf("删除 %s 失败: %w", name, err)
					}
				}
				fmt.Printf("已删除 %d 个备份文件\n", len(names))
			}
			return nil
		},
	}
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				return &usageError{msg: "check 命令需要 --config 指定配置文件"}
			}

			cfg, err := xwire.Load(path)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Printf("配置有效: app=%s dir=%s max_file_size=%s max_history=%d天 total_size_cap=%s\n",
				cfg.AppName, cfg.LogDir,
				formatSize(cfg.MaxFileSize), cfg.MaxHistory, formatSize(cfg.TotalSizeCap))
			return nil
		},
	}
}

// formatSize 人类可读的字节数。
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMG"[exp])
}
