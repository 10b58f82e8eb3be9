// Package cli 命令行入口。
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/momomo623/smart-word-completion/internal/config"
	"github.com/momomo623/smart-word-completion/internal/detector"
	"github.com/momomo623/smart-word-completion/internal/generator"
	"github.com/momomo623/smart-word-completion/internal/processor"
	"github.com/momomo623/smart-word-completion/pkg/docx"
)

// AppVersion 程序版本
const AppVersion = "1.0.0"

// Execute 运行命令行程序。
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	rootCmd := &cobra.Command{
		Use:   "smart-word-completion",
		Short: "Word文档占位符智能填充工具",
		Long:  "检测Word文档中的占位符（下划线、空白单元格等），用大模型生成中性词标注，再按配置回填实际内容。",
	}

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <input.docx>",
		Short: "检测占位符并填入中性词标注",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return runProcess(cmd, args[0], output)
		},
	}
	cmd.Flags().StringP("output", "o", "", "输出文件路径，默认为 <input>_processed.docx")
	return cmd
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <input.docx>",
		Short: "按关键词配置回填 {{标记}} 内容",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			output, _ := cmd.Flags().GetString("output")
			return runApply(args[0], configPath, output)
		},
	}
	cmd.Flags().StringP("config", "c", "", "关键词配置文件（JSON）")
	cmd.Flags().StringP("output", "o", "", "输出文件路径，默认为 <input>_filled.docx")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("smart-word-completion v%s\n", AppVersion)
		},
	}
}

func runProcess(cmd *cobra.Command, inputPath, outputPath string) error {
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, "_processed")
	}

	if err := docx.ValidateDocument(inputPath); err != nil {
		return fmt.Errorf("文档验证失败: %w", err)
	}

	cfg := config.Load()
	client := generator.NewClient(cfg.LLM)

	charDet, err := detector.NewCharacterDetector(detector.DefaultPatterns(cfg.MinRepetition))
	if err != nil {
		return err
	}
	detectors := []detector.Detector{
		charDet,
		detector.NewUnderlineSpaceDetector(docx.IsUnderlined),
	}
	if cfg.EnableModelDetector {
		detectors = append(detectors, detector.NewModelDetector(client))
	}

	proc := processor.New(cfg, detectors, client)
	result, err := proc.ProcessDocument(cmd.Context(), inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("处理文档失败: %w", err)
	}

	fmt.Println(result.Report())
	return nil
}

func runApply(inputPath, configPath, outputPath string) error {
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, "_filled")
	}

	cfg, err := config.LoadKeywordConfig(configPath)
	if err != nil {
		return err
	}
	log.Info().Str("project", cfg.ProjectName).Int("keywords", len(cfg.Keywords)).Msg("已加载关键词配置")

	if err := docx.FillMarkers(inputPath, outputPath, cfg.MarkerMap()); err != nil {
		return err
	}
	fmt.Printf("回填完成: %s\n", outputPath)
	return nil
}

// defaultOutputPath 生成默认输出路径：与输入同目录，文件名加后缀。
func defaultOutputPath(inputPath, suffix string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return base + suffix + ext
}
