// tftlabel 维护云顶之弈单位检测数据集：截图、自动标注、审核、提交和统计
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/config"
)

// rootOptions 所有子命令共享的参数
type rootOptions struct {
	root       string
	configPath string
}

func (o *rootOptions) settings() (*config.Settings, error) {
	return config.Load(config.LoadOptions{Root: o.root, ConfigPath: o.configPath})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tftlabel",
		Short:         "Build and maintain the TFT unit detection dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Installation root (default $"+config.EnvRoot+" or the working directory)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default <root>/"+config.DefaultConfigName+")")

	cmd.AddCommand(
		newInitCmd(opts),
		newScreenshotCmd(opts),
		newAutolabelCmd(opts),
		newDetectCmd(opts),
		newCommitCmd(opts),
		newRepairCmd(opts),
		newTallyCmd(opts),
		newReviewCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalln("ERROR:", err)
	}
}
