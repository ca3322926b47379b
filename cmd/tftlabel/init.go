package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/config"
	"github.com/Cubiaa/tft-labeler/dataset"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file and create the data folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(s.ConfigPath); err == nil && !force {
				return fmt.Errorf("配置文件 %s 已存在（使用 --force 覆盖）", s.ConfigPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			cm := config.NewConfigManager(s.ConfigPath)
			if err := cm.CreateDefaultConfig(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ 已创建配置文件: %s\n", s.ConfigPath)

			for _, a := range []dataset.Archive{s.Staging(), s.Archive()} {
				if err := a.Ensure(); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "📁 数据目录已就绪: %s\n", s.Root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
