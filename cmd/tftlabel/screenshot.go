package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Cubiaa/tft-labeler/capture"
)

func newScreenshotCmd(opts *rootOptions) *cobra.Command {
	var (
		folder string
		hotkey bool
		video  string
		every  int
	)
	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture game screenshots into the screenshots folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			if folder == "" {
				folder = s.Staging().Images
			} else {
				folder = s.Resolve(folder)
			}
			out := cmd.OutOrStdout()
			cc := s.App.Capture

			if video != "" {
				if every <= 0 {
					every = cc.FrameEvery
				}
				n, err := capture.ExtractFrames(s.Resolve(video), folder, capture.FrameOptions{
					Every:  every,
					Width:  cc.Width,
					Height: cc.Height,
					Out:    out,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ 从录像中保存了 %d 帧\n", n)
				return nil
			}

			session := &capture.Session{
				Capturer: capture.WindowCapturer{Title: cc.WindowTitle, Width: cc.Width, Height: cc.Height},
				Folder:   folder,
				Out:      out,
			}
			if hotkey {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				fmt.Fprintf(out, "⌨️  按 %s 截图，Ctrl+C 退出\n", cc.Hotkey)
				return session.RunHotkey(ctx, cc.Hotkey)
			}
			return session.RunPrompt(cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder to save screenshots to (default: configured screenshots folder)")
	cmd.Flags().BoolVar(&hotkey, "hotkey", false, "Capture on the configured global hotkey instead of Enter")
	cmd.Flags().StringVar(&video, "video", "", "Extract frames from a recording instead of capturing the window")
	cmd.Flags().IntVar(&every, "every", 0, "With --video, keep every Nth frame (default: capture.frame_every)")
	return cmd
}
