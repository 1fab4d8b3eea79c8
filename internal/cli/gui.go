package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"pagebuilder/internal/app"
	"pagebuilder/internal/config"
)

func (c *CLI) newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the editor window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGUI(cmd.Context())
		},
	}
}

func (c *CLI) runGUI(ctx context.Context) error {
	a := app.New(c.cfg, c.logger)

	// Reload settings while the window is open.
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := config.Watch(watchCtx, c.configPath, a.ApplyConfig); err != nil {
			c.logger.Debug("config watch stopped", "err", err)
		}
	}()

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "Page Builder",
		Width:     1280,
		Height:    860,
		MinWidth:  720,
		MinHeight: 540,
		AssetServer: &assetserver.Options{
			Assets: c.assets,
		},
		BackgroundColour: &options.RGBA{R: 250, G: 250, B: 250, A: 1},
		Menu:             appMenu,
		OnStartup:        a.Startup,
		OnShutdown:       a.Shutdown,
		Bind: []interface{}{
			a,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "Page Builder",
				Message: "Drag-and-drop block page editor",
			},
		},
	})
}
