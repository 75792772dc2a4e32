package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "rgwa",
		Usage: "Archive Roblox group walls before they are gone",
		Description: `Retrieves every post from a group's wall and preserves it
		as a flat text archive, one folder per group.

		Group walls are being deprecated and removed; this tool captures
		them as a factual historical record. Please use it for archival
		purposes only.

		Flags can generally be set via environment variables, e.g.:

		--group-id => RGWA_GROUP_ID=12345
		--archive-dir => RGWA_ARCHIVE_DIR=Archives
		`,
		Commands: []*cli.Command{
			archiveCmd(),
			serveCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
