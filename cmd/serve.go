package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ReinoScreech/roblox-wall-archive/server"
)

// serveCmd represents the serve command
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the archive store over HTTP",
		Description: `Starts a read-only HTTP server over the archive store.

GET /archives lists the archived groups and their files as JSON,
GET /archives/:group/:file downloads a file, and GET /metrics
exposes fetch and server metrics in Prometheus format.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "Archives",
				Usage:   "Archive store directory to serve",
				EnvVars: []string{"RGWA_ARCHIVE_DIR"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"RGWA_PORT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			app := server.Server(&server.ServerConfig{
				StoreDir: ctx.String("dir"),
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(10 * time.Second)
			}()

			fmt.Println("Starting server...")
			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}
