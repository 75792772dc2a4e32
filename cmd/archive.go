package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"

	"github.com/ReinoScreech/roblox-wall-archive/archive"
	"github.com/ReinoScreech/roblox-wall-archive/config"
	"github.com/ReinoScreech/roblox-wall-archive/roblox"
	"github.com/ReinoScreech/roblox-wall-archive/wall"
)

// archiveCmd represents the archive command
func archiveCmd() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Fetch a group wall and write it to the archive store",
		Description: `Fetches every post from a group's wall, newest first, and
writes them to a text file under the archive store, together with a
fixed license notice.

A .ROBLOSECURITY cookie can be supplied to read walls that are only
visible to group members. WARNING: the cookie grants full access to
the account it belongs to, treat it accordingly.`,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "group-id",
				Aliases:  []string{"g"},
				Usage:    "The numeric ID of the group, as found in the group URL",
				Required: true,
				EnvVars:  []string{"RGWA_GROUP_ID"},
			},
			&cli.StringFlag{
				Name:     "group-name",
				Aliases:  []string{"n"},
				Usage:    "The name of the group, used for file naming",
				Required: true,
				EnvVars:  []string{"RGWA_GROUP_NAME"},
			},
			&cli.StringFlag{
				Name:    "roblosecurity",
				Usage:   "Your .ROBLOSECURITY cookie, for walls with restricted visibility",
				EnvVars: []string{"RGWA_ROBLOSECURITY"},
			},
			&cli.BoolFlag{
				Name:    "compact",
				Usage:   "Format each post on a single line",
				EnvVars: []string{"RGWA_COMPACT"},
			},
			&cli.StringFlag{
				Name:    "on-error",
				Value:   "ask",
				Usage:   "What to do on unexpected API errors: ask, continue or abort",
				EnvVars: []string{"RGWA_ON_ERROR"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML file with retry and cooldown tunables",
				EnvVars: []string{"RGWA_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the cookie confirmation and the start countdown",
			},
		},
		Action: runArchive,
	}
}

func runArchive(ctx *cli.Context) error {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	policy, err := continuePolicy(ctx.String("on-error"))
	if err != nil {
		return err
	}

	cookie := ctx.String("roblosecurity")
	if cookie != "" && !ctx.Bool("yes") {
		fmt.Println("WARNING: You are providing your .ROBLOSECURITY cookie.")
		fmt.Println("This gives FULL access to your account. Use at your own risk!")
		fmt.Println("If someone else gave you this cookie or you are unsure, DO NOT proceed.")
		answer, err := prompt.New().
			Ask("Are you sure you want to continue?").
			Choose([]string{"yes", "no"})
		if err != nil || answer != "yes" {
			return nil
		}
	}

	groupID := ctx.Int64("group-id")
	groupName := ctx.String("group-name")

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()

	fmt.Printf("%s\n\n", archive.Version)
	if !ctx.Bool("yes") {
		fmt.Println("Starting in 10 seconds. Press Ctrl+C to cancel...")
		if err := countdown(runCtx, 10); err != nil {
			fmt.Println("\nExiting...")
			return nil
		}
	}

	fmt.Printf("Preparing to retrieve posts from %s (%d). This may take a while, so please be patient.\n", groupName, groupID)

	client := roblox.NewClient(roblox.ClientConfig{
		BaseURL:     cfg.BaseURL,
		Cookie:      cookie,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.Backoff(),
		Timeout:     cfg.Timeout(),
		Policy:      policy,
	})

	paginator := &wall.Paginator{
		Client:   client,
		Resolver: roblox.NewRankResolver(client, groupID, cfg.RankCooldown(), nil),
		GroupID:  groupID,
		Compact:  ctx.Bool("compact"),
		Cooldown: cfg.PageCooldown(),
	}

	result, err := paginator.FetchAll(runCtx)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Println("\nExiting...")
			return nil
		case errors.Is(err, roblox.ErrPermissionDenied):
			return cli.Exit("This group's wall is not visible to you. It may be disabled for non-members,\n"+
				"or your rank may not allow viewing. You can retry with --roblosecurity to fetch\n"+
				"under your own account (not recommended), or contact the group holder.", 1)
		case errors.Is(err, roblox.ErrRetryExhausted):
			return cli.Exit("The API rate limit did not clear within the retry budget. No archive was\n"+
				"written; try again later or raise max_attempts in the config file.", 1)
		default:
			return err
		}
	}

	writer := &archive.Writer{
		StoreDir:  cfg.ArchiveDir,
		GroupID:   groupID,
		GroupName: groupName,
	}
	if _, err := writer.Write(result.Records, result.Pages, result.Outcome); err != nil {
		return err
	}

	return nil
}

func continuePolicy(name string) (roblox.ContinuePolicy, error) {
	switch name {
	case "ask":
		return roblox.PromptPolicy{}, nil
	case "continue":
		return roblox.AutoContinue{}, nil
	case "abort":
		return roblox.AutoAbort{}, nil
	default:
		return nil, fmt.Errorf("unknown --on-error value %q (want ask, continue or abort)", name)
	}
}

func countdown(ctx context.Context, seconds int) error {
	for i := seconds; i > 0; i-- {
		fmt.Printf("%d... ", i)
		timer := time.NewTimer(time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	fmt.Println()
	return nil
}
