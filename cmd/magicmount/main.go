package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli"

	magicmount "github.com/5ec1cff/MagicMountStandalone"
)

func errExit(exitCode int, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitCode)
}

func main() {
	app := cli.NewApp()
	app.Name = "magicmount"
	app.Usage = "overlay mount composer"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "work-dir",
			Usage: "staging tmpfs mount point",
			Value: magicmount.DefaultWorkDir,
		},
		cli.StringFlag{
			Name:  "magic",
			Usage: "tmpfs source tag used to identify our own mounts",
			Value: magicmount.DefaultMagic,
		},
		cli.StringFlag{
			Name:  "add-partitions",
			Usage: "comma-separated extra partitions to extract as their own roots",
		},
	}

	app.Commands = []cli.Command{
		{Name: "mount", Usage: "compose and install the overlay", Action: runMount},
		{Name: "umount", Usage: "tear down mounts this tool installed", Action: runUmount},
	}

	app.Action = func(ctx *cli.Context) error {
		cli.ShowAppHelp(ctx)
		return cli.NewExitError(magicmount.ErrArg.Error(), 1)
	}

	if err := app.Run(os.Args); err != nil {
		errExit(1, err)
	}
}

func configFromFlags(ctx *cli.Context) magicmount.Config {
	override := magicmount.Config{
		WorkDir: ctx.GlobalString("work-dir"),
		Magic:   ctx.GlobalString("magic"),
	}
	if raw := ctx.GlobalString("add-partitions"); raw != "" {
		override.Partitions = strings.Split(raw, ",")
	}
	return override
}

func runMount(ctx *cli.Context) error {
	runID := uuid.New().String()

	cfg, err := magicmount.LoadConfig(configFromFlags(ctx))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("[%s] config: %v", runID, err), 1)
	}

	log.Printf("[I][%s] magicmount: work dir %s magic %s", runID, cfg.WorkDir, cfg.Magic)
	for _, p := range cfg.Partitions {
		log.Printf("[D][%s] supported partition: %s", runID, p)
	}

	if err := magicmount.MountStaging(cfg); err != nil {
		return cli.NewExitError(fmt.Sprintf("[%s] mount tmp: %v", runID, err), 1)
	}

	if err := magicmount.HandleModules(cfg); err != nil {
		log.Printf("[E][%s] handle modules: %v", runID, err)
	}

	if err := magicmount.UnmountStaging(cfg); err != nil {
		log.Printf("[E][%s] umount tmp: %v", runID, err)
	}

	return nil
}

func runUmount(ctx *cli.Context) error {
	runID := uuid.New().String()
	magic := ctx.GlobalString("magic")

	log.Printf("[I][%s] magicmount: tearing down mounts tagged %s", runID, magic)
	if err := magicmount.UnmountModules(magic); err != nil {
		return cli.NewExitError(fmt.Sprintf("[%s] umount: %v", runID, err), 1)
	}
	return nil
}
