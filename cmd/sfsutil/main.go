// Command sfsutil is a companion tool for inspecting and populating sfs
// volume images from the shell.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zzzrg/os-filesystem/profiles"
	"github.com/zzzrg/os-filesystem/sfs"
)

func main() {
	app := cli.App{
		Usage: "Inspect and populate sfs volume images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profile",
				Value: "classic",
				Usage: "named volume layout to use (see profiles package)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "create a fresh volume image",
				ArgsUsage: "IMAGE_PATH",
				Action:    formatCmd,
			},
			{
				Name:      "put",
				Usage:     "copy a host file into the volume",
				ArgsUsage: "IMAGE_PATH HOST_FILE [SFS_NAME]",
				Action:    putCmd,
			},
			{
				Name:      "cat",
				Usage:     "print a volume file's contents to stdout",
				ArgsUsage: "IMAGE_PATH SFS_NAME",
				Action:    catCmd,
			},
			{
				Name:      "ls",
				Usage:     "list files on the volume",
				ArgsUsage: "IMAGE_PATH",
				Action:    lsCmd,
			},
			{
				Name:      "rm",
				Usage:     "remove a file from the volume",
				ArgsUsage: "IMAGE_PATH SFS_NAME",
				Action:    rmCmd,
			},
			{
				Name:      "stat",
				Usage:     "print a volume file's size",
				ArgsUsage: "IMAGE_PATH SFS_NAME",
				Action:    statCmd,
			},
			{
				Name:      "fsck",
				Usage:     "check volume consistency",
				ArgsUsage: "IMAGE_PATH",
				Action:    fsckCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("sfsutil: %s", err.Error())
	}
}

func layoutFor(c *cli.Context) (profiles.VolumeLayout, error) {
	return profiles.Get(c.String("profile"))
}

func formatCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("format requires an image path")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.FormatFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	return fs.Unmount()
}

func putCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("put requires an image path and a host file")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	hostPath := c.Args().Get(1)
	sfsName := c.Args().Get(2)
	if sfsName == "" {
		sfsName = hostPath
	}

	contents, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}

	fd, err := fs.Open(sfsName)
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	if err := fs.Wseek(fd, 0); err != nil {
		return err
	}
	n, err := fs.Write(fd, contents, len(contents))
	if err != nil {
		return err
	}
	if n != len(contents) {
		return fmt.Errorf("short write: wrote %d of %d bytes", n, len(contents))
	}
	return nil
}

func catCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("cat requires an image path and a file name")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	name := c.Args().Get(1)
	size, err := fs.GetFileSize(name)
	if err != nil {
		return err
	}

	fd, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer fs.Close(fd)

	buf := make([]byte, size)
	n, err := fs.Read(fd, buf, int(size))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(buf[:n])
	return err
}

func lsCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("ls requires an image path")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	for {
		name, _, ok := fs.GetNextFileName()
		if !ok {
			return nil
		}
		size, _ := fs.GetFileSize(name)
		fmt.Printf("%-20s %10d\n", name, size)
	}
}

func rmCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("rm requires an image path and a file name")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	return fs.Remove(c.Args().Get(1))
}

func statCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("stat requires an image path and a file name")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	size, err := fs.GetFileSize(c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Println(size)
	return nil
}

func fsckCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("fsck requires an image path")
	}
	layout, err := layoutFor(c)
	if err != nil {
		return err
	}
	fs, err := sfs.MountFile(c.Args().Get(0), layout)
	if err != nil {
		return err
	}
	defer fs.Unmount()

	if err := fs.Check(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.Exit("consistency check failed", 1)
	}
	fmt.Println("OK")
	return nil
}
