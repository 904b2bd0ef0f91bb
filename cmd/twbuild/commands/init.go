package commands

import (
	"fmt"

	"git.home.luguber.info/inful/twbuild/internal/config"
	"git.home.luguber.info/inful/twbuild/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force      bool   `help:"Overwrite existing files"`
	Src        string `help:"Source directory to create" default:"src" placeholder:"DIR"`
	Name       string `help:"Extension display name (default: My Extension)"`
	ID         string `name:"id" help:"Extension id, letters and digits only (default: myExtension)"`
	Author     string `help:"Author shown in the header (default: Anonymous)"`
	WithConfig bool   `name:"with-config" help:"Also write the configuration file given by --config"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	opts := scaffold.Options{
		SrcDir: i.Src,
		Name:   i.Name,
		ID:     i.ID,
		Author: i.Author,
		Force:  i.Force,
	}
	if i.WithConfig {
		opts.ConfigPath = root.Config
		if opts.ConfigPath == "" {
			opts.ConfigPath = config.DefaultPath
		}
	}
	return RunInit(opts)
}

// RunInit writes the starter project and reports each created file on stdout.
func RunInit(opts scaffold.Options) error {
	fmt.Println("Initializing TurboWarp extension project")
	written, err := scaffold.Init(opts)
	for _, path := range written {
		fmt.Printf("Created %s\n", path)
	}
	if err != nil {
		fmt.Println("Initialization failed")
		return err
	}
	fmt.Println("Run 'twbuild' to build, or 'twbuild --watch' to rebuild on save")
	return nil
}
