package cli

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/controlwork/internal/config"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective settings."`
	Init ConfigInitCmd `cmd:"" help:"Write a settings file with defaults."`
}

type ConfigShowCmd struct {
	Snapshot bool `help:"Also print the settings last recorded in the database."`
}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	raw, err := yaml.Marshal(ctx.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	ctx.printf("# %s\n%s", ctx.SettingsPath(), raw)

	if !c.Snapshot {
		return nil
	}
	dbPath := config.DBPath(ctx.Dir)
	if !config.Exists(dbPath) {
		ctx.printf("\n# no database at %s\n", dbPath)
		return nil
	}
	st, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.GetAllSettings()
	if err != nil {
		return err
	}
	ctx.printf("\n# snapshot in %s\n", dbPath)
	for _, row := range rows {
		ctx.printf("%s: %s\n", row.Key, row.Value)
	}
	return nil
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing settings file."`
}

func (c *ConfigInitCmd) Run(ctx *Context) error {
	path := ctx.SettingsPath()
	if config.Exists(path) && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	ctx.printf("Wrote %s\n", path)
	return nil
}
