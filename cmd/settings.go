package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Settings prints the effective configuration with the password masked. With --save, flags that were given
// are written back to the config file; an empty --password keeps the stored one.
func (r *Runner) Settings(ctx context.Context, cmd *cli.Command) error {
	changed := applySettingFlags(r.config, cmd)

	if cmd.Bool("save") {
		if err := r.config.Validate(); err != nil {
			return err
		}
		if err := shared.SaveConfig(r.configPath, r.config); err != nil {
			return err
		}
		r.logger.Info("settings saved", "path", r.configPath, "changed", changed)
		r.writePlain("✓ Saved %d settings to %s\n", len(changed), r.configPath)
	} else if len(changed) > 0 {
		r.writePlain("! %d settings changed but not saved (pass --save)\n", len(changed))
	}

	masked := r.config.Masked()
	if cmd.Bool("json") {
		return r.writeJSON(masked, true)
	}

	r.writePlainHeader("Settings (" + r.configPath + ")")
	rows := [][]string{
		{"database.driver", masked.Database.Driver},
		{"database.host", masked.Database.Host},
		{"database.port", strconv.Itoa(masked.Database.Port)},
		{"database.name", masked.Database.Name},
		{"database.username", masked.Database.Username},
		{"database.password", masked.Database.Password},
		{"database.prefix", masked.Database.Prefix},
		{"wordpress.base_url", masked.WordPress.BaseURL},
		{"migration.batch_size", strconv.Itoa(masked.Migration.BatchSize)},
		{"migration.skip_existing", strconv.FormatBool(masked.Migration.SkipExisting)},
		{"migration.create_content_types", strconv.FormatBool(masked.Migration.CreateContentTypes)},
		{"store.path", masked.Store.Path},
		{"media.public_dir", masked.Media.PublicDir},
		{"media.directory", masked.Media.Directory},
		{"media.requests_per_second", strconv.FormatFloat(masked.Media.RequestsPerSecond, 'f', -1, 64)},
		{"server", fmt.Sprintf("%s:%d", masked.Server.Host, masked.Server.Port)},
	}
	return r.writePlain("%s\n", renderTable(r.output, []string{"Setting", "Value"}, rows, nil))
}

// applySettingFlags copies explicitly set flags into config and returns the keys it changed.
func applySettingFlags(config *shared.Config, cmd *cli.Command) []string {
	var changed []string
	setString := func(flag, key string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
			changed = append(changed, key)
		}
	}

	setString("driver", "database.driver", &config.Database.Driver)
	setString("host", "database.host", &config.Database.Host)
	setString("name", "database.name", &config.Database.Name)
	setString("username", "database.username", &config.Database.Username)
	setString("prefix", "database.prefix", &config.Database.Prefix)
	setString("base-url", "wordpress.base_url", &config.WordPress.BaseURL)

	if cmd.IsSet("port") {
		config.Database.Port = int(cmd.Int("port"))
		changed = append(changed, "database.port")
	}
	if cmd.IsSet("batch-size") {
		config.Migration.BatchSize = int(cmd.Int("batch-size"))
		changed = append(changed, "migration.batch_size")
	}
	if cmd.IsSet("skip-existing") {
		config.Migration.SkipExisting = cmd.Bool("skip-existing")
		changed = append(changed, "migration.skip_existing")
	}
	if password := cmd.String("password"); password != "" {
		config.Database.Password = password
		changed = append(changed, "database.password")
	}
	return changed
}
