package cli

import (
	"fmt"

	"github.com/julianstephens/seedjournal/internal/constants"
	"github.com/julianstephens/seedjournal/internal/models"
	"github.com/julianstephens/seedjournal/internal/utils"
)

type SettingsCmd struct {
	List SettingsListCmd `cmd:"" help:"List current settings." default:"1"`
	Get  SettingsGetCmd  `cmd:"" help:"Show a single setting."`
	Set  SettingsSetCmd  `cmd:"" help:"Update a setting."`
}

type SettingsListCmd struct{}

func (c *SettingsListCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetAllSettings()
	if err != nil {
		return err
	}

	merged := models.ApplyDefaultSettings(models.SettingsToMap(settings))

	fmt.Println("Current settings:")
	for _, key := range []string{
		constants.SettingTheme,
		constants.SettingNotifications,
		constants.SettingFirstDayOfWeek,
		constants.SettingReminderTime,
	} {
		fmt.Printf("  %-16s %v\n", key, merged[key])
	}

	return nil
}

type SettingsGetCmd struct {
	Key string `arg:"" help:"Setting key."`
}

func (c *SettingsGetCmd) Run(ctx *Context) error {
	fallback, known := models.DefaultSettings()[c.Key]
	if !known {
		return fmt.Errorf("unknown setting %q", c.Key)
	}

	value, err := ctx.Store.GetSetting(c.Key, fallback)
	if err != nil {
		return err
	}

	fmt.Printf("%s = %v\n", c.Key, value)
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	value, err := parseSettingValue(c.Key, c.Value)
	if err != nil {
		return err
	}

	if err := ctx.App.UpdateSettings(map[string]any{c.Key: value}); err != nil {
		return err
	}

	fmt.Printf("Updated %s = %v\n", c.Key, value)
	return nil
}

// parseSettingValue coerces the CLI string into the type the setting key
// expects, rejecting unknown keys and malformed values.
func parseSettingValue(key, raw string) (any, error) {
	switch key {
	case constants.SettingTheme:
		switch raw {
		case "light", "dark", "system":
			return raw, nil
		}
		return nil, fmt.Errorf("invalid theme %q (expected light, dark, or system)", raw)

	case constants.SettingNotifications:
		switch raw {
		case "true", "on", "yes":
			return true, nil
		case "false", "off", "no":
			return false, nil
		}
		return nil, fmt.Errorf("invalid notifications value %q (expected true or false)", raw)

	case constants.SettingFirstDayOfWeek:
		switch raw {
		case "monday", "sunday":
			return raw, nil
		}
		return nil, fmt.Errorf("invalid first day of week %q (expected monday or sunday)", raw)

	case constants.SettingReminderTime:
		if !utils.ValidateTimeFormat(raw) {
			return nil, fmt.Errorf("invalid reminder time %q (expected HH:MM)", raw)
		}
		return raw, nil
	}

	return nil, fmt.Errorf("unknown setting %q", key)
}
