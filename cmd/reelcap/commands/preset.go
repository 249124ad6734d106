package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/config"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/preset"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved recording presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given recording flags as a named preset",
	Long: `Save validates the given recording flags exactly as the record command
would, then stores them under the given name. Running 'reelcap record
--preset <name>' later applies the stored values; flags given alongside
the preset override its stored values.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetSave,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetShow,
}

var presetDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved preset",
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetDelete,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetDeleteCmd)

	addRecordingFlags(presetSaveCmd)
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := preset.NewFileStore(viper.GetString("preset_dir"))
	if err != nil {
		return err
	}

	appEnum := apps.NewLazyEnumerator()
	defer appEnum.Close()

	resolver := &config.Resolver{
		Displays: display.NewEnumerator(),
		Apps:     appEnum,
		Presets:  store,
	}

	input := collectInput(cmd)
	cfg, err := resolver.Resolve(input)
	if err != nil {
		return err
	}

	record := config.ToRecord(name, cfg)
	if err := store.Save(record); err != nil {
		return err
	}

	fmt.Printf("Saved preset %q. Use it with 'reelcap record --preset %s'.\n", name, name)
	return nil
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	store, err := preset.NewFileStore(viper.GetString("preset_dir"))
	if err != nil {
		return err
	}

	record, err := store.Load(args[0])
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			return fmt.Errorf("preset %q not found; run 'reelcap list presets' to see what is saved", args[0])
		}
		return err
	}

	out, err := yaml.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	store, err := preset.NewFileStore(viper.GetString("preset_dir"))
	if err != nil {
		return err
	}

	if err := store.Delete(args[0]); err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			return fmt.Errorf("preset %q not found; run 'reelcap list presets' to see what is saved", args[0])
		}
		return err
	}

	fmt.Printf("Deleted preset %q.\n", args[0])
	return nil
}
