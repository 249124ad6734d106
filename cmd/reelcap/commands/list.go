package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/preset"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List screens, applications or presets",
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.PersistentFlags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")

	listCmd.AddCommand(&cobra.Command{
		Use:   "screens",
		Short: "List attached displays",
		RunE:  runListScreens,
	})
	listCmd.AddCommand(&cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "List running applications and their windows",
		RunE:    runListApplications,
	})
	listCmd.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List saved presets",
		RunE:  runListPresets,
	})
}

func runListScreens(cmd *cobra.Command, args []string) error {
	screens, err := display.NewEnumerator().ListScreens()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}

	if listFormat == "json" {
		return printJSON(screens)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "INDEX\tNAME\tSIZE\tPOSITION\tSCALE\tPRIMARY")
	for _, s := range screens {
		primary := ""
		if s.Primary {
			primary = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%dx%d\t(%d,%d)\t%.1f\t%s\n",
			s.Index, s.Name, s.Frame.W, s.Frame.H, s.Frame.X, s.Frame.Y, s.ScaleFactor, primary)
	}
	return nil
}

func runListApplications(cmd *cobra.Command, args []string) error {
	enum, err := apps.NewX11Enumerator()
	if err != nil {
		return fmt.Errorf("failed to connect to the window system: %w", err)
	}
	defer enum.Close()

	applications, err := enum.ListApplications()
	if err != nil {
		return fmt.Errorf("failed to enumerate applications: %w", err)
	}

	if listFormat == "json" {
		return printJSON(applications)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tPID\tWINDOWS\tFRONT WINDOW")
	for _, app := range applications {
		front := ""
		if len(app.Windows) > 0 {
			front = app.Windows[0].Title
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", app.Name, app.PID, len(app.Windows), front)
	}
	return nil
}

func runListPresets(cmd *cobra.Command, args []string) error {
	store, err := preset.NewFileStore(viper.GetString("preset_dir"))
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}

	if listFormat == "json" {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No presets saved. Create one with 'reelcap preset save <name>'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tFPS\tQUALITY\tAREA\tAPP\tCREATED\tLAST USED")
	for _, r := range records {
		area := r.Area
		if area == "" {
			area = "fullscreen"
		}
		lastUsed := "never"
		if r.LastUsed != nil {
			lastUsed = r.LastUsed.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.FPS, r.VideoQuality, area, r.Application,
			r.CreatedAt.Format("2006-01-02 15:04"), lastUsed)
	}
	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
