package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/localnerve/videohost/internal/models"
	"github.com/spf13/cobra"
)

// tagCmd groups tag maintenance
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag maintenance",
}

type tagUsage struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Videos int64  `json:"videos"`
}

// tagListCmd lists tags with how many videos carry each
var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with their video counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := open()
		if err != nil {
			return err
		}
		defer e.close()

		var rows []tagUsage
		err = e.db.WithContext(cmd.Context()).Model(&models.Tag{}).
			Select("tags.id, tags.name, COUNT(video_tags.video_id) AS videos").
			Joins("LEFT JOIN video_tags ON video_tags.tag_id = tags.id").
			Group("tags.id, tags.name").
			Order("tags.name").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		if ok, err := printJSON(rows); ok {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tVIDEOS")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%d\n", r.ID, r.Name, r.Videos)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd)
}
