package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/services"
	"github.com/spf13/cobra"
)

var videosOnly bool

// userCmd groups account maintenance
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Account maintenance",
}

// userDeleteCmd removes accounts with everything they own
var userDeleteCmd = &cobra.Command{
	Use:   "delete USER_ID...",
	Short: "Delete accounts with their videos, media files, comments and subscriptions",
	Long: `Delete each account the way the API does: media files first, then every
row referencing the user, in one transaction per account.

Examples:
  videohostctl user delete 12
  videohostctl user delete 12 --videos-only    # keep the account`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, d deleter) error {
			for _, id := range ids {
				if videosOnly {
					n, err := services.DeleteUserVideos(ctx, d.env.db, d.store, id)
					if err != nil {
						return fmt.Errorf("user %d: %w", id, err)
					}
					fmt.Printf("Deleted %d videos of user %d.\n", n, id)
					continue
				}
				if err := services.DeleteUser(ctx, d.env.db, d.store, id); err != nil {
					return fmt.Errorf("user %d: %w", id, err)
				}
				fmt.Printf("Deleted user %d.\n", id)
			}
			return nil
		})
	},
}

// videoCmd groups video maintenance
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Video maintenance",
}

// videoDeleteCmd removes videos with their files, tag links and comments
var videoDeleteCmd = &cobra.Command{
	Use:   "delete VIDEO_ID...",
	Short: "Delete videos with their files, tag links and comments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withStore(cmd.Context(), func(ctx context.Context, d deleter) error {
			for _, id := range ids {
				if err := services.DeleteVideo(ctx, d.env.db, d.store, id); err != nil {
					return fmt.Errorf("video %d: %w", id, err)
				}
				fmt.Printf("Deleted video %d.\n", id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd, videoCmd)
	userCmd.AddCommand(userDeleteCmd)
	videoCmd.AddCommand(videoDeleteCmd)

	userDeleteCmd.Flags().BoolVar(&videosOnly, "videos-only", false, "Delete the user's videos but keep the account")
}

type deleter struct {
	env   *env
	store media.Store
}

func withStore(ctx context.Context, fn func(context.Context, deleter) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := open()
	if err != nil {
		return err
	}
	defer e.close()

	store, err := e.store(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, deleter{env: e, store: store})
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseUint(a, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}
