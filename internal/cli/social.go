package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/commit-swipe/internal/deck"
	"github.com/example/commit-swipe/internal/models"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", s)
	}
	return id, nil
}

func profileCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit profiles",
	}
	c.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				p, err := a.client.Profile(cmd.Context(), id)
				if p == nil {
					return fmt.Errorf("profile %d: %w", id, err)
				}
				return printProfile(cmd.OutOrStdout(), p, asJSON)
			})
		},
	}

	me := &cobra.Command{
		Use:   "me",
		Short: "Show your own profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, err := a.client.MyProfile(cmd.Context())
				if p == nil {
					return fmt.Errorf("my profile: %w", err)
				}
				return printProfile(cmd.OutOrStdout(), p, asJSON)
			})
		},
	}

	var name, role, bio, stack, image string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update fields of your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u models.ProfileUpdate
			f := cmd.Flags()
			if f.Changed("name") {
				u.Name = &name
			}
			if f.Changed("role") {
				u.Role = &role
			}
			if f.Changed("bio") {
				u.Bio = &bio
			}
			if f.Changed("stack") {
				u.Stack = splitStack(stack)
			}
			if f.Changed("image") {
				u.Image = &image
			}
			return withApp(cmd, opts, func(a *app) error {
				p, err := a.client.UpdateProfile(cmd.Context(), u)
				if p == nil {
					return fmt.Errorf("update profile: %w", err)
				}
				return printProfile(cmd.OutOrStdout(), p, asJSON)
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&role, "role", "", "role")
	update.Flags().StringVar(&bio, "bio", "", "biography")
	update.Flags().StringVar(&stack, "stack", "", "comma separated skills")
	update.Flags().StringVar(&image, "image", "", "image URL")

	c.AddCommand(show, me, update)
	return c
}

func matchesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "matches",
		Short: "List mutual matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ps, err := a.client.Matches(cmd.Context())
				if err != nil {
					return err
				}
				return printProfiles(cmd.OutOrStdout(), ps, asJSON)
			})
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return c
}

func chatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <match-id> [message...]",
		Short: "Read the chat with a match, optionally sending a message first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return deck.ErrInvalidIdentity
			}
			if _, err := deck.ChatTarget(models.Profile{ID: id}); err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				if text := strings.TrimSpace(strings.Join(args[1:], " ")); text != "" {
					if err := a.client.SendMessage(cmd.Context(), id, text); err != nil {
						return err
					}
				}
				msgs, err := a.client.Messages(cmd.Context(), id)
				if err != nil {
					return err
				}
				partner := fmt.Sprintf("#%d", id)
				if p, _ := a.client.Profile(cmd.Context(), id); p != nil {
					partner = p.Name
				}
				return printMessages(cmd.OutOrStdout(), partner, msgs)
			})
		},
	}
}

func likesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "likes",
		Short: "List likes you received or sent",
	}
	c.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")
	c.AddCommand(
		&cobra.Command{
			Use:   "received",
			Short: "People who liked you",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, opts, func(a *app) error {
					ps, err := a.client.LikesReceived(cmd.Context())
					if err != nil {
						return err
					}
					return printProfiles(cmd.OutOrStdout(), ps, asJSON)
				})
			},
		},
		&cobra.Command{
			Use:   "sent",
			Short: "People you liked",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, opts, func(a *app) error {
					ps, err := a.client.LikesSent(cmd.Context())
					if err != nil {
						return err
					}
					return printProfiles(cmd.OutOrStdout(), ps, asJSON)
				})
			},
		},
	)
	return c
}

func nearbyCmd(opts *rootOptions) *cobra.Command {
	var lat, lng float64
	var asJSON bool
	c := &cobra.Command{
		Use:   "nearby",
		Short: "List profiles sorted by distance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				at := a.fallback()
				if a.cfg.LocationLat != nil && a.cfg.LocationLng != nil {
					at = models.Coordinate{Lat: *a.cfg.LocationLat, Lng: *a.cfg.LocationLng}
				}
				if cmd.Flags().Changed("lat") {
					at.Lat = lat
				}
				if cmd.Flags().Changed("lng") {
					at.Lng = lng
				}
				ps, err := a.client.Nearby(cmd.Context(), at.Lat, at.Lng)
				if err != nil {
					return err
				}
				return printProfiles(cmd.OutOrStdout(), ps, asJSON)
			})
		},
	}
	c.Flags().Float64Var(&lat, "lat", 0, "latitude (defaults to the configured location)")
	c.Flags().Float64Var(&lng, "lng", 0, "longitude (defaults to the configured location)")
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return c
}

func uploadCmd(opts *rootOptions) *cobra.Command {
	var setAvatar bool
	c := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withApp(cmd, opts, func(a *app) error {
				url, err := a.client.UploadImage(cmd.Context(), filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				if !setAvatar {
					return nil
				}
				if _, err := a.client.UpdateProfile(cmd.Context(), models.ProfileUpdate{Image: &url}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile image updated")
				return nil
			})
		},
	}
	c.Flags().BoolVar(&setAvatar, "set-avatar", false, "use the uploaded image as your profile picture")
	return c
}
