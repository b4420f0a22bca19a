package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/commit-swipe/internal/card"
	"github.com/example/commit-swipe/internal/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProfiles(w io.Writer, ps []models.Profile, asJSON bool) error {
	if asJSON {
		return printJSON(w, ps)
	}
	if len(ps) == 0 {
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tMATCH\tDISTANCE")
	for _, p := range ps {
		dist := "-"
		if p.Distance != nil {
			dist = fmt.Sprintf("%d km", *p.Distance)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\n", p.ID, p.Name, p.Role, p.MatchScore, dist)
	}
	return tw.Flush()
}

func printProfile(w io.Writer, p *models.Profile, asJSON bool) error {
	if asJSON {
		return printJSON(w, p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", p.Name, p.ID)
	if p.Role != "" {
		fmt.Fprintf(&b, "Role:   %s\n", p.Role)
	}
	fmt.Fprintf(&b, "Match:  %d%% (%s)\n", p.MatchScore, card.ScoreTier(p.MatchScore))
	if len(p.Stack) > 0 {
		fmt.Fprintf(&b, "Stack:  %s\n", strings.Join(p.Stack, ", "))
	}
	fmt.Fprintf(&b, "Avatar: %s\n", card.AvatarURL(p.Name, p.Image))
	if p.Bio != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Bio)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func printMessages(w io.Writer, partner string, msgs []models.Message) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "No messages yet.")
		return err
	}
	for _, m := range msgs {
		who := partner
		if m.FromMe() {
			who = "you"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp, who, m.Text); err != nil {
			return err
		}
	}
	return nil
}

// splitStack turns "go, rust,,sql" into [go rust sql].
func splitStack(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
