package cmd

import (
	"errors"
	"strings"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/browse"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/notify"
	"github.com/gigscope/gigscope/pkg/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildSources returns one source per configured location. Values starting
// with http:// or https:// are fetched, anything else is read from disk.
func buildSources(cmd *cobra.Command) ([]source.Source, error) {
	proxy, _ := cmd.Flags().GetString("proxy")

	locations := []struct {
		key  string
		kind catalog.Kind
	}{
		{"source.events_url", catalog.KindEvent},
		{"source.competitions_url", catalog.KindCompetition},
	}

	var sources []source.Source
	for _, l := range locations {
		loc := strings.TrimSpace(viper.GetString(l.key))
		if loc == "" {
			utils.Log.Infof("Skipping %ss: %s not set in config.", l.kind, l.key)
			continue
		}
		if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
			sources = append(sources, source.FileSource{Path: loc, ItemKind: l.kind})
			continue
		}
		s, err := source.NewHTTPSource(source.HTTPConfig{
			Kind:          l.kind,
			URL:           loc,
			Token:         viper.GetString("source.token"),
			Proxy:         proxy,
			RatePerMinute: viper.GetInt("source.rate_per_minute"),
		})
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	if len(sources) == 0 {
		return nil, errors.New("no sources configured: set source.events_url or source.competitions_url")
	}
	return sources, nil
}

func buildNotifier() notify.Notifier {
	n := notify.Multi{notify.LogNotifier{Log: utils.Log}}
	if url := viper.GetString("notify.webhook_url"); url != "" {
		n = append(n, notify.NewWebhookNotifier(url))
	}
	return n
}

func buildCatalog(cmd *cobra.Command, n notify.Notifier, obs browse.Observer) (*browse.Catalog, error) {
	sources, err := buildSources(cmd)
	if err != nil {
		return nil, err
	}
	return browse.New(browse.Config{
		Sources:  sources,
		Notifier: n,
		Log:      utils.Log,
		Observer: obs,
	}), nil
}
