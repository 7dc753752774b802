package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gigscope/gigscope/internal/metrics"
	"github.com/gigscope/gigscope/internal/server"
	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP and refresh it on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = viper.GetString("server.addr")
		}
		refresh, _ := cmd.Flags().GetString("refresh")
		if refresh == "" {
			refresh = viper.GetString("server.refresh")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		n := buildNotifier()
		c, err := buildCatalog(cmd, n, m)
		if err != nil {
			return err
		}

		cartFor, closeCart, err := serverCart()
		if err != nil {
			return err
		}
		defer closeCart()

		c.RefreshAsync(ctx)
		sched, err := c.Schedule(ctx, refresh)
		if err != nil {
			return err
		}
		defer sched.Stop()
		utils.Log.Infof("Refreshing catalog on schedule %q", refresh)

		srv := server.New(c, cartFor, n, m)
		srv.Username = viper.GetString("server.username")
		srv.Password = viper.GetString("server.password")
		srv.CORSOrigins = utils.SplitList(viper.GetString("server.cors_origins"))
		return srv.Start(ctx, addr)
	},
}

// serverCart forwards each request's session to the remote cart when cart.url
// is set, and shares one local basket otherwise.
func serverCart() (server.CartFactory, func(), error) {
	if url := viper.GetString("cart.url"); url != "" {
		return func(sess session.Provider) cart.Cart {
			return cart.NewHTTPCart(url, sess)
		}, func() {}, nil
	}

	b, err := cart.OpenBasket(viper.GetString("cart.dbpath"))
	if err != nil {
		return nil, nil, err
	}
	return func(session.Provider) cart.Cart { return b }, func() { b.Close() }, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default server.addr)")
	serveCmd.Flags().String("refresh", "", "Refresh schedule, cron syntax or @every (default server.refresh)")
}
