package cmd

import (
	"fmt"
	"strconv"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/cart"
	"github.com/gigscope/gigscope/pkg/catalog"
	"github.com/gigscope/gigscope/pkg/selection"
	"github.com/gigscope/gigscope/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Add items to the cart and inspect the local basket",
}

var cartAddCmd = &cobra.Command{
	Use:   "add <item-id>",
	Short: "Add one ticket or entry for an item to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := buildNotifier()
		c, err := buildCatalog(cmd, n, nil)
		if err != nil {
			return err
		}
		if out := c.Refresh(cmd.Context()); out.Err != nil {
			return out.Err
		}

		kindName, _ := cmd.Flags().GetString("kind")
		kind, ok := catalog.ParseKind(kindName)
		if !ok {
			return fmt.Errorf("unknown kind %q, use event or competition", kindName)
		}
		item, ok := c.Lookup(kind, args[0])
		if !ok {
			return fmt.Errorf("%s %s not found", kind, args[0])
		}

		sess := session.Static(viper.GetString("session.token"))
		crt, closeCart, err := openCart(sess)
		if err != nil {
			return err
		}
		defer closeCart()

		ctrl := &selection.Controller{Session: sess, Cart: crt, Notifier: n}
		ctrl.Inspect(item)
		state, err := ctrl.AddToCart(cmd.Context())
		if err != nil {
			return err
		}
		utils.Log.Debugf("Line %s ready (%s)", state.Line.Ref, state.Phase)
		return nil
	},
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the line items in the local basket",
	RunE: func(cmd *cobra.Command, args []string) error {
		delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")

		b, err := cart.OpenBasket(viper.GetString("cart.dbpath"))
		if err != nil {
			return err
		}
		defer b.Close()

		lines, err := b.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Println(l.Ref + delimiter + l.ItemID + delimiter + l.Snapshot.Title + delimiter +
				strconv.FormatFloat(l.UnitPrice, 'f', -1, 64) + delimiter + strconv.Itoa(l.Quantity))
		}
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line item from the local basket",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cart.OpenBasket(viper.GetString("cart.dbpath"))
		if err != nil {
			return err
		}
		defer b.Close()

		removed, err := b.Clear(cmd.Context())
		if err != nil {
			return err
		}
		utils.Log.Infof("Removed %d line items", removed)
		return nil
	},
}

// openCart returns the remote cart when cart.url is set, the local basket otherwise.
func openCart(sess session.Provider) (cart.Cart, func(), error) {
	if url := viper.GetString("cart.url"); url != "" {
		return cart.NewHTTPCart(url, sess), func() {}, nil
	}
	b, err := cart.OpenBasket(viper.GetString("cart.dbpath"))
	if err != nil {
		return nil, nil, err
	}
	return b, func() { b.Close() }, nil
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartClearCmd)

	cartAddCmd.Flags().StringP("kind", "k", string(catalog.KindEvent), "Item kind: event or competition")
}
