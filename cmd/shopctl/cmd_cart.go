package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"furniture-shop-backend/internal/session"
)

var addQty int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart with computed totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.Store()
		items := store.CartItems()
		if len(items) == 0 {
			fmt.Println("Your cart is empty")
			return nil
		}

		for _, item := range items {
			fmt.Printf("%4d  %-35s %3d x %8.2f = %9.2f\n",
				item.Product, item.Name, item.Quantity, item.Price, float64(item.Quantity)*item.Price)
		}
		q := store.Totals()
		fmt.Printf("\n  items:    %9.2f\n", q.ItemsPrice)
		fmt.Printf("  shipping: %9.2f\n", q.ShippingPrice)
		fmt.Printf("  tax:      %9.2f\n", q.TaxPrice)
		fmt.Printf("  total:    %9.2f\n", q.TotalPrice)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		p, err := client.Product(id)
		if err != nil {
			return err
		}
		if p.CountInStock < addQty {
			return fmt.Errorf("only %d of %q in stock", p.CountInStock, p.Name)
		}

		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		client.Store().AddItem(session.CartItem{
			Product:      p.ID,
			Name:         p.Name,
			Image:        image,
			Price:        p.Price,
			CountInStock: p.CountInStock,
			Quantity:     addQty,
		})
		fmt.Printf("Added %d x %s\n", addQty, p.Name)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		client.Store().RemoveItem(id)
		fmt.Println("Removed")
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <product-id> <quantity>",
	Short: "Change a cart line's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		client.Store().UpdateQuantity(id, qty)
		fmt.Println("Updated")
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart and wishlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Store().Clear()
		fmt.Println("Cart cleared")
		return nil
	},
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Show the local wishlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := client.Store().WishlistItems()
		if len(items) == 0 {
			fmt.Println("Your wishlist is empty")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%4d  %-35s %9.2f\n", item.Product, item.Name, item.Price)
		}
		return nil
	},
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		p, err := client.Product(id)
		if err != nil {
			return err
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		client.Store().AddWishlistItem(session.WishlistItem{
			Product: p.ID,
			Name:    p.Name,
			Image:   image,
			Price:   p.Price,
		})
		fmt.Printf("Added %s to wishlist\n", p.Name)
		return nil
	},
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		client.Store().RemoveWishlistItem(id)
		fmt.Println("Removed")
		return nil
	},
}

var (
	addrFullName string
	addrStreet   string
	addrCity     string
	addrPostal   string
	addrCountry  string
	addrPhone    string
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show or set the shipping address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.Store()
		if cmd.Flags().NFlag() > 0 {
			store.SaveShippingAddress(session.Address{
				FullName:   addrFullName,
				Address:    addrStreet,
				City:       addrCity,
				PostalCode: addrPostal,
				Country:    addrCountry,
				Phone:      addrPhone,
			})
			fmt.Println("Shipping address saved")
			return nil
		}

		addr := store.ShippingAddress()
		if addr.Address == "" {
			fmt.Println("No shipping address set")
			return nil
		}
		fmt.Printf("%s\n%s\n%s %s\n%s\n", addr.FullName, addr.Address, addr.PostalCode, addr.City, addr.Country)
		if addr.Phone != "" {
			fmt.Println(addr.Phone)
		}
		return nil
	},
}

var paymentCmd = &cobra.Command{
	Use:   "payment [method]",
	Short: "Show or set the payment method",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.Store()
		if len(args) == 1 {
			store.SavePaymentMethod(args[0])
			fmt.Printf("Payment method set to %s\n", args[0])
			return nil
		}
		if method := store.PaymentMethod(); method != "" {
			fmt.Println(method)
		} else {
			fmt.Println("No payment method set")
		}
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&addQty, "qty", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)
	wishlistCmd.AddCommand(wishlistAddCmd, wishlistRemoveCmd)

	addressCmd.Flags().StringVar(&addrFullName, "name", "", "recipient full name")
	addressCmd.Flags().StringVar(&addrStreet, "street", "", "street address")
	addressCmd.Flags().StringVar(&addrCity, "city", "", "city")
	addressCmd.Flags().StringVar(&addrPostal, "postal", "", "postal code")
	addressCmd.Flags().StringVar(&addrCountry, "country", "", "country")
	addressCmd.Flags().StringVar(&addrPhone, "phone", "", "phone number")
}
